package out

import "context"

// Fetcher downloads a remote artifact to a local file. Used only inside
// dependency install routines.
type Fetcher interface {
	Download(ctx context.Context, url, dest string) error
}

// Extractor unpacks a downloaded archive into a directory.
type Extractor interface {
	Extract(ctx context.Context, archivePath, destDir string) error
}
