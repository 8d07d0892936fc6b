package domain

import (
	"fmt"
	"time"
)

type ItemKind string

const (
	ItemFile      ItemKind = "file"
	ItemDirectory ItemKind = "directory"
	ItemBlob      ItemKind = "blob"
	ItemString    ItemKind = "string"
	ItemURL       ItemKind = "url"
)

func (k ItemKind) Validate() error {
	switch k {
	case ItemFile, ItemDirectory, ItemBlob, ItemString, ItemURL:
		return nil
	default:
		return fmt.Errorf("unknown item kind: %s", k)
	}
}

// Item is one unit flowing through the dispatch pipeline. Items are
// immutable once constructed; processors emit new outputs through an
// OutputEmitter instead of mutating inputs.
type Item struct {
	ID        string
	Kind      ItemKind
	CreatedAt time.Time

	// file, directory
	Path string
	// file
	MimeType string
	Size     int64
	// blob
	Contents []byte
	// string
	Type string
	Text string
	// url
	URL string
}

func NewFileItem(id, path, mimeType string, size int64, at time.Time) Item {
	return Item{ID: id, Kind: ItemFile, CreatedAt: at, Path: path, MimeType: mimeType, Size: size}
}

func NewDirectoryItem(id, path string, at time.Time) Item {
	return Item{ID: id, Kind: ItemDirectory, CreatedAt: at, Path: path}
}

func NewBlobItem(id, mimeType string, contents []byte, at time.Time) Item {
	return Item{ID: id, Kind: ItemBlob, CreatedAt: at, MimeType: mimeType, Contents: contents}
}

func NewStringItem(id, declaredType, text string, at time.Time) Item {
	return Item{ID: id, Kind: ItemString, CreatedAt: at, Type: declaredType, Text: text}
}

func NewURLItem(id, url string, at time.Time) Item {
	return Item{ID: id, Kind: ItemURL, CreatedAt: at, URL: url}
}
