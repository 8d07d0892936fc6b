package out

import (
	"fmt"
	"path/filepath"

	dispatchout "dropkit/internal/modules/dispatch/port/out"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// BillyWalker lists directories through a billy filesystem so tests can
// run against memfs. Canonical resolution is pluggable: the OS walker
// uses EvalSymlinks, in-memory filesystems fall back to path cleaning.
type BillyWalker struct {
	fs        billy.Filesystem
	canonical func(path string) (string, error)
}

func NewOSWalker() dispatchout.Walker {
	return &BillyWalker{fs: osfs.New(""), canonical: filepath.EvalSymlinks}
}

func NewBillyWalker(fs billy.Filesystem) dispatchout.Walker {
	return &BillyWalker{fs: fs, canonical: func(path string) (string, error) {
		return filepath.Clean(path), nil
	}}
}

func (w *BillyWalker) List(path string) ([]dispatchout.DirEntry, error) {
	infos, err := w.fs.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", path, err)
	}
	out := make([]dispatchout.DirEntry, 0, len(infos))
	for _, info := range infos {
		out = append(out, dispatchout.DirEntry{
			Path: filepath.Join(path, info.Name()),
			Dir:  info.IsDir(),
			Size: info.Size(),
		})
	}
	return out, nil
}

func (w *BillyWalker) Canonical(path string) (string, error) {
	return w.canonical(path)
}
