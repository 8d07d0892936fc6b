package out

// DirEntry is one child produced while expanding a directory item.
type DirEntry struct {
	Path string
	Dir  bool
	Size int64
}

// Walker lists directory children and resolves canonical paths so the
// dispatcher can guard expansion against symlink cycles.
type Walker interface {
	List(path string) ([]DirEntry, error)
	Canonical(path string) (string, error)
}
