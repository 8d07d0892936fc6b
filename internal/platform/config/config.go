package config

import (
	"fmt"
	"path/filepath"
)

type Config struct {
	BasePath       string
	ProcessorsPath string
	JournalDBPath  string
	DepsDir        string
}

func New(basePath string) (Config, error) {
	if basePath == "" {
		return Config{}, fmt.Errorf("base path is required")
	}
	return Config{
		BasePath:       basePath,
		ProcessorsPath: filepath.Join(basePath, "processors.yaml"),
		JournalDBPath:  filepath.Join(basePath, ".dropkit", "journal.db"),
		DepsDir:        filepath.Join(basePath, ".dropkit", "deps"),
	}, nil
}
