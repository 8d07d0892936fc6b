package service

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"dropkit/internal/modules/dispatch/domain"
)

// ItemsFromInputs builds items for a CLI drop gesture: local paths
// become file or directory items, the rest become url and string items.
func (s *DispatchService) ItemsFromInputs(paths, urls, texts []string) ([]domain.Item, error) {
	now := s.clk.Now()
	items := make([]domain.Item, 0, len(paths)+len(urls)+len(texts))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			items = append(items, domain.NewDirectoryItem(s.ids.New(), path, now))
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(path))
		items = append(items, domain.NewFileItem(s.ids.New(), path, mimeType, info.Size(), now))
	}
	for _, url := range urls {
		items = append(items, domain.NewURLItem(s.ids.New(), url, now))
	}
	for _, text := range texts {
		items = append(items, domain.NewStringItem(s.ids.New(), "text", text, now))
	}
	return items, nil
}
