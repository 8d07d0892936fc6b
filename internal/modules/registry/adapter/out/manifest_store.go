package out

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"dropkit/internal/modules/registry/domain"
	registryout "dropkit/internal/modules/registry/port/out"

	"gopkg.in/yaml.v3"
)

type YAMLManifestStore struct {
	basePath string
	path     string
}

func NewYAMLManifestStore(basePath, path string) registryout.ManifestStore {
	return &YAMLManifestStore{basePath: basePath, path: path}
}

func (s *YAMLManifestStore) Load(_ context.Context) ([]domain.Manifest, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Manifest{}, nil
		}
		return nil, fmt.Errorf("read processor manifest store: %w", err)
	}
	var manifests []domain.Manifest
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&manifests); err != nil {
		return nil, fmt.Errorf("decode processor manifests: %w", err)
	}
	for i := range manifests {
		if manifests[i].Binary != "" && !filepath.IsAbs(manifests[i].Binary) {
			manifests[i].Binary = filepath.Clean(filepath.Join(s.basePath, manifests[i].Binary))
		}
	}
	return manifests, nil
}
