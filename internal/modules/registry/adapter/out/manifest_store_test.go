package out_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	out "dropkit/internal/modules/registry/adapter/out"
)

func TestManifestStoreLoadsAndResolvesBinaries(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := filepath.Join(base, "processors.yaml")
	content := `- name: resize
  version: 1.0.0
  binary: processors/resize
  enabled: true
  bulk: false
  threadType: image
  accepts:
    files:
      - png
      - /\.jpe?g$/
  options:
    - name: width
      type: number
      default: 800
- name: upload
  version: 0.3.0
  binary: /opt/processors/upload
  enabled: false
  accepts:
    urls:
      - /^https:/
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	store := out.NewYAMLManifestStore(base, path)
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(manifests) != 2 {
		t.Fatalf("expected two manifests, got %d", len(manifests))
	}
	if want := filepath.Join(base, "processors", "resize"); manifests[0].Binary != want {
		t.Fatalf("relative binary not resolved: %s", manifests[0].Binary)
	}
	if manifests[1].Binary != "/opt/processors/upload" {
		t.Fatalf("absolute binary must stay put: %s", manifests[1].Binary)
	}
	if len(manifests[0].Accepts.Files) != 2 || manifests[0].Accepts.Files[0] != "png" {
		t.Fatalf("accepts not decoded: %+v", manifests[0].Accepts)
	}
	if len(manifests[0].Options) != 1 {
		t.Fatalf("options schema not decoded: %+v", manifests[0].Options)
	}
	if manifests[1].Enabled {
		t.Fatalf("enabled flag lost")
	}
}

func TestManifestStoreMissingFileMeansEmpty(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	store := out.NewYAMLManifestStore(base, filepath.Join(base, "processors.yaml"))
	manifests, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(manifests) != 0 {
		t.Fatalf("expected empty store, got %d entries", len(manifests))
	}
}

func TestManifestStoreRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	base := t.TempDir()
	path := filepath.Join(base, "processors.yaml")
	content := "- name: resize\n  version: 1.0.0\n  binary: resize\n  enabled: true\n  surprise: true\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	store := out.NewYAMLManifestStore(base, path)
	if _, err := store.Load(context.Background()); err == nil {
		t.Fatalf("expected unknown field to be rejected")
	}
}
