package out_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	out "dropkit/internal/modules/options/adapter/out"
	"dropkit/internal/modules/options/domain"
)

const sampleSchema = `
- name: quality
  type: number
  default: 5
  min: 0
  max: 10
- name: format
  type: select
  options:
    - png
    - value: jpg
      label: JPEG
- name: advanced
  type: namespace
  schema:
    - name: threads
      type: number
      default: 2
- name: tags
  type: list
  item:
    name: tag
    type: string
`

func TestDecodeFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte(sampleSchema), 0o644); err != nil {
		t.Fatalf("write schema: %v", err)
	}
	schema, err := out.NewYAMLSchemaDecoder().DecodeFile(path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := schema.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	resolved, err := schema.Resolve(nil)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved["quality"] != float64(5) {
		t.Fatalf("quality default not applied: %#v", resolved["quality"])
	}
	if resolved["format"] != "png" {
		t.Fatalf("select should fall back to first option: %#v", resolved["format"])
	}

	// min/max become a range validator rather than a clamp
	node, err := schema.NodeAt([]string{"quality"})
	if err != nil {
		t.Fatalf("node at: %v", err)
	}
	if node.Validator == nil {
		t.Fatalf("expected range validator for bounded number")
	}
	if node.Validator(float64(20), resolved, []string{"quality"}) {
		t.Fatalf("range validator should reject out-of-range value")
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	t.Parallel()
	_, err := out.NewYAMLSchemaDecoder().Decode([]map[string]any{
		{"name": "x", "type": "string", "clamp": true},
	})
	if !errors.Is(err, domain.ErrSchema) {
		t.Fatalf("expected ErrSchema for unknown field, got %v", err)
	}
}
