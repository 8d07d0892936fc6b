package domain_test

import (
	"testing"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/registry/domain"
)

func validManifest() domain.Manifest {
	return domain.Manifest{
		Name:    "resize",
		Version: "1.0.0",
		Binary:  "/bin/resize",
		Enabled: true,
		Accepts: domain.ManifestAccepts{Files: []string{"png", "/\\.jpe?g$/"}},
	}
}

func TestManifestValidate(t *testing.T) {
	t.Parallel()
	if err := validManifest().Validate(); err != nil {
		t.Fatalf("valid manifest rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*domain.Manifest)
	}{
		{"empty name", func(m *domain.Manifest) { m.Name = "" }},
		{"empty version", func(m *domain.Manifest) { m.Version = "" }},
		{"empty binary", func(m *domain.Manifest) { m.Binary = "" }},
		{"bad accept pattern", func(m *domain.Manifest) { m.Accepts.Files = []string{"/(/"} }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			manifest := validManifest()
			tc.mutate(&manifest)
			if err := manifest.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestManifestAcceptsCompile(t *testing.T) {
	t.Parallel()
	accepts, err := domain.ManifestAccepts{
		Files: []string{"png", "/\\.jpe?g$/"},
		URLs:  []string{"/^https:/"},
	}.Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(accepts.Files) != 2 || accepts.Files[0].Literal != "png" || accepts.Files[1].Pattern == nil {
		t.Fatalf("file matchers wrong: %+v", accepts.Files)
	}
	if len(accepts.URLs) != 1 || !accepts.URLs[0].Pattern.MatchString("https://example.com") {
		t.Fatalf("url matcher wrong: %+v", accepts.URLs)
	}
	if accepts.Directories != nil || accepts.Blobs != nil || accepts.Strings != nil {
		t.Fatalf("absent kinds must stay nil")
	}

	jpeg := dispatchdomain.Item{Kind: dispatchdomain.ItemFile, Path: "/x/photo.jpeg"}
	if !accepts.Accepts(jpeg, nil) {
		t.Fatalf("compiled accepts should match jpeg files")
	}
}
