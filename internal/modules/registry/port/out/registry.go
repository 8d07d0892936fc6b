package out

import (
	"context"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	optionsdomain "dropkit/internal/modules/options/domain"
	"dropkit/internal/modules/registry/domain"
)

type ManifestStore interface {
	Load(ctx context.Context) ([]domain.Manifest, error)
}

// Host runs external processor binaries. Each call spans one process
// lifecycle; the registry never keeps binaries resident.
type Host interface {
	CheckLifecycle(ctx context.Context, manifest domain.Manifest) error
	GetMetadata(ctx context.Context, manifest domain.Manifest) (domain.Metadata, error)
	Run(ctx context.Context, manifest domain.Manifest, op dispatchdomain.Operation, deps map[string]any) ([]domain.Output, error)
}

// SchemaDecoder turns a manifest's declared option nodes into a typed
// schema.
type SchemaDecoder interface {
	Decode(raw []map[string]any) (optionsdomain.Schema, error)
}
