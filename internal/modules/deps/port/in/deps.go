package in

import (
	"context"

	"dropkit/internal/modules/deps/domain"
	"dropkit/internal/modules/deps/dto"
)

type Usecase interface {
	Register(reg domain.Registration) error
	Load(ctx context.Context, name string) (dto.DependencyStatus, error)
	// ResolveFor resolves an operation's dependency set: required
	// failures abort, optional failures resolve to a nil entry.
	ResolveFor(ctx context.Context, required, optional []string) (map[string]any, error)
	Reset(name string) error
	Snapshot() []dto.DependencyStatus
}
