package domain

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissing is returned by a loader when the resource is absent;
	// it triggers the install transition when an installer exists.
	ErrMissing = errors.New("dependency missing")

	ErrUnknownDependency   = errors.New("unknown dependency")
	ErrDuplicateDependency = errors.New("duplicate dependency name")
	ErrBadTransition       = errors.New("invalid dependency state transition")
)

type State string

const (
	StateUnloaded   State = "unloaded"
	StateLoading    State = "loading"
	StateInstalling State = "installing"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

// CanTransition encodes the lifecycle:
// unloaded → loading → ready|failed, loading → installing → loading|failed.
// Ready and failed are terminal for a process lifetime; a reset
// re-enters from unloaded.
func CanTransition(from, to State) bool {
	switch from {
	case StateUnloaded:
		return to == StateLoading
	case StateLoading:
		return to == StateReady || to == StateFailed || to == StateInstalling
	case StateInstalling:
		return to == StateLoading || to == StateFailed
	case StateReady, StateFailed:
		return to == StateUnloaded
	}
	return false
}

// Payload is what a successful load supplies to operations, e.g. a
// located binary path plus its version.
type Payload struct {
	Value   any
	Version string
}

// InstallUtils are the only host helpers available inside load and
// install routines.
type InstallUtils struct {
	Download        func(ctx context.Context, url, dest string) error
	Extract         func(ctx context.Context, archivePath, destDir string) error
	PrepareEmptyDir func(path string) error
	// DepsDir is the host directory a dependency may install into.
	DepsDir string
}

type Loader func(ctx context.Context, utils InstallUtils) (Payload, error)

type Installer func(ctx context.Context, utils InstallUtils) error

type Registration struct {
	Name    string
	Load    Loader
	Install Installer
}

func (r Registration) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("dependency name is required")
	}
	if r.Load == nil {
		return fmt.Errorf("dependency %q has no loader", r.Name)
	}
	return nil
}

// Status is a readiness snapshot for one dependency.
type Status struct {
	Name    string
	State   State
	Version string
	Payload any
	Err     error
}
