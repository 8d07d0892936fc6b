package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"dropkit/internal/modules/deps/domain"
	depsout "dropkit/internal/modules/deps/port/out"

	hclog "github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// RegistryService is the process-wide dependency registry. Loads are
// lazy, loads for the same name are deduplicated through singleflight,
// and state transitions happen under one mutex so the at-most-one-load
// rule holds.
type RegistryService struct {
	mu     sync.Mutex
	regs   map[string]domain.Registration
	states map[string]*domain.Status
	group  singleflight.Group
	utils  domain.InstallUtils
	log    hclog.Logger
}

func NewRegistryService(fetcher depsout.Fetcher, extractor depsout.Extractor, depsDir string, log hclog.Logger) *RegistryService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &RegistryService{
		regs:   map[string]domain.Registration{},
		states: map[string]*domain.Status{},
		utils: domain.InstallUtils{
			Download:        fetcher.Download,
			Extract:         extractor.Extract,
			PrepareEmptyDir: prepareEmptyDir,
			DepsDir:         depsDir,
		},
		log: log,
	}
}

func (s *RegistryService) Register(reg domain.Registration) error {
	if err := reg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.regs[reg.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateDependency, reg.Name)
	}
	s.regs[reg.Name] = reg
	s.states[reg.Name] = &domain.Status{Name: reg.Name, State: domain.StateUnloaded}
	return nil
}

// Load drives one dependency to a terminal state. Concurrent callers
// for the same name share a single underlying load attempt and observe
// the same resolved status; a dependency already terminal returns its
// recorded status without loading again.
func (s *RegistryService) Load(ctx context.Context, name string) (domain.Status, error) {
	s.mu.Lock()
	reg, ok := s.regs[name]
	if !ok {
		s.mu.Unlock()
		return domain.Status{}, fmt.Errorf("%w: %s", domain.ErrUnknownDependency, name)
	}
	status := *s.states[name]
	s.mu.Unlock()

	if status.State == domain.StateReady || status.State == domain.StateFailed {
		return status, status.Err
	}

	result, err, _ := s.group.Do(name, func() (any, error) {
		return s.load(ctx, reg), nil
	})
	if err != nil {
		return domain.Status{}, err
	}
	final := result.(domain.Status)
	return final, final.Err
}

func (s *RegistryService) load(ctx context.Context, reg domain.Registration) domain.Status {
	// another waiter may have finished the load while we queued
	s.mu.Lock()
	current := *s.states[reg.Name]
	if current.State == domain.StateReady || current.State == domain.StateFailed {
		s.mu.Unlock()
		return current
	}
	s.mu.Unlock()

	if err := s.transition(reg.Name, domain.StateLoading); err != nil {
		return s.fail(reg.Name, err)
	}
	payload, err := reg.Load(ctx, s.utils)
	if errors.Is(err, domain.ErrMissing) && reg.Install != nil {
		if err := s.transition(reg.Name, domain.StateInstalling); err != nil {
			return s.fail(reg.Name, err)
		}
		s.log.Info("installing dependency", "name", reg.Name)
		if err := reg.Install(ctx, s.utils); err != nil {
			if canceled(err) {
				return s.abort(reg.Name, fmt.Errorf("install %s: %w", reg.Name, err))
			}
			return s.fail(reg.Name, fmt.Errorf("install %s: %w", reg.Name, err))
		}
		if err := s.transition(reg.Name, domain.StateLoading); err != nil {
			return s.fail(reg.Name, err)
		}
		payload, err = reg.Load(ctx, s.utils)
	}
	if err != nil {
		if canceled(err) {
			return s.abort(reg.Name, fmt.Errorf("load %s: %w", reg.Name, err))
		}
		return s.fail(reg.Name, fmt.Errorf("load %s: %w", reg.Name, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[reg.Name]
	state.State = domain.StateReady
	state.Payload = payload.Value
	state.Version = payload.Version
	state.Err = nil
	s.log.Debug("dependency ready", "name", reg.Name, "version", payload.Version)
	return *state
}

func (s *RegistryService) transition(name string, to domain.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[name]
	if !domain.CanTransition(state.State, to) {
		return fmt.Errorf("%w: %s %s -> %s", domain.ErrBadTransition, name, state.State, to)
	}
	state.State = to
	return nil
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// abort discards a cancellation-induced outcome: the caller that pulled
// out sees the error, but the shared state returns to unloaded so the
// next cycle loads fresh. Terminal failed is reserved for loads that
// genuinely ran and broke.
func (s *RegistryService) abort(name string, err error) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	*s.states[name] = domain.Status{Name: name, State: domain.StateUnloaded}
	s.log.Debug("dependency load canceled", "name", name, "error", err)
	return domain.Status{Name: name, State: domain.StateUnloaded, Err: err}
}

func (s *RegistryService) fail(name string, err error) domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.states[name]
	state.State = domain.StateFailed
	state.Err = err
	s.log.Warn("dependency failed", "name", name, "error", err)
	return *state
}

// ResolveFor resolves an operation's dependency set. Loads for
// different names run concurrently. A required failure aborts with the
// failure; an optional failure leaves a nil entry so the operation can
// degrade gracefully.
func (s *RegistryService) ResolveFor(ctx context.Context, required, optional []string) (map[string]any, error) {
	resolved := make(map[string]any, len(required)+len(optional))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	for _, name := range required {
		group.Go(func() error {
			status, err := s.Load(groupCtx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			resolved[name] = status.Payload
			mu.Unlock()
			return nil
		})
	}
	for _, name := range optional {
		group.Go(func() error {
			status, err := s.Load(groupCtx, name)
			mu.Lock()
			if err != nil {
				resolved[name] = nil
			} else {
				resolved[name] = status.Payload
			}
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}

func prepareEmptyDir(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("clear %s: %w", path, err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}

// Reset returns a terminal dependency to unloaded so a manual retry can
// re-enter the lifecycle.
func (s *RegistryService) Reset(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[name]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownDependency, name)
	}
	if !domain.CanTransition(state.State, domain.StateUnloaded) {
		return fmt.Errorf("%w: %s %s -> %s", domain.ErrBadTransition, name, state.State, domain.StateUnloaded)
	}
	*state = domain.Status{Name: name, State: domain.StateUnloaded}
	return nil
}

// Snapshot reports readiness for every registered dependency, sorted by
// name for stable output.
func (s *RegistryService) Snapshot() []domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Status, 0, len(s.states))
	for _, state := range s.states {
		out = append(out, *state)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
