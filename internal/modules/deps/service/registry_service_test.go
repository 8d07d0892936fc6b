package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"dropkit/internal/modules/deps/domain"
	"dropkit/internal/modules/deps/service"
)

type nopFetcher struct{}

func (nopFetcher) Download(context.Context, string, string) error { return nil }

type nopExtractor struct{}

func (nopExtractor) Extract(context.Context, string, string) error { return nil }

func newRegistry(t *testing.T) *service.RegistryService {
	t.Helper()
	return service.NewRegistryService(nopFetcher{}, nopExtractor{}, t.TempDir(), nil)
}

func TestLoadReachesReady(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	err := registry.Register(domain.Registration{
		Name: "ffmpeg",
		Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			return domain.Payload{Value: "/usr/bin/ffmpeg", Version: "6.1"}, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	status, err := registry.Load(context.Background(), "ffmpeg")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if status.State != domain.StateReady || status.Payload != "/usr/bin/ffmpeg" || status.Version != "6.1" {
		t.Fatalf("unexpected status: %+v", status)
	}
}

func TestConcurrentLoadsShareOneAttempt(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	var attempts atomic.Int32
	release := make(chan struct{})
	err := registry.Register(domain.Registration{
		Name: "pandoc",
		Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			attempts.Add(1)
			<-release
			return domain.Payload{Value: "/opt/pandoc"}, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	const callers = 8
	var wg sync.WaitGroup
	statuses := make([]domain.Status, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			statuses[i], _ = registry.Load(context.Background(), "pandoc")
		}(i)
	}
	close(release)
	wg.Wait()

	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected exactly one load attempt, got %d", got)
	}
	for i, status := range statuses {
		if status.State != domain.StateReady || status.Payload != "/opt/pandoc" {
			t.Fatalf("caller %d observed %+v", i, status)
		}
	}
}

func TestMissingTriggersInstallThenRetry(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	var loads, installs atomic.Int32
	err := registry.Register(domain.Registration{
		Name: "exiftool",
		Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			if loads.Add(1) == 1 {
				return domain.Payload{}, fmt.Errorf("probe: %w", domain.ErrMissing)
			}
			return domain.Payload{Value: "/deps/exiftool"}, nil
		},
		Install: func(context.Context, domain.InstallUtils) error {
			installs.Add(1)
			return nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	status, err := registry.Load(context.Background(), "exiftool")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if status.State != domain.StateReady {
		t.Fatalf("expected ready after install, got %s", status.State)
	}
	if loads.Load() != 2 || installs.Load() != 1 {
		t.Fatalf("expected load-install-load, got loads=%d installs=%d", loads.Load(), installs.Load())
	}
}

func TestMissingWithoutInstallerFails(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	_ = registry.Register(domain.Registration{
		Name: "ghost",
		Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			return domain.Payload{}, domain.ErrMissing
		},
	})
	status, err := registry.Load(context.Background(), "ghost")
	if !errors.Is(err, domain.ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
	if status.State != domain.StateFailed {
		t.Fatalf("expected failed state, got %s", status.State)
	}
}

func TestCanceledLoadRollsBackToUnloaded(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	var loads atomic.Int32
	err := registry.Register(domain.Registration{
		Name: "ffmpeg",
		Load: func(ctx context.Context, _ domain.InstallUtils) (domain.Payload, error) {
			loads.Add(1)
			if err := ctx.Err(); err != nil {
				return domain.Payload{}, err
			}
			return domain.Payload{Value: "/usr/bin/ffmpeg", Version: "6.1"}, nil
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := registry.Load(ctx, "ffmpeg"); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	for _, status := range registry.Snapshot() {
		if status.Name == "ffmpeg" && status.State != domain.StateUnloaded {
			t.Fatalf("canceled load must not land in shared state, got %s", status.State)
		}
	}

	status, err := registry.Load(context.Background(), "ffmpeg")
	if err != nil {
		t.Fatalf("fresh load after cancellation: %v", err)
	}
	if status.State != domain.StateReady || status.Payload != "/usr/bin/ffmpeg" {
		t.Fatalf("unexpected status: %+v", status)
	}
	if loads.Load() != 2 {
		t.Fatalf("want a second load attempt, got %d", loads.Load())
	}
}

func TestResolveForRequiredAndOptional(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	ok := func(value string) domain.Loader {
		return func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			return domain.Payload{Value: value}, nil
		}
	}
	failing := func(context.Context, domain.InstallUtils) (domain.Payload, error) {
		return domain.Payload{}, errors.New("broken")
	}
	_ = registry.Register(domain.Registration{Name: "ffmpeg", Load: ok("/bin/ffmpeg")})
	_ = registry.Register(domain.Registration{Name: "ffprobe", Load: failing})

	// optional failure degrades to a nil entry
	resolved, err := registry.ResolveFor(context.Background(), []string{"ffmpeg"}, []string{"ffprobe"})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved["ffmpeg"] != "/bin/ffmpeg" {
		t.Fatalf("required payload missing: %#v", resolved)
	}
	if value, present := resolved["ffprobe"]; !present || value != nil {
		t.Fatalf("optional failure should leave a nil entry, got %#v", resolved)
	}

	// required failure aborts
	if _, err := registry.ResolveFor(context.Background(), []string{"ffprobe"}, nil); err == nil {
		t.Fatalf("expected required dependency failure to surface")
	}
}

func TestTerminalStatesStickUntilReset(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	var attempts atomic.Int32
	_ = registry.Register(domain.Registration{
		Name: "flaky",
		Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
			if attempts.Add(1) == 1 {
				return domain.Payload{}, errors.New("first attempt fails")
			}
			return domain.Payload{Value: "ok"}, nil
		},
	})

	if _, err := registry.Load(context.Background(), "flaky"); err == nil {
		t.Fatalf("expected first load to fail")
	}
	// failed is terminal: no new attempt without a reset
	if _, err := registry.Load(context.Background(), "flaky"); err == nil {
		t.Fatalf("expected sticky failure")
	}
	if attempts.Load() != 1 {
		t.Fatalf("terminal state must not re-load, attempts=%d", attempts.Load())
	}

	if err := registry.Reset("flaky"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	status, err := registry.Load(context.Background(), "flaky")
	if err != nil {
		t.Fatalf("load after reset: %v", err)
	}
	if status.State != domain.StateReady {
		t.Fatalf("expected ready after reset, got %s", status.State)
	}
}

func TestSnapshotListsEveryRegistration(t *testing.T) {
	t.Parallel()
	registry := newRegistry(t)
	_ = registry.Register(domain.Registration{Name: "b", Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
		return domain.Payload{}, nil
	}})
	_ = registry.Register(domain.Registration{Name: "a", Load: func(context.Context, domain.InstallUtils) (domain.Payload, error) {
		return domain.Payload{}, nil
	}})
	snapshot := registry.Snapshot()
	if len(snapshot) != 2 || snapshot[0].Name != "a" || snapshot[1].Name != "b" {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot[0].State != domain.StateUnloaded {
		t.Fatalf("unloaded before first use, got %s", snapshot[0].State)
	}
}
