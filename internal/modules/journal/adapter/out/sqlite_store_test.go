package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	out "dropkit/internal/modules/journal/adapter/out"
	"dropkit/internal/modules/journal/domain"
)

func newStore(t *testing.T) (journalStore, context.Context) {
	t.Helper()
	store, err := out.NewSQLiteStore(filepath.Join(t.TempDir(), ".dropkit", "journal.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return store, context.Background()
}

type journalStore interface {
	Append(ctx context.Context, record domain.Record) error
	Get(ctx context.Context, id string) (domain.Record, error)
	SetStatus(ctx context.Context, id string, status domain.Status, errMessage string, at time.Time) error
	List(ctx context.Context, limit int) ([]domain.Record, error)
}

func record(id string, at time.Time) domain.Record {
	return domain.Record{
		ID:          id,
		OperationID: "op-" + id,
		Processor:   "checksum",
		ItemCount:   2,
		Bulk:        true,
		Status:      domain.StatusDispatched,
		CreatedAt:   at,
		UpdatedAt:   at,
	}
}

func TestAppendGetRoundTrip(t *testing.T) {
	t.Parallel()
	store, ctx := newStore(t)
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if err := store.Append(ctx, record("r1", at)); err != nil {
		t.Fatalf("append: %v", err)
	}
	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OperationID != "op-r1" || got.Processor != "checksum" || !got.Bulk || got.ItemCount != 2 {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if !got.CreatedAt.Equal(at) {
		t.Fatalf("timestamp mismatch: %v != %v", got.CreatedAt, at)
	}
	if got.Status != domain.StatusDispatched {
		t.Fatalf("unexpected status: %s", got.Status)
	}
}

func TestGetUnknownRecord(t *testing.T) {
	t.Parallel()
	store, ctx := newStore(t)
	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.SetStatus(ctx, "ghost", domain.StatusCompleted, "", time.Now()); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}

func TestSetStatusUpdatesRecord(t *testing.T) {
	t.Parallel()
	store, ctx := newStore(t)
	at := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	if err := store.Append(ctx, record("r1", at)); err != nil {
		t.Fatalf("append: %v", err)
	}
	settled := at.Add(3 * time.Second)
	if err := store.SetStatus(ctx, "r1", domain.StatusFailed, "disk full", settled); err != nil {
		t.Fatalf("set status: %v", err)
	}
	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.StatusFailed || got.Error != "disk full" {
		t.Fatalf("status not updated: %+v", got)
	}
	if !got.UpdatedAt.Equal(settled) || !got.CreatedAt.Equal(at) {
		t.Fatalf("timestamps wrong: created=%v updated=%v", got.CreatedAt, got.UpdatedAt)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	t.Parallel()
	store, ctx := newStore(t)
	base := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		if err := store.Append(ctx, record(id, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}
	records, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 2 || records[0].ID != "r3" || records[1].ID != "r2" {
		t.Fatalf("expected newest first with limit, got %+v", records)
	}
	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected all records, got %d", len(all))
	}
}
