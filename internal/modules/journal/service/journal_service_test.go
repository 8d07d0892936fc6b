package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/journal/domain"
	"dropkit/internal/modules/journal/service"
)

type memStore struct {
	records map[string]domain.Record
}

func newMemStore() *memStore {
	return &memStore{records: map[string]domain.Record{}}
}

func (s *memStore) Append(_ context.Context, record domain.Record) error {
	s.records[record.ID] = record
	return nil
}

func (s *memStore) Get(_ context.Context, id string) (domain.Record, error) {
	record, ok := s.records[id]
	if !ok {
		return domain.Record{}, domain.ErrRecordNotFound
	}
	return record, nil
}

func (s *memStore) SetStatus(_ context.Context, id string, status domain.Status, errMessage string, at time.Time) error {
	record, ok := s.records[id]
	if !ok {
		return domain.ErrRecordNotFound
	}
	record.Status = status
	record.Error = errMessage
	record.UpdatedAt = at
	s.records[id] = record
	return nil
}

func (s *memStore) List(context.Context, int) ([]domain.Record, error) {
	return nil, nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type seqIDs struct{ n int }

func (g *seqIDs) New() string {
	g.n++
	return string(rune('a' + g.n - 1))
}

func TestRecordDispatchJournalsOperationShape(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	svc := service.NewJournalService(store, fixedClock{at: now}, &seqIDs{}, nil)

	item := dispatchdomain.Item{ID: "i1", Kind: dispatchdomain.ItemFile, Path: "/a.png"}
	single, err := svc.RecordDispatch(context.Background(), dispatchdomain.Operation{
		ID: "op1", Processor: "resize", Item: &item,
	})
	if err != nil {
		t.Fatalf("record single: %v", err)
	}
	if single.Bulk || single.ItemCount != 1 || single.Status != domain.StatusDispatched {
		t.Fatalf("unexpected single record: %+v", single)
	}

	bulk, err := svc.RecordDispatch(context.Background(), dispatchdomain.Operation{
		ID: "op2", Processor: "archive", Items: []dispatchdomain.Item{{}, {}, {}},
	})
	if err != nil {
		t.Fatalf("record bulk: %v", err)
	}
	if !bulk.Bulk || bulk.ItemCount != 3 {
		t.Fatalf("unexpected bulk record: %+v", bulk)
	}
	if single.ID == bulk.ID {
		t.Fatalf("records must get distinct ids")
	}
}

func TestSettleEnforcesTransitions(t *testing.T) {
	t.Parallel()
	store := newMemStore()
	svc := service.NewJournalService(store, fixedClock{at: time.Now()}, &seqIDs{}, nil)

	item := dispatchdomain.Item{ID: "i1", Kind: dispatchdomain.ItemFile, Path: "/a.png"}
	record, err := svc.RecordDispatch(context.Background(), dispatchdomain.Operation{
		ID: "op1", Processor: "resize", Item: &item,
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	if err := svc.Settle(context.Background(), record.ID, domain.StatusFailed, errors.New("boom")); err != nil {
		t.Fatalf("settle: %v", err)
	}
	got, _ := store.Get(context.Background(), record.ID)
	if got.Status != domain.StatusFailed || got.Error != "boom" {
		t.Fatalf("failure not recorded: %+v", got)
	}

	// terminal records cannot settle again
	if err := svc.Settle(context.Background(), record.ID, domain.StatusCompleted, nil); !errors.Is(err, domain.ErrBadTransition) {
		t.Fatalf("expected bad transition, got %v", err)
	}

	if err := svc.Settle(context.Background(), "missing", domain.StatusCompleted, nil); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
