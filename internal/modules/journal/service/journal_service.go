package service

import (
	"context"
	"fmt"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/journal/domain"
	journalout "dropkit/internal/modules/journal/port/out"
	"dropkit/internal/platform/clock"
	"dropkit/internal/platform/id"

	hclog "github.com/hashicorp/go-hclog"
)

// JournalService records dispatched operations and settles their
// outcome. The journal is append-only history, never a work queue.
type JournalService struct {
	store journalout.Store
	clk   clock.Clock
	ids   id.Generator
	log   hclog.Logger
}

func NewJournalService(store journalout.Store, clk clock.Clock, ids id.Generator, log hclog.Logger) *JournalService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &JournalService{store: store, clk: clk, ids: ids, log: log}
}

// RecordDispatch journals one operation at the moment it leaves the
// dispatcher.
func (s *JournalService) RecordDispatch(ctx context.Context, op dispatchdomain.Operation) (domain.Record, error) {
	now := s.clk.Now()
	itemCount := len(op.Items)
	if op.Item != nil {
		itemCount = 1
	}
	record := domain.Record{
		ID:          s.ids.New(),
		OperationID: op.ID,
		Processor:   op.Processor,
		ItemCount:   itemCount,
		Bulk:        op.Item == nil,
		Status:      domain.StatusDispatched,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := record.Validate(); err != nil {
		return domain.Record{}, err
	}
	if err := s.store.Append(ctx, record); err != nil {
		return domain.Record{}, err
	}
	s.log.Debug("journaled operation", "record", record.ID, "processor", record.Processor, "items", record.ItemCount)
	return record, nil
}

func (s *JournalService) Settle(ctx context.Context, recordID string, status domain.Status, runErr error) error {
	if err := status.Validate(); err != nil {
		return err
	}
	record, err := s.store.Get(ctx, recordID)
	if err != nil {
		return err
	}
	if !domain.CanTransition(record.Status, status) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrBadTransition, record.Status, status)
	}
	errMessage := ""
	if runErr != nil {
		errMessage = runErr.Error()
	}
	return s.store.SetStatus(ctx, recordID, status, errMessage, s.clk.Now())
}

func (s *JournalService) List(ctx context.Context, limit int) ([]domain.Record, error) {
	return s.store.List(ctx, limit)
}
