package usecase

import (
	"context"
	"time"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/journal/domain"
	"dropkit/internal/modules/journal/dto"
	journalin "dropkit/internal/modules/journal/port/in"
	"dropkit/internal/modules/journal/service"
)

type Interactor struct {
	svc *service.JournalService
}

func NewInteractor(svc *service.JournalService) journalin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) RecordDispatch(ctx context.Context, op dispatchdomain.Operation) (domain.Record, error) {
	return i.svc.RecordDispatch(ctx, op)
}

func (i *Interactor) Settle(ctx context.Context, recordID string, status domain.Status, runErr error) error {
	return i.svc.Settle(ctx, recordID, status, runErr)
}

func (i *Interactor) List(ctx context.Context, limit int) ([]dto.JournalEntry, error) {
	records, err := i.svc.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]dto.JournalEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, dto.JournalEntry{
			ID:          record.ID,
			OperationID: record.OperationID,
			Processor:   record.Processor,
			ItemCount:   record.ItemCount,
			Bulk:        record.Bulk,
			Status:      string(record.Status),
			Error:       record.Error,
			CreatedAt:   record.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   record.UpdatedAt.Format(time.RFC3339),
		})
	}
	return entries, nil
}
