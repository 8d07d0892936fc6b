package in

import (
	"context"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/journal/domain"
	"dropkit/internal/modules/journal/dto"
)

type Usecase interface {
	RecordDispatch(ctx context.Context, op dispatchdomain.Operation) (domain.Record, error)
	Settle(ctx context.Context, recordID string, status domain.Status, runErr error) error
	List(ctx context.Context, limit int) ([]dto.JournalEntry, error)
}
