package out

import (
	"context"
	"time"

	"dropkit/internal/modules/journal/domain"
)

type Store interface {
	Append(ctx context.Context, record domain.Record) error
	Get(ctx context.Context, id string) (domain.Record, error)
	SetStatus(ctx context.Context, id string, status domain.Status, errMessage string, at time.Time) error
	List(ctx context.Context, limit int) ([]domain.Record, error)
}
