package in

import (
	"context"

	"dropkit/internal/modules/dispatch/dto"
)

type Usecase interface {
	Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error)
}
