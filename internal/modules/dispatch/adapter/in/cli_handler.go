package in

import (
	"context"

	"dropkit/internal/modules/dispatch/dto"
	dispatchin "dropkit/internal/modules/dispatch/port/in"
)

type CLIHandler struct {
	usecase dispatchin.Usecase
}

func NewCLIHandler(usecase dispatchin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error) {
	return h.usecase.Dispatch(ctx, input)
}
