package in

import (
	"context"

	"dropkit/internal/modules/deps/dto"
	depsin "dropkit/internal/modules/deps/port/in"
)

type CLIHandler struct {
	usecase depsin.Usecase
}

func NewCLIHandler(usecase depsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Load(ctx context.Context, name string) (dto.DependencyStatus, error) {
	return h.usecase.Load(ctx, name)
}

func (h CLIHandler) Reset(name string) error {
	return h.usecase.Reset(name)
}

func (h CLIHandler) Snapshot() []dto.DependencyStatus {
	return h.usecase.Snapshot()
}
