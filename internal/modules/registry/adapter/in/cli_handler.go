package in

import (
	"context"

	"dropkit/internal/modules/registry/dto"
	registryin "dropkit/internal/modules/registry/port/in"
)

type CLIHandler struct {
	usecase registryin.Usecase
}

func NewCLIHandler(usecase registryin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]dto.ProcessorInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Describe(ctx context.Context, name string) (dto.ProcessorDetail, error) {
	return h.usecase.Describe(ctx, name)
}
