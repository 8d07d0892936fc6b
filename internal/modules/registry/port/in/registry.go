package in

import (
	"context"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/registry/dto"
)

type Usecase interface {
	Register(processor dispatchdomain.Processor) error
	Registered(ctx context.Context) ([]dispatchdomain.Processor, error)
	List(ctx context.Context) ([]dto.ProcessorInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Describe(ctx context.Context, name string) (dto.ProcessorDetail, error)
}
