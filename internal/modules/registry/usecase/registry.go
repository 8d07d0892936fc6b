package usecase

import (
	"context"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/registry/dto"
	registryin "dropkit/internal/modules/registry/port/in"
	"dropkit/internal/modules/registry/service"
)

type Interactor struct {
	svc *service.RegistryService
}

func NewInteractor(svc *service.RegistryService) registryin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Register(processor dispatchdomain.Processor) error {
	return i.svc.Register(processor)
}

func (i *Interactor) Registered(ctx context.Context) ([]dispatchdomain.Processor, error) {
	return i.svc.Registered(ctx)
}

func (i *Interactor) List(ctx context.Context) ([]dto.ProcessorInfo, error) {
	return i.svc.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.svc.Doctor(ctx)
}

func (i *Interactor) Describe(ctx context.Context, name string) (dto.ProcessorDetail, error) {
	return i.svc.Describe(ctx, name)
}
