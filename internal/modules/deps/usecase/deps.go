package usecase

import (
	"context"

	"dropkit/internal/modules/deps/domain"
	"dropkit/internal/modules/deps/dto"
	depsin "dropkit/internal/modules/deps/port/in"
	"dropkit/internal/modules/deps/service"
)

type Interactor struct {
	svc *service.RegistryService
}

func NewInteractor(svc *service.RegistryService) depsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Register(reg domain.Registration) error {
	return i.svc.Register(reg)
}

func (i *Interactor) Load(ctx context.Context, name string) (dto.DependencyStatus, error) {
	status, err := i.svc.Load(ctx, name)
	return toDTO(status), err
}

func (i *Interactor) ResolveFor(ctx context.Context, required, optional []string) (map[string]any, error) {
	return i.svc.ResolveFor(ctx, required, optional)
}

func (i *Interactor) Reset(name string) error {
	return i.svc.Reset(name)
}

func (i *Interactor) Snapshot() []dto.DependencyStatus {
	statuses := i.svc.Snapshot()
	out := make([]dto.DependencyStatus, 0, len(statuses))
	for _, status := range statuses {
		out = append(out, toDTO(status))
	}
	return out
}

func toDTO(status domain.Status) dto.DependencyStatus {
	out := dto.DependencyStatus{
		Name:    status.Name,
		State:   string(status.State),
		Version: status.Version,
	}
	if status.Err != nil {
		out.Error = status.Err.Error()
	}
	return out
}
