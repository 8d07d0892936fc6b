package usecase

import (
	"dropkit/internal/modules/options/domain"
	"dropkit/internal/modules/options/dto"
	optionsin "dropkit/internal/modules/options/port/in"
	"dropkit/internal/modules/options/service"
)

type Interactor struct {
	svc *service.OptionsService
}

func NewInteractor(svc *service.OptionsService) optionsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Resolve(schema domain.Schema, partial map[string]any) (domain.Resolved, error) {
	return i.svc.Resolve(schema, partial)
}

func (i *Interactor) DecodeSchema(raw []map[string]any) (domain.Schema, error) {
	return i.svc.DecodeSchema(raw)
}

func (i *Interactor) CheckFile(path string) (dto.SchemaReport, error) {
	schema, defaults, err := i.svc.CheckFile(path)
	if err != nil {
		return dto.SchemaReport{Path: path, Err: err.Error()}, err
	}
	return dto.SchemaReport{Path: path, Nodes: len(schema), Defaults: defaults}, nil
}
