package service

import (
	"fmt"

	"dropkit/internal/modules/options/domain"
	optionsout "dropkit/internal/modules/options/port/out"
)

type OptionsService struct {
	decoder optionsout.SchemaDecoder
}

func NewOptionsService(decoder optionsout.SchemaDecoder) *OptionsService {
	return &OptionsService{decoder: decoder}
}

func (s *OptionsService) Resolve(schema domain.Schema, partial map[string]any) (domain.Resolved, error) {
	return schema.Resolve(partial)
}

func (s *OptionsService) DecodeSchema(raw []map[string]any) (domain.Schema, error) {
	schema, err := s.decoder.Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	return schema, nil
}

// CheckFile decodes and validates a schema file and resolves its
// defaults, surfacing plugin-author mistakes before any dispatch.
func (s *OptionsService) CheckFile(path string) (domain.Schema, domain.Resolved, error) {
	schema, err := s.decoder.DecodeFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("decode schema %s: %w", path, err)
	}
	defaults, err := schema.Resolve(nil)
	if err != nil {
		return nil, nil, err
	}
	return schema, defaults, nil
}

func (s *OptionsService) NewLive(schema domain.Schema, partial map[string]any) (*Live, error) {
	return NewLive(schema, partial)
}
