package in

import (
	"dropkit/internal/modules/options/domain"
	"dropkit/internal/modules/options/dto"
)

type Usecase interface {
	Resolve(schema domain.Schema, partial map[string]any) (domain.Resolved, error)
	DecodeSchema(raw []map[string]any) (domain.Schema, error)
	CheckFile(path string) (dto.SchemaReport, error)
}
