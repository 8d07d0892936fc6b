package out

import (
	optionsdomain "dropkit/internal/modules/options/domain"
	optionsin "dropkit/internal/modules/options/port/in"
	registryout "dropkit/internal/modules/registry/port/out"
)

// OptionsSchemaDecoder satisfies the registry's schema port with the
// options module's decoder.
type OptionsSchemaDecoder struct {
	options optionsin.Usecase
}

func NewOptionsSchemaDecoder(options optionsin.Usecase) registryout.SchemaDecoder {
	return &OptionsSchemaDecoder{options: options}
}

func (d *OptionsSchemaDecoder) Decode(raw []map[string]any) (optionsdomain.Schema, error) {
	return d.options.DecodeSchema(raw)
}
