package out

import "dropkit/internal/modules/options/domain"

// SchemaDecoder turns manifest-declared option nodes into typed schema
// nodes. Only static node forms can come from a manifest; predicate
// forms are reserved for in-process processors.
type SchemaDecoder interface {
	Decode(raw []map[string]any) (domain.Schema, error)
	DecodeFile(path string) (domain.Schema, error)
}
