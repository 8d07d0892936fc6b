package dto

type SchemaReport struct {
	Path     string
	Nodes    int
	Defaults map[string]any
	Err      string
}
