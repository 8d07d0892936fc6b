package dto

type DispatchInput struct {
	Paths     []string
	URLs      []string
	Texts     []string
	Processor string
	Options   map[string]any
	DryRun    bool
	Run       bool
}

type OperationInfo struct {
	ID          string
	Processor   string
	ItemCount   int
	Bulk        bool
	ThreadTypes []string
	Status      string
	Error       string
}

type DispatchOutput struct {
	Items      int
	Operations []OperationInfo
	// Skipped lists per-processor pipeline failures (drop filter or
	// preparator errors, failed required dependencies).
	Skipped []string
}
