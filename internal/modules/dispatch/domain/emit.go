package domain

import "context"

// OutputMeta optionally annotates an emitted output with a flair badge.
type OutputMeta struct {
	Flair string
	Badge string
}

// OutputEmitter is the only way a processor reports results. One item's
// failure is reported through Error and must not affect sibling
// operations.
type OutputEmitter interface {
	File(path string, meta *OutputMeta)
	Directory(path string, meta *OutputMeta)
	URL(url string, meta *OutputMeta)
	String(value string, meta *OutputMeta)
	Error(err error, meta *OutputMeta)
	Warning(message string, meta *OutputMeta)
}

type ProgressSnapshot struct {
	Completed     float64
	Total         float64
	Indeterminate bool
}

// Progress reports operation progress to the host. Report takes the
// structured form; ReportCompleted covers the positional call shape.
type Progress interface {
	Report(snapshot ProgressSnapshot)
	ReportCompleted(completed, total float64)
	Snapshot() ProgressSnapshot
	Destroy()
}

// ModalResult is the cancelable outcome of any modal interaction.
type ModalResult struct {
	Canceled  bool
	Payload   any
	Modifiers []string
}

// Modals is the host dialog service consumed by preparators. The core
// declares and threads it; rendering is a host concern.
type Modals interface {
	Alert(ctx context.Context, title, message string) (ModalResult, error)
	Confirm(ctx context.Context, title, message string) (ModalResult, error)
	Prompt(ctx context.Context, title, message, placeholder string) (ModalResult, error)
	PromptOptions(ctx context.Context, title string, options []string) (ModalResult, error)
	OpenFile(ctx context.Context, title string, filters []string) (ModalResult, error)
	SaveFile(ctx context.Context, title, defaultPath string) (ModalResult, error)
	OpenModal(ctx context.Context, name string, payload any) (ModalResult, error)
}
