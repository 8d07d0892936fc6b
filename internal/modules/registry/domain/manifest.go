package domain

import (
	"errors"
	"fmt"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
)

var (
	ErrProcessorUnknown = errors.New("processor not found")
	ErrProcessorTimeout = errors.New("processor timeout")
)

// ManifestAccepts carries the manifest's per-kind accept patterns.
// Each entry is either a literal or a slash-wrapped regular expression,
// the same convention LiteralMatcher compiles.
type ManifestAccepts struct {
	Files       []string `yaml:"files"`
	Directories []string `yaml:"directories"`
	Blobs       []string `yaml:"blobs"`
	Strings     []string `yaml:"strings"`
	URLs        []string `yaml:"urls"`
}

// Compile turns the declared patterns into dispatch matchers. Manifests
// can only express static alternatives; predicate matchers are reserved
// for in-process processors.
func (a ManifestAccepts) Compile() (dispatchdomain.Accepts, error) {
	compile := func(patterns []string) ([]dispatchdomain.Matcher, error) {
		if len(patterns) == 0 {
			return nil, nil
		}
		out := make([]dispatchdomain.Matcher, 0, len(patterns))
		for _, pattern := range patterns {
			matcher, err := dispatchdomain.LiteralMatcher(pattern)
			if err != nil {
				return nil, err
			}
			out = append(out, matcher)
		}
		return out, nil
	}
	var accepts dispatchdomain.Accepts
	var err error
	if accepts.Files, err = compile(a.Files); err != nil {
		return dispatchdomain.Accepts{}, err
	}
	if accepts.Directories, err = compile(a.Directories); err != nil {
		return dispatchdomain.Accepts{}, err
	}
	if accepts.Blobs, err = compile(a.Blobs); err != nil {
		return dispatchdomain.Accepts{}, err
	}
	if accepts.Strings, err = compile(a.Strings); err != nil {
		return dispatchdomain.Accepts{}, err
	}
	if accepts.URLs, err = compile(a.URLs); err != nil {
		return dispatchdomain.Accepts{}, err
	}
	return accepts, nil
}

// Manifest describes one external processor hosted over the plugin
// protocol. Accepts and the options schema live in the manifest so the
// host can match items without starting the binary.
type Manifest struct {
	Name                 string           `yaml:"name"`
	Version              string           `yaml:"version"`
	Binary               string           `yaml:"binary"`
	Enabled              bool             `yaml:"enabled"`
	Bulk                 bool             `yaml:"bulk"`
	ExpandDirectory      bool             `yaml:"expandDirectory"`
	ThreadType           string           `yaml:"threadType"`
	Dependencies         []string         `yaml:"dependencies"`
	OptionalDependencies []string         `yaml:"optionalDependencies"`
	Accepts              ManifestAccepts  `yaml:"accepts"`
	Options              []map[string]any `yaml:"options"`
}

func (m Manifest) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("processor name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("processor version is required")
	}
	if m.Binary == "" {
		return fmt.Errorf("processor binary path is required")
	}
	if _, err := m.Accepts.Compile(); err != nil {
		return err
	}
	return nil
}

type Metadata struct {
	Name    string
	Version string
}

// OutputKind mirrors the emitter surface on the wire.
type OutputKind string

const (
	OutputFile      OutputKind = "file"
	OutputDirectory OutputKind = "directory"
	OutputURL       OutputKind = "url"
	OutputString    OutputKind = "string"
	OutputError     OutputKind = "error"
	OutputWarning   OutputKind = "warning"
)

// Output is one emitted result from an external run, translated back
// onto the host emitter by the registry.
type Output struct {
	Kind  OutputKind
	Value string
	Flair string
}

func (o Output) Emit(emitter dispatchdomain.OutputEmitter) {
	var meta *dispatchdomain.OutputMeta
	if o.Flair != "" {
		meta = &dispatchdomain.OutputMeta{Flair: o.Flair}
	}
	switch o.Kind {
	case OutputFile:
		emitter.File(o.Value, meta)
	case OutputDirectory:
		emitter.Directory(o.Value, meta)
	case OutputURL:
		emitter.URL(o.Value, meta)
	case OutputString:
		emitter.String(o.Value, meta)
	case OutputError:
		emitter.Error(errors.New(o.Value), meta)
	case OutputWarning:
		emitter.Warning(o.Value, meta)
	}
}
