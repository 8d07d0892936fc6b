package service

import (
	"context"
	"fmt"
	"os"
	"sync"

	dispatchdomain "dropkit/internal/modules/dispatch/domain"
	optionsdomain "dropkit/internal/modules/options/domain"
	"dropkit/internal/modules/registry/domain"
	"dropkit/internal/modules/registry/dto"
	registryout "dropkit/internal/modules/registry/port/out"

	hclog "github.com/hashicorp/go-hclog"
)

// RegistryService merges in-process processors with external ones
// declared in the manifest store. Candidate order is registration order
// for in-process processors followed by manifest order; that ordering
// is what the dispatcher walks during a match cycle.
type RegistryService struct {
	store   registryout.ManifestStore
	host    registryout.Host
	schemas registryout.SchemaDecoder
	log     hclog.Logger

	mu        sync.Mutex
	order     []string
	inProcess map[string]dispatchdomain.Processor
}

func NewRegistryService(store registryout.ManifestStore, host registryout.Host, schemas registryout.SchemaDecoder, log hclog.Logger) *RegistryService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &RegistryService{
		store:     store,
		host:      host,
		schemas:   schemas,
		log:       log,
		inProcess: map[string]dispatchdomain.Processor{},
	}
}

func (s *RegistryService) Register(processor dispatchdomain.Processor) error {
	if err := processor.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inProcess[processor.Name]; ok {
		return fmt.Errorf("%w: %s", dispatchdomain.ErrDuplicateProcessor, processor.Name)
	}
	s.inProcess[processor.Name] = processor
	s.order = append(s.order, processor.Name)
	return nil
}

// Registered returns every runnable processor in candidate order.
// Disabled manifests are skipped; a manifest that collides with an
// in-process name or fails validation fails the whole listing, since a
// partial registry would silently change match outcomes.
func (s *RegistryService) Registered(ctx context.Context) ([]dispatchdomain.Processor, error) {
	s.mu.Lock()
	processors := make([]dispatchdomain.Processor, 0, len(s.order))
	seen := make(map[string]struct{}, len(s.order))
	for _, name := range s.order {
		processors = append(processors, s.inProcess[name])
		seen[name] = struct{}{}
	}
	s.mu.Unlock()

	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, manifest := range manifests {
		if err := manifest.Validate(); err != nil {
			return nil, fmt.Errorf("manifest %q: %w", manifest.Name, err)
		}
		if _, ok := seen[manifest.Name]; ok {
			return nil, fmt.Errorf("%w: %s", dispatchdomain.ErrDuplicateProcessor, manifest.Name)
		}
		seen[manifest.Name] = struct{}{}
		if !manifest.Enabled {
			continue
		}
		processor, err := s.externalProcessor(manifest)
		if err != nil {
			return nil, fmt.Errorf("manifest %q: %w", manifest.Name, err)
		}
		processors = append(processors, processor)
	}
	return processors, nil
}

// externalProcessor adapts one manifest into the dispatch contract.
// The run func spans the binary's process lifecycle and replays its
// outputs onto the host emitter.
func (s *RegistryService) externalProcessor(manifest domain.Manifest) (dispatchdomain.Processor, error) {
	accepts, err := manifest.Accepts.Compile()
	if err != nil {
		return dispatchdomain.Processor{}, err
	}
	schema, err := s.schemas.Decode(manifest.Options)
	if err != nil {
		return dispatchdomain.Processor{}, err
	}
	config := dispatchdomain.ProcessorConfig{
		Main:                 manifest.Binary,
		Accepts:              accepts,
		Bulk:                 dispatchdomain.BulkPolicy{Static: manifest.Bulk},
		ThreadType:           threadType(manifest.ThreadType),
		Dependencies:         manifest.Dependencies,
		OptionalDependencies: manifest.OptionalDependencies,
		Options:              schema,
	}
	if manifest.ExpandDirectory {
		config.ExpandDirectory = func(dispatchdomain.Item, optionsdomain.Resolved) bool { return true }
	}
	run := func(ctx context.Context, op dispatchdomain.Operation, deps map[string]any, emit dispatchdomain.OutputEmitter) error {
		s.log.Debug("running external processor", "processor", manifest.Name, "operation", op.ID)
		outputs, err := s.host.Run(ctx, manifest, op, deps)
		if err != nil {
			return err
		}
		for _, output := range outputs {
			output.Emit(emit)
		}
		return nil
	}
	return dispatchdomain.Processor{Name: manifest.Name, Config: config, Run: run}, nil
}

func threadType(kind string) dispatchdomain.ThreadType {
	if kind == "" {
		return dispatchdomain.ThreadType{}
	}
	return dispatchdomain.ThreadType{Kinds: []string{kind}}
}

func (s *RegistryService) List(ctx context.Context) ([]dto.ProcessorInfo, error) {
	s.mu.Lock()
	infos := make([]dto.ProcessorInfo, 0, len(s.order))
	for _, name := range s.order {
		processor := s.inProcess[name]
		infos = append(infos, dto.ProcessorInfo{
			Name:       name,
			Source:     "builtin",
			Enabled:    true,
			ThreadType: firstThreadKind(processor.Config.ThreadType),
			Bulk:       processor.Config.Bulk.Static,
		})
	}
	s.mu.Unlock()

	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, manifest := range manifests {
		infos = append(infos, dto.ProcessorInfo{
			Name:       manifest.Name,
			Version:    manifest.Version,
			Source:     "external",
			Enabled:    manifest.Enabled,
			Binary:     manifest.Binary,
			ThreadType: manifest.ThreadType,
			Bulk:       manifest.Bulk,
		})
	}
	return infos, nil
}

func (s *RegistryService) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	manifests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	results := make([]dto.DoctorResult, 0, len(manifests))
	for _, manifest := range manifests {
		result := dto.DoctorResult{Name: manifest.Name}
		if err := manifest.Validate(); err != nil {
			result.Error = err.Error()
			results = append(results, result)
			continue
		}
		result.ManifestValid = true
		result.BinaryReachable = fileExists(manifest.Binary)
		if !result.BinaryReachable {
			result.Error = fmt.Sprintf("binary does not exist: %s", manifest.Binary)
			results = append(results, result)
			continue
		}
		if manifest.Enabled && s.host != nil {
			if err := s.host.CheckLifecycle(ctx, manifest); err != nil {
				result.Error = err.Error()
			} else {
				result.LifecycleOK = true
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *RegistryService) Describe(ctx context.Context, name string) (dto.ProcessorDetail, error) {
	s.mu.Lock()
	processor, ok := s.inProcess[name]
	s.mu.Unlock()
	if ok {
		return describeConfig(name, "", "builtin", processor.Config), nil
	}

	manifests, err := s.store.Load(ctx)
	if err != nil {
		return dto.ProcessorDetail{}, err
	}
	for _, manifest := range manifests {
		if manifest.Name != name {
			continue
		}
		if err := manifest.Validate(); err != nil {
			return dto.ProcessorDetail{}, err
		}
		processor, err := s.externalProcessor(manifest)
		if err != nil {
			return dto.ProcessorDetail{}, err
		}
		return describeConfig(name, manifest.Version, "external", processor.Config), nil
	}
	return dto.ProcessorDetail{}, fmt.Errorf("%w: %s", domain.ErrProcessorUnknown, name)
}

func describeConfig(name, version, source string, config dispatchdomain.ProcessorConfig) dto.ProcessorDetail {
	detail := dto.ProcessorDetail{
		Name:                 name,
		Version:              version,
		Source:               source,
		Accepts:              acceptPatterns(config.Accepts),
		Bulk:                 config.Bulk.Static,
		ExpandDirectory:      config.ExpandDirectory != nil,
		ThreadType:           firstThreadKind(config.ThreadType),
		Dependencies:         config.Dependencies,
		OptionalDependencies: config.OptionalDependencies,
	}
	for _, node := range config.Options {
		detail.OptionNames = append(detail.OptionNames, node.Name)
	}
	return detail
}

func acceptPatterns(accepts dispatchdomain.Accepts) map[string][]string {
	render := func(matchers []dispatchdomain.Matcher) []string {
		if len(matchers) == 0 {
			return nil
		}
		out := make([]string, 0, len(matchers))
		for _, matcher := range matchers {
			switch {
			case matcher.Pattern != nil:
				out = append(out, "/"+matcher.Pattern.String()+"/")
			case matcher.Func != nil:
				out = append(out, "(predicate)")
			default:
				out = append(out, matcher.Literal)
			}
		}
		return out
	}
	patterns := map[string][]string{}
	for kind, matchers := range map[string][]dispatchdomain.Matcher{
		"files":       accepts.Files,
		"directories": accepts.Directories,
		"blobs":       accepts.Blobs,
		"strings":     accepts.Strings,
		"urls":        accepts.URLs,
	} {
		if rendered := render(matchers); rendered != nil {
			patterns[kind] = rendered
		}
	}
	return patterns
}

func firstThreadKind(t dispatchdomain.ThreadType) string {
	if len(t.Kinds) > 0 {
		return t.Kinds[0]
	}
	return ""
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
