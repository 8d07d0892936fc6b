package service

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"

	"dropkit/internal/modules/dispatch/domain"
	dispatchout "dropkit/internal/modules/dispatch/port/out"
	optionsdomain "dropkit/internal/modules/options/domain"
	"dropkit/internal/platform/clock"
	"dropkit/internal/platform/id"

	hclog "github.com/hashicorp/go-hclog"
)

type DispatchService struct {
	walker dispatchout.Walker
	modals domain.Modals
	clk    clock.Clock
	ids    id.Generator
	log    hclog.Logger
}

func NewDispatchService(walker dispatchout.Walker, modals domain.Modals, clk clock.Clock, ids id.Generator, log hclog.Logger) *DispatchService {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	return &DispatchService{walker: walker, modals: modals, clk: clk, ids: ids, log: log}
}

// Match runs the acceptance pipeline for every processor in declaration
// order: acceptance filtering, directory expansion, drop filtering,
// grouping, preparation. Processors are independent: one processor's
// filter or preparator failure lands in its Match.Err and never
// touches siblings. The only overall failure is cancellation.
func (s *DispatchService) Match(
	ctx context.Context,
	processors []domain.Processor,
	items []domain.Item,
	optionsFor map[string]optionsdomain.Resolved,
) ([]domain.Match, error) {
	matches := make([]domain.Match, 0, len(processors))
	for _, proc := range processors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		match := s.matchOne(ctx, proc, items, optionsFor[proc.Name])
		if err := ctx.Err(); err != nil {
			// the cycle was aborted while a step was suspended;
			// discard whatever that step produced
			return nil, err
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *DispatchService) matchOne(ctx context.Context, proc domain.Processor, items []domain.Item, options optionsdomain.Resolved) domain.Match {
	match := domain.Match{Processor: proc.Name}
	cfg := proc.Config

	// step 1: acceptance filtering, OR over declaration alternatives
	accepted := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if cfg.Accepts.Accepts(item, options) {
			accepted = append(accepted, item)
		}
	}

	// step 2: directory expansion, re-filtered through step 1
	expanded := make([]domain.Item, 0, len(accepted))
	visited := map[string]struct{}{}
	for _, item := range accepted {
		if item.Kind == domain.ItemDirectory && cfg.ExpandDirectory != nil && cfg.ExpandDirectory(item, options) {
			children, err := s.expandDirectory(item, cfg, options, visited)
			if err != nil {
				match.Err = fmt.Errorf("expand %s: %w", item.Path, err)
				return match
			}
			expanded = append(expanded, children...)
			continue
		}
		expanded = append(expanded, item)
	}

	// step 3: drop filtering may veto or reduce the final set
	final := expanded
	if cfg.DropFilter != nil {
		filtered, err := cfg.DropFilter(ctx, final, options)
		if err != nil {
			match.Err = fmt.Errorf("drop filter: %w", err)
			return match
		}
		if ctx.Err() != nil {
			return match
		}
		final = filtered
	}
	if len(final) == 0 {
		return match
	}

	// step 4: grouping; a bulk predicate runs once against the whole set
	var drafts []domain.Operation
	if cfg.Bulk.Eval(final, options) {
		drafts = []domain.Operation{s.newOperation(proc, options, nil, final)}
	} else {
		drafts = make([]domain.Operation, 0, len(final))
		for i := range final {
			item := final[i]
			drafts = append(drafts, s.newOperation(proc, options, &item, nil))
		}
	}

	// step 5: preparation; a nil result is a silent veto
	for _, draft := range drafts {
		op := draft
		if cfg.OperationPreparator != nil {
			prepared, err := cfg.OperationPreparator(ctx, op, s.modals)
			if err != nil {
				match.Err = fmt.Errorf("prepare operation: %w", err)
				return match
			}
			if ctx.Err() != nil {
				return match
			}
			if prepared == nil {
				s.log.Debug("operation vetoed by preparator", "processor", proc.Name, "operation", op.ID)
				continue
			}
			op = *prepared
		}
		op.ThreadTypes = cfg.ThreadType.For(op)
		op.Parallelize = cfg.Parallelize.Eval(op)
		match.Operations = append(match.Operations, op)
	}
	return match
}

func (s *DispatchService) newOperation(proc domain.Processor, options optionsdomain.Resolved, item *domain.Item, items []domain.Item) domain.Operation {
	return domain.Operation{
		ID:           s.ids.New(),
		Processor:    proc.Name,
		Options:      options,
		Item:         item,
		Items:        items,
		RequiredDeps: proc.Config.Dependencies,
		OptionalDeps: proc.Config.OptionalDependencies,
	}
}

// expandDirectory recursively replaces an accepted directory item with
// its children, re-running acceptance on each child. Canonical paths
// already visited in this walk are skipped, which breaks symlink
// cycles.
func (s *DispatchService) expandDirectory(
	dir domain.Item,
	cfg domain.ProcessorConfig,
	options optionsdomain.Resolved,
	visited map[string]struct{},
) ([]domain.Item, error) {
	canonical, err := s.walker.Canonical(dir.Path)
	if err != nil {
		return nil, err
	}
	if _, seen := visited[canonical]; seen {
		return nil, nil
	}
	visited[canonical] = struct{}{}

	entries, err := s.walker.List(dir.Path)
	if err != nil {
		return nil, err
	}
	now := s.clk.Now()
	var out []domain.Item
	for _, entry := range entries {
		if entry.Dir {
			child := domain.NewDirectoryItem(s.ids.New(), entry.Path, now)
			// recursion is driven by the expand predicate alone;
			// acceptance only filters what expansion emits
			if cfg.ExpandDirectory != nil && cfg.ExpandDirectory(child, options) {
				children, err := s.expandDirectory(child, cfg, options, visited)
				if err != nil {
					return nil, err
				}
				out = append(out, children...)
				continue
			}
			if cfg.Accepts.Accepts(child, options) {
				out = append(out, child)
			}
			continue
		}
		mimeType := mime.TypeByExtension(filepath.Ext(entry.Path))
		child := domain.NewFileItem(s.ids.New(), entry.Path, mimeType, entry.Size, now)
		if cfg.Accepts.Accepts(child, options) {
			out = append(out, child)
		}
	}
	return out, nil
}
