package usecase

import (
	"context"
	"errors"
	"fmt"

	depsin "dropkit/internal/modules/deps/port/in"
	"dropkit/internal/modules/dispatch/domain"
	"dropkit/internal/modules/dispatch/dto"
	dispatchin "dropkit/internal/modules/dispatch/port/in"
	"dropkit/internal/modules/dispatch/service"
	journaldomain "dropkit/internal/modules/journal/domain"
	journalin "dropkit/internal/modules/journal/port/in"
	optionsdomain "dropkit/internal/modules/options/domain"
	registryin "dropkit/internal/modules/registry/port/in"
	apperrors "dropkit/internal/platform/errors"
)

// Interactor drives one full drop cycle: collect items, match them
// against the registered processors, resolve dependencies, journal what
// gets dispatched and optionally run it.
type Interactor struct {
	svc      *service.DispatchService
	registry registryin.Usecase
	deps     depsin.Usecase
	journal  journalin.Usecase
	emitter  domain.OutputEmitter
	progress domain.Progress
}

// NewInteractor wires the dispatcher. progress receives cycle-level
// completion reports while operations run and may be nil.
func NewInteractor(
	svc *service.DispatchService,
	registry registryin.Usecase,
	deps depsin.Usecase,
	journal journalin.Usecase,
	emitter domain.OutputEmitter,
	progress domain.Progress,
) dispatchin.Usecase {
	return &Interactor{svc: svc, registry: registry, deps: deps, journal: journal, emitter: emitter, progress: progress}
}

func (i *Interactor) Dispatch(ctx context.Context, input dto.DispatchInput) (dto.DispatchOutput, error) {
	processors, err := i.registry.Registered(ctx)
	if err != nil {
		return dto.DispatchOutput{}, err
	}
	if input.Processor != "" {
		selected := processors[:0:0]
		for _, proc := range processors {
			if proc.Name == input.Processor {
				selected = append(selected, proc)
			}
		}
		if len(selected) == 0 {
			return dto.DispatchOutput{}, fmt.Errorf("%w: processor %s", apperrors.ErrNotFound, input.Processor)
		}
		processors = selected
	}

	output := dto.DispatchOutput{}
	optionsFor := map[string]optionsdomain.Resolved{}
	runnable := processors[:0:0]
	for _, proc := range processors {
		partial := map[string]any(nil)
		if input.Processor == proc.Name {
			partial = input.Options
		}
		resolved, err := proc.Config.Options.Resolve(partial)
		if err != nil {
			output.Skipped = append(output.Skipped, fmt.Sprintf("%s: %v", proc.Name, err))
			continue
		}
		optionsFor[proc.Name] = resolved
		runnable = append(runnable, proc)
	}

	items, err := i.svc.ItemsFromInputs(input.Paths, input.URLs, input.Texts)
	if err != nil {
		return dto.DispatchOutput{}, err
	}
	output.Items = len(items)

	matches, err := i.svc.Match(ctx, runnable, items, optionsFor)
	if err != nil {
		return dto.DispatchOutput{}, err
	}
	byName := map[string]domain.Processor{}
	for _, proc := range runnable {
		byName[proc.Name] = proc
	}

	total := 0
	for _, match := range matches {
		if match.Err == nil {
			total += len(match.Operations)
		}
	}
	done := 0
	for _, match := range matches {
		if match.Err != nil {
			output.Skipped = append(output.Skipped, fmt.Sprintf("%s: %v", match.Processor, match.Err))
			continue
		}
		for _, op := range match.Operations {
			info, skipped := i.dispatchOne(ctx, byName[match.Processor], op, input)
			done++
			if i.progress != nil && input.Run && !input.DryRun {
				i.progress.ReportCompleted(float64(done), float64(total))
			}
			if skipped != "" {
				output.Skipped = append(output.Skipped, skipped)
				continue
			}
			output.Operations = append(output.Operations, info)
		}
	}
	if i.progress != nil && input.Run && !input.DryRun {
		i.progress.Destroy()
	}
	return output, nil
}

// dispatchOne resolves one operation's dependencies, journals it and
// optionally runs it. An operation whose required dependencies fail is
// never dispatched; it surfaces as a skip, not an error.
func (i *Interactor) dispatchOne(ctx context.Context, proc domain.Processor, op domain.Operation, input dto.DispatchInput) (dto.OperationInfo, string) {
	info := dto.OperationInfo{
		ID:          op.ID,
		Processor:   op.Processor,
		ItemCount:   len(op.Items),
		Bulk:        op.Item == nil,
		ThreadTypes: op.ThreadTypes,
	}
	if op.Item != nil {
		info.ItemCount = 1
	}
	if input.DryRun {
		info.Status = "matched"
		return info, ""
	}

	resolvedDeps, err := i.deps.ResolveFor(ctx, op.RequiredDeps, op.OptionalDeps)
	if err != nil {
		return dto.OperationInfo{}, fmt.Sprintf("%s: %v", op.Processor, err)
	}

	record, err := i.journal.RecordDispatch(ctx, op)
	if err != nil {
		return dto.OperationInfo{}, fmt.Sprintf("%s: journal: %v", op.Processor, err)
	}
	info.Status = string(journaldomain.StatusDispatched)
	if !input.Run {
		return info, ""
	}

	runErr := proc.Run(ctx, op, resolvedDeps, i.emitter)
	status := journaldomain.StatusCompleted
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled) || errors.Is(runErr, apperrors.ErrCanceled):
		status = journaldomain.StatusCanceled
	default:
		status = journaldomain.StatusFailed
	}
	// the outcome must land in the journal even when the run itself
	// was canceled
	if err := i.journal.Settle(context.WithoutCancel(ctx), record.ID, status, runErr); err != nil {
		return dto.OperationInfo{}, fmt.Sprintf("%s: journal: %v", op.Processor, err)
	}
	info.Status = string(status)
	if runErr != nil {
		info.Error = runErr.Error()
	}
	return info, ""
}
