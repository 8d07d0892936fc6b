package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"dropkit/internal/modules/options/domain"
)

const defaultAsyncDebounce = 300 * time.Millisecond

// Live is one resolved-options object bound to a schema. Each Set
// re-evaluates conditional predicates and re-runs validators whose
// declared dependencies include the changed option. Async validators
// are trailing-debounced per node; a newer Set cancels the in-flight
// run for that node. Independent Live instances share no state, so
// concurrent edit cycles across profiles cannot interfere.
type Live struct {
	mu      sync.Mutex
	schema  domain.Schema
	values  domain.Resolved
	states  map[string]domain.NodeState
	invalid map[string]bool
	pending map[string]*asyncRun

	// OnValidated, when set, is called after every validator verdict
	// with the node's dotted path. Called outside the lock.
	OnValidated func(path string, ok bool)

	validators []validatorRef
}

type validatorRef struct {
	path []string
	node domain.Node
}

type asyncRun struct {
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewLive(schema domain.Schema, partial map[string]any) (*Live, error) {
	values, err := schema.Resolve(partial)
	if err != nil {
		return nil, err
	}
	l := &Live{
		schema:  schema,
		values:  values,
		invalid: map[string]bool{},
		pending: map[string]*asyncRun{},
	}
	l.validators = collectValidators(schema, values, nil)
	l.states = schema.States(values)
	return l, nil
}

// collectValidators walks the schema alongside the resolved value tree
// so collection instances and list elements yield refs with concrete
// indexed paths ("layers.0.opacity"). Re-collected on every Set: the
// instance count is a runtime property of the values, not the schema.
func collectValidators(nodes domain.Schema, values domain.Resolved, prefix []string) []validatorRef {
	var out []validatorRef
	for _, node := range nodes {
		if node.Kind.Presentational() {
			continue
		}
		path := append(append([]string{}, prefix...), node.Name)
		if node.Validator != nil || node.AsyncValidator != nil {
			out = append(out, validatorRef{path: path, node: node})
		}
		switch node.Kind {
		case domain.KindNamespace:
			if sub, ok := values[node.Name].(domain.Resolved); ok {
				out = append(out, collectValidators(node.Schema, sub, path)...)
			}
		case domain.KindCollection:
			if items, ok := values[node.Name].([]domain.Resolved); ok {
				for i, item := range items {
					indexed := append(append([]string{}, path...), strconv.Itoa(i))
					out = append(out, collectValidators(node.Schema, item, indexed)...)
				}
			}
		case domain.KindList:
			if node.Item == nil || (node.Item.Validator == nil && node.Item.AsyncValidator == nil) {
				break
			}
			if items, ok := values[node.Name].([]any); ok {
				for i := range items {
					indexed := append(append([]string{}, path...), strconv.Itoa(i))
					out = append(out, validatorRef{path: indexed, node: *node.Item})
				}
			}
		}
	}
	return out
}

// Values returns the live resolved object. Callers treat it as a
// snapshot; mutate through Set only.
func (l *Live) Values() domain.Resolved {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values
}

func (l *Live) States() map[string]domain.NodeState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.states
}

func (l *Live) Invalid(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invalid[path]
}

// Pending reports whether an async validation is in flight (or
// debounce-scheduled) for the node.
func (l *Live) Pending(path string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.pending[path]
	return ok
}

func (l *Live) Set(path string, value any) error {
	segments := domain.ParsePath(path)
	node, err := l.schema.NodeAt(segments)
	if err != nil {
		return err
	}

	l.mu.Lock()
	if err := l.values.SetAt(segments, value); err != nil {
		l.mu.Unlock()
		return err
	}
	l.states = l.schema.States(l.values)
	l.validators = collectValidators(l.schema, l.values, nil)
	changedName := node.Name

	type verdict struct {
		path string
		ok   bool
	}
	var verdicts []verdict
	for _, ref := range l.validators {
		if !l.affected(ref, segments, changedName) {
			continue
		}
		refPath := joinDotted(ref.path)
		current, err := l.values.ValueAt(ref.path)
		if err != nil {
			continue
		}
		if ref.node.Validator != nil {
			ok := ref.node.Validator(current, l.values, ref.path)
			l.invalid[refPath] = !ok
			verdicts = append(verdicts, verdict{path: refPath, ok: ok})
		}
		if ref.node.AsyncValidator != nil {
			l.scheduleAsync(ref, refPath, current)
		}
	}
	onValidated := l.OnValidated
	l.mu.Unlock()

	if onValidated != nil {
		for _, v := range verdicts {
			onValidated(v.path, v.ok)
		}
	}
	return nil
}

// affected: a validator re-runs when its own node changed or when the
// changed option's name appears in its declared dependencies.
func (l *Live) affected(ref validatorRef, changed []string, changedName string) bool {
	if joinDotted(ref.path) == joinDotted(changed) {
		return true
	}
	for _, dep := range ref.node.ValidationDependencies {
		if dep == changedName {
			return true
		}
	}
	return false
}

func (l *Live) scheduleAsync(ref validatorRef, refPath string, value any) {
	debounce := ref.node.AsyncValidatorDebounce
	if debounce <= 0 {
		debounce = defaultAsyncDebounce
	}
	if prev, ok := l.pending[refPath]; ok {
		prev.timer.Stop()
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	run := &asyncRun{cancel: cancel}
	root := l.values
	run.timer = time.AfterFunc(debounce, func() {
		ok, err := ref.node.AsyncValidator(ctx, value, root, ref.path)
		l.mu.Lock()
		current, live := l.pending[refPath]
		if !live || current != run {
			// a newer edit superseded this run; discard its verdict
			l.mu.Unlock()
			return
		}
		delete(l.pending, refPath)
		if err == nil {
			l.invalid[refPath] = !ok
		}
		onValidated := l.OnValidated
		l.mu.Unlock()
		if err == nil && onValidated != nil {
			onValidated(refPath, ok)
		}
	})
	l.pending[refPath] = run
}

// Close cancels every scheduled or in-flight async validation.
func (l *Live) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for path, run := range l.pending {
		run.timer.Stop()
		run.cancel()
		delete(l.pending, path)
	}
}

func joinDotted(path []string) string {
	out := ""
	for i, segment := range path {
		if i > 0 {
			out += "."
		}
		out += segment
	}
	return out
}
