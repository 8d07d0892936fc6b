package domain

import (
	"context"
	"errors"
	"fmt"

	optionsdomain "dropkit/internal/modules/options/domain"
)

var (
	ErrMainMissing        = errors.New("processor main is not set")
	ErrDuplicateProcessor = errors.New("duplicate processor name")
)

// BulkPolicy decides whether a match cycle emits one operation holding
// every accepted item or one operation per item. A predicate runs once
// per cycle against the whole accepted set, never per item.
type BulkPolicy struct {
	Static bool
	Func   func(items []Item, options optionsdomain.Resolved) bool
}

func (p BulkPolicy) Eval(items []Item, options optionsdomain.Resolved) bool {
	if p.Func != nil {
		return p.Func(items, options)
	}
	return p.Static
}

// ThreadType classifies an operation for concurrency grouping by the
// host scheduler.
type ThreadType struct {
	Kinds []string
	Func  func(op Operation) []string
}

func (t ThreadType) For(op Operation) []string {
	if t.Func != nil {
		return t.Func(op)
	}
	if len(t.Kinds) > 0 {
		return t.Kinds
	}
	return []string{"uncategorized"}
}

type ParallelPolicy struct {
	Static bool
	Func   func(op Operation) bool
}

func (p ParallelPolicy) Eval(op Operation) bool {
	if p.Func != nil {
		return p.Func(op)
	}
	return p.Static
}

// Preparator may veto an operation (nil, nil), contribute extra payload
// fields, or pass the draft through unchanged. It may suspend on modal
// interaction, so it takes a context.
type Preparator func(ctx context.Context, draft Operation, modals Modals) (*Operation, error)

// DropFilter runs last over the accepted set and may veto or reduce it.
type DropFilter func(ctx context.Context, items []Item, options optionsdomain.Resolved) ([]Item, error)

type ProcessorConfig struct {
	Main                 string
	Accepts              Accepts
	Bulk                 BulkPolicy
	ExpandDirectory      func(item Item, options optionsdomain.Resolved) bool
	DropFilter           DropFilter
	ThreadType           ThreadType
	Parallelize          ParallelPolicy
	Dependencies         []string
	OptionalDependencies []string
	OperationPreparator  Preparator
	Options              optionsdomain.Schema
}

func (c ProcessorConfig) Validate() error {
	if c.Main == "" {
		return ErrMainMissing
	}
	if c.Options != nil {
		if err := c.Options.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RunFunc executes one operation. Execution scheduling is a host
// concern; the core only carries the entry point.
type RunFunc func(ctx context.Context, op Operation, deps map[string]any, emit OutputEmitter) error

type Processor struct {
	Name   string
	Config ProcessorConfig
	Run    RunFunc
}

func (p Processor) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("processor name is required")
	}
	return p.Config.Validate()
}

// Operation is one dispatched unit of work. Exactly one of Item and
// Items is set: Item for per-item operations, Items for bulk ones.
type Operation struct {
	ID          string
	Processor   string
	Options     optionsdomain.Resolved
	Item        *Item
	Items       []Item
	Extra       map[string]any
	ThreadTypes []string
	Parallelize bool

	RequiredDeps []string
	OptionalDeps []string
}

// Match is the outcome of one match cycle for one processor. Candidate
// order across a cycle is processor declaration order; the dispatcher
// never arbitrates preference beyond that ordering.
type Match struct {
	Processor  string
	Operations []Operation
	Err        error
}
