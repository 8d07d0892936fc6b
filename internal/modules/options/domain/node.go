package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrSchema        = errors.New("malformed options schema")
	ErrUnknownKind   = errors.New("unknown option kind")
	ErrUnknownOption = errors.New("unknown option")
)

type Kind string

const (
	KindBoolean    Kind = "boolean"
	KindNumber     Kind = "number"
	KindString     Kind = "string"
	KindColor      Kind = "color"
	KindPath       Kind = "path"
	KindSelect     Kind = "select"
	KindList       Kind = "list"
	KindNamespace  Kind = "namespace"
	KindCollection Kind = "collection"
	KindCategory   Kind = "category"
	KindDivider    Kind = "divider"
)

func (k Kind) Validate() error {
	switch k {
	case KindBoolean, KindNumber, KindString, KindColor, KindPath, KindSelect,
		KindList, KindNamespace, KindCollection, KindCategory, KindDivider:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
}

// Composite kinds nest a sub-schema or item node.
func (k Kind) Composite() bool {
	return k == KindList || k == KindNamespace || k == KindCollection
}

// Presentational kinds carry no value and never appear in resolved options.
func (k Kind) Presentational() bool {
	return k == KindCategory || k == KindDivider
}

// Resolved mirrors a schema's shape: one entry per serializable node,
// nested Resolved for namespaces, []Resolved for collections.
type Resolved map[string]any

// Switch is a conditional flag: either a static value or a predicate
// over the current value, the fully resolved options and the node path.
type Switch struct {
	Static bool
	Func   func(value any, options Resolved, path []string) bool
}

func (s Switch) Eval(value any, options Resolved, path []string) bool {
	if s.Func != nil {
		return s.Func(value, options, path)
	}
	return s.Static
}

// Text is a static string or a computed one, same call shape as Switch.
type Text struct {
	Static string
	Func   func(value any, options Resolved, path []string) string
}

func (t Text) Eval(value any, options Resolved, path []string) string {
	if t.Func != nil {
		return t.Func(value, options, path)
	}
	return t.Static
}

type ValidateFunc func(value any, options Resolved, path []string) bool

type AsyncValidateFunc func(ctx context.Context, value any, options Resolved, path []string) (bool, error)

type SelectOption struct {
	Value string
	Label string
}

type Node struct {
	Name         string
	Kind         Kind
	Title        string
	Hint         Text
	Description  Text
	Default      any
	IsDisabled   Switch
	IsHidden     Switch
	IsResettable Switch

	// number
	Nullable bool
	Min      *float64
	Max      *float64
	Step     float64

	// select
	Options []SelectOption

	// namespace, collection
	Schema Schema

	// list
	Item *Node

	Validator              ValidateFunc
	AsyncValidator         AsyncValidateFunc
	ValidationDependencies []string
	AsyncValidatorDebounce time.Duration
}

type Schema []Node

// Validate checks the schema for plugin-author mistakes. Any error here
// is a programmer error: callers should fail fast rather than coerce.
func (s Schema) Validate() error {
	return validateLevel(s, nil)
}

func validateLevel(nodes Schema, path []string) error {
	seen := map[string]struct{}{}
	for _, node := range nodes {
		if err := node.Kind.Validate(); err != nil {
			return fmt.Errorf("%w: %s at %s", ErrSchema, err, joinPath(path))
		}
		if node.Kind.Presentational() {
			continue
		}
		if node.Name == "" {
			return fmt.Errorf("%w: %s node without a name at %s", ErrSchema, node.Kind, joinPath(path))
		}
		if _, ok := seen[node.Name]; ok {
			return fmt.Errorf("%w: duplicate sibling name %q at %s", ErrSchema, node.Name, joinPath(path))
		}
		seen[node.Name] = struct{}{}

		nodePath := append(append([]string{}, path...), node.Name)
		switch node.Kind {
		case KindSelect:
			if !node.Nullable && len(node.Options) == 0 {
				return fmt.Errorf("%w: non-nullable select %q has no options", ErrSchema, joinPath(nodePath))
			}
		case KindList:
			if node.Item == nil {
				return fmt.Errorf("%w: list %q has no item node", ErrSchema, joinPath(nodePath))
			}
			if err := node.Item.Kind.Validate(); err != nil {
				return fmt.Errorf("%w: %s in list %q", ErrSchema, err, joinPath(nodePath))
			}
			if node.Item.Kind.Composite() || node.Item.Kind.Presentational() {
				return fmt.Errorf("%w: list %q item must be a simple kind, got %s", ErrSchema, joinPath(nodePath), node.Item.Kind)
			}
		case KindNamespace, KindCollection:
			if err := validateLevel(node.Schema, nodePath); err != nil {
				return err
			}
		case KindNumber:
			if node.Min != nil && node.Max != nil && *node.Min > *node.Max {
				return fmt.Errorf("%w: number %q min exceeds max", ErrSchema, joinPath(nodePath))
			}
		}
	}
	return nil
}

// NodeAt walks the schema along a resolved-value path. Collection and
// list segments are numeric indices and are skipped over during lookup.
func (s Schema) NodeAt(path []string) (Node, error) {
	nodes := s
	for i := 0; i < len(path); i++ {
		found := false
		for _, node := range nodes {
			if node.Name != path[i] {
				continue
			}
			found = true
			if i == len(path)-1 {
				return node, nil
			}
			switch node.Kind {
			case KindNamespace:
				nodes = node.Schema
			case KindCollection:
				// skip the index segment
				i++
				if i == len(path)-1 {
					return Node{}, fmt.Errorf("%w: %s", ErrUnknownOption, joinPath(path))
				}
				nodes = node.Schema
			case KindList:
				i++
				if i == len(path)-1 && node.Item != nil {
					return *node.Item, nil
				}
				return Node{}, fmt.Errorf("%w: %s", ErrUnknownOption, joinPath(path))
			default:
				return Node{}, fmt.Errorf("%w: %s is not a composite", ErrUnknownOption, joinPath(path[:i+1]))
			}
			break
		}
		if !found {
			return Node{}, fmt.Errorf("%w: %s", ErrUnknownOption, joinPath(path[:i+1]))
		}
	}
	return Node{}, fmt.Errorf("%w: empty path", ErrUnknownOption)
}

func joinPath(path []string) string {
	if len(path) == 0 {
		return "<root>"
	}
	return strings.Join(path, ".")
}
