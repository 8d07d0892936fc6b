package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeState is the presentation state of one resolved node. Hidden and
// disabled never affect the stored value.
type NodeState struct {
	Hidden      bool
	Disabled    bool
	Resettable  bool
	Hint        string
	Description string
}

// States evaluates every conditional predicate against the fully
// resolved root object. Keys are dotted paths; collection instances get
// a numeric segment ("layers.0.opacity").
func (s Schema) States(root Resolved) map[string]NodeState {
	out := map[string]NodeState{}
	stateLevel(s, root, root, nil, out)
	return out
}

func stateLevel(nodes Schema, values Resolved, root Resolved, prefix []string, out map[string]NodeState) {
	for _, node := range nodes {
		if node.Kind.Presentational() {
			continue
		}
		value := values[node.Name]
		path := append(append([]string{}, prefix...), node.Name)
		out[joinPath(path)] = NodeState{
			Hidden:      node.IsHidden.Eval(value, root, path),
			Disabled:    node.IsDisabled.Eval(value, root, path),
			Resettable:  node.IsResettable.Eval(value, root, path),
			Hint:        node.Hint.Eval(value, root, path),
			Description: node.Description.Eval(value, root, path),
		}
		switch node.Kind {
		case KindNamespace:
			if sub, ok := value.(Resolved); ok {
				stateLevel(node.Schema, sub, root, path, out)
			}
		case KindCollection:
			if items, ok := value.([]Resolved); ok {
				for i, item := range items {
					stateLevel(node.Schema, item, root, append(path, strconv.Itoa(i)), out)
				}
			}
		}
	}
}

// ValueAt reads a nested value by path. Numeric segments index into
// collections and lists.
func (r Resolved) ValueAt(path []string) (any, error) {
	var current any = r
	for i, segment := range path {
		switch v := current.(type) {
		case Resolved:
			next, ok := v[segment]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownOption, joinPath(path[:i+1]))
			}
			current = next
		case map[string]any:
			next, ok := v[segment]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownOption, joinPath(path[:i+1]))
			}
			current = next
		case []Resolved:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("%w: bad index %q", ErrUnknownOption, segment)
			}
			current = v[idx]
		case []any:
			idx, err := strconv.Atoi(segment)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("%w: bad index %q", ErrUnknownOption, segment)
			}
			current = v[idx]
		default:
			return nil, fmt.Errorf("%w: %s is not a composite", ErrUnknownOption, joinPath(path[:i]))
		}
	}
	return current, nil
}

// SetAt writes a nested value in place.
func (r Resolved) SetAt(path []string, value any) error {
	if len(path) == 0 {
		return fmt.Errorf("%w: empty path", ErrUnknownOption)
	}
	parent, err := r.ValueAt(path[:len(path)-1])
	if err != nil {
		return err
	}
	last := path[len(path)-1]
	switch v := parent.(type) {
	case Resolved:
		v[last] = value
	case map[string]any:
		v[last] = value
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(v) {
			return fmt.Errorf("%w: bad index %q", ErrUnknownOption, last)
		}
		v[idx] = value
	default:
		return fmt.Errorf("%w: %s is not settable", ErrUnknownOption, joinPath(path))
	}
	return nil
}

// ParsePath splits a dotted path into segments.
func ParsePath(dotted string) []string {
	if dotted == "" {
		return nil
	}
	return strings.Split(dotted, ".")
}
