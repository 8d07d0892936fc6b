package domain

// Resolve produces a fully-defaulted options object for the schema.
// Per node the value is taken from partial when it conforms to the
// node's shape, else from Default, else from the kind's zero value.
// Hidden nodes resolve like any other: hidden affects presentation
// only. Resolving is idempotent over its own output.
func (s Schema) Resolve(partial map[string]any) (Resolved, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return resolveLevel(s, partial), nil
}

func resolveLevel(nodes Schema, partial map[string]any) Resolved {
	out := Resolved{}
	for _, node := range nodes {
		if node.Kind.Presentational() {
			continue
		}
		raw, ok := any(nil), false
		if partial != nil {
			raw, ok = partial[node.Name]
		}
		out[node.Name] = resolveNode(node, raw, ok)
	}
	return out
}

func resolveNode(node Node, raw any, present bool) any {
	switch node.Kind {
	case KindBoolean:
		if present {
			if v, ok := raw.(bool); ok {
				return v
			}
		}
		if v, ok := node.Default.(bool); ok {
			return v
		}
		return false

	case KindNumber:
		if present {
			if raw == nil && node.Nullable {
				return nil
			}
			if v, ok := asNumber(raw); ok {
				return v
			}
		}
		if v, ok := asNumber(node.Default); ok {
			return v
		}
		if node.Nullable {
			return nil
		}
		return float64(0)

	case KindString, KindColor, KindPath:
		if present {
			if v, ok := raw.(string); ok {
				return v
			}
		}
		if v, ok := node.Default.(string); ok {
			return v
		}
		return ""

	case KindSelect:
		if present && selectConforms(node, raw) {
			return raw
		}
		if node.Default != nil && selectConforms(node, node.Default) {
			return node.Default
		}
		if node.Nullable {
			return nil
		}
		// validated: a non-nullable select always has options
		return node.Options[0].Value

	case KindList:
		values, ok := asSlice(raw)
		if !present || !ok {
			values, ok = asSlice(node.Default)
			if !ok {
				return []any{}
			}
		}
		out := make([]any, 0, len(values))
		for _, item := range values {
			out = append(out, resolveNode(*node.Item, item, true))
		}
		return out

	case KindCollection:
		values, ok := asSlice(raw)
		if !present || !ok {
			values, ok = asSlice(node.Default)
			if !ok {
				return []Resolved{}
			}
		}
		out := make([]Resolved, 0, len(values))
		for _, item := range values {
			sub, _ := asValueMap(item)
			out = append(out, resolveLevel(node.Schema, sub))
		}
		return out

	case KindNamespace:
		var sub map[string]any
		if present {
			sub, _ = asValueMap(raw)
		}
		if sub == nil {
			sub, _ = asValueMap(node.Default)
		}
		return resolveLevel(node.Schema, sub)
	}
	return nil
}

func selectConforms(node Node, value any) bool {
	if value == nil {
		return node.Nullable
	}
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, option := range node.Options {
		if option.Value == s {
			return true
		}
	}
	return false
}

func asNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []Resolved:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []string:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	case []float64:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, true
	}
	return nil, false
}

func asValueMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case Resolved:
		return map[string]any(v), true
	}
	return nil, false
}
