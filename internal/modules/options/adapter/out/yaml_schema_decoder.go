package out

import (
	"fmt"
	"os"
	"time"

	"dropkit/internal/modules/options/domain"
	optionsout "dropkit/internal/modules/options/port/out"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

type YAMLSchemaDecoder struct{}

func NewYAMLSchemaDecoder() optionsout.SchemaDecoder {
	return YAMLSchemaDecoder{}
}

// rawNode is the manifest-facing shape of one option node.
type rawNode struct {
	Name        string           `mapstructure:"name"`
	Type        string           `mapstructure:"type"`
	Title       string           `mapstructure:"title"`
	Hint        string           `mapstructure:"hint"`
	Description string           `mapstructure:"description"`
	Default     any              `mapstructure:"default"`
	Hidden      bool             `mapstructure:"hidden"`
	Disabled    bool             `mapstructure:"disabled"`
	Nullable    *bool            `mapstructure:"nullable"`
	Min         *float64         `mapstructure:"min"`
	Max         *float64         `mapstructure:"max"`
	Step        float64          `mapstructure:"step"`
	Options     any              `mapstructure:"options"`
	Schema      []map[string]any `mapstructure:"schema"`
	Item        map[string]any   `mapstructure:"item"`
	Debounce    int              `mapstructure:"asyncValidatorDebounceMs"`
}

func (d YAMLSchemaDecoder) DecodeFile(path string) (domain.Schema, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	var raw []map[string]any
	if err := yaml.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("parse schema yaml: %w", err)
	}
	return d.Decode(raw)
}

func (d YAMLSchemaDecoder) Decode(raw []map[string]any) (domain.Schema, error) {
	schema := make(domain.Schema, 0, len(raw))
	for i, entry := range raw {
		node, err := decodeNode(entry)
		if err != nil {
			return nil, fmt.Errorf("%w: node %d: %v", domain.ErrSchema, i, err)
		}
		schema = append(schema, node)
	}
	return schema, nil
}

func decodeNode(entry map[string]any) (domain.Node, error) {
	var raw rawNode
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &raw,
		ErrorUnused: true,
	})
	if err != nil {
		return domain.Node{}, err
	}
	if err := decoder.Decode(entry); err != nil {
		return domain.Node{}, err
	}

	node := domain.Node{
		Name:        raw.Name,
		Kind:        domain.Kind(raw.Type),
		Title:       raw.Title,
		Hint:        domain.Text{Static: raw.Hint},
		Description: domain.Text{Static: raw.Description},
		Default:     raw.Default,
		IsHidden:    domain.Switch{Static: raw.Hidden},
		IsDisabled:  domain.Switch{Static: raw.Disabled},
		Min:         raw.Min,
		Max:         raw.Max,
		Step:        raw.Step,
	}
	if raw.Nullable != nil {
		node.Nullable = *raw.Nullable
	}
	if raw.Debounce > 0 {
		node.AsyncValidatorDebounce = time.Duration(raw.Debounce) * time.Millisecond
	}
	if err := node.Kind.Validate(); err != nil {
		return domain.Node{}, err
	}

	switch node.Kind {
	case domain.KindSelect:
		options, err := decodeSelectOptions(raw.Options)
		if err != nil {
			return domain.Node{}, err
		}
		node.Options = options
	case domain.KindNamespace, domain.KindCollection:
		sub := make(domain.Schema, 0, len(raw.Schema))
		for _, child := range raw.Schema {
			childNode, err := decodeNode(child)
			if err != nil {
				return domain.Node{}, err
			}
			sub = append(sub, childNode)
		}
		node.Schema = sub
	case domain.KindList:
		if raw.Item != nil {
			item, err := decodeNode(raw.Item)
			if err != nil {
				return domain.Node{}, err
			}
			node.Item = &item
		}
	}
	if node.Kind == domain.KindNumber && (node.Min != nil || node.Max != nil) {
		node.Validator = rangeValidator(node.Min, node.Max)
	}
	return node, nil
}

// Select options come as an ordered entry list: either ["a", "b"] or
// [{value: a, label: A}]. Plain YAML maps lose document order once
// decoded, so the object form is rejected here; manifests use lists.
func decodeSelectOptions(raw any) ([]domain.SelectOption, error) {
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make([]domain.SelectOption, 0, len(v))
		for _, entry := range v {
			switch item := entry.(type) {
			case string:
				out = append(out, domain.SelectOption{Value: item, Label: item})
			case map[string]any:
				value, _ := item["value"].(string)
				label, _ := item["label"].(string)
				if value == "" {
					return nil, fmt.Errorf("select option entry without value")
				}
				if label == "" {
					label = value
				}
				out = append(out, domain.SelectOption{Value: value, Label: label})
			default:
				return nil, fmt.Errorf("unsupported select option entry %T", entry)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported select options form %T", raw)
	}
}

func rangeValidator(min, max *float64) domain.ValidateFunc {
	return func(value any, _ domain.Resolved, _ []string) bool {
		n, ok := value.(float64)
		if !ok {
			return value == nil
		}
		if min != nil && n < *min {
			return false
		}
		if max != nil && n > *max {
			return false
		}
		return true
	}
}
