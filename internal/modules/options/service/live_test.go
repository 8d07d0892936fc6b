package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"dropkit/internal/modules/options/domain"
	"dropkit/internal/modules/options/service"
)

func floatPtr(v float64) *float64 { return &v }

func TestLiveSetReEvaluatesStates(t *testing.T) {
	t.Parallel()
	schema := domain.Schema{
		{Name: "custom", Kind: domain.KindBoolean},
		{
			Name: "preset", Kind: domain.KindString, Default: "web",
			IsDisabled: domain.Switch{Func: func(_ any, options domain.Resolved, _ []string) bool {
				custom, _ := options["custom"].(bool)
				return custom
			}},
		},
	}
	live, err := service.NewLive(schema, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	if live.States()["preset"].Disabled {
		t.Fatalf("preset should start enabled")
	}
	if err := live.Set("custom", true); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !live.States()["preset"].Disabled {
		t.Fatalf("preset should be disabled after sibling change")
	}
}

func TestLiveValidatorRunsOnDeclaredDependencies(t *testing.T) {
	t.Parallel()
	var runs atomic.Int32
	schema := domain.Schema{
		{Name: "min", Kind: domain.KindNumber, Default: 0},
		{
			Name: "max", Kind: domain.KindNumber, Default: 10,
			ValidationDependencies: []string{"min"},
			Validator: func(value any, options domain.Resolved, _ []string) bool {
				runs.Add(1)
				max, _ := value.(float64)
				min, _ := options["min"].(float64)
				return max >= min
			},
		},
		{Name: "unrelated", Kind: domain.KindString},
	}
	live, err := service.NewLive(schema, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	if err := live.Set("unrelated", "x"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if runs.Load() != 0 {
		t.Fatalf("validator ran for an undeclared dependency")
	}

	if err := live.Set("min", float64(20)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("validator should run when a declared dependency changes, runs=%d", runs.Load())
	}
	if !live.Invalid("max") {
		t.Fatalf("max should be invalid when min exceeds it")
	}

	if err := live.Set("max", float64(30)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if live.Invalid("max") {
		t.Fatalf("max should be valid again")
	}
}

func TestLiveValidatorRunsInsideCollectionInstances(t *testing.T) {
	t.Parallel()
	var runs atomic.Int32
	schema := domain.Schema{
		{
			Name: "layers", Kind: domain.KindCollection,
			Schema: domain.Schema{
				{
					Name: "opacity", Kind: domain.KindNumber, Default: 1,
					Validator: func(value any, _ domain.Resolved, _ []string) bool {
						runs.Add(1)
						v, ok := value.(float64)
						return ok && v >= 0 && v <= 1
					},
				},
			},
		},
	}
	partial := map[string]any{
		"layers": []any{
			map[string]any{"opacity": 0.5},
			map[string]any{"opacity": 0.8},
		},
	}
	live, err := service.NewLive(schema, partial)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	if err := live.Set("layers.0.opacity", float64(2)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if runs.Load() != 1 {
		t.Fatalf("instance validator should run once, runs=%d", runs.Load())
	}
	if !live.Invalid("layers.0.opacity") {
		t.Fatalf("layers.0.opacity should be invalid")
	}
	if live.Invalid("layers.1.opacity") {
		t.Fatalf("the sibling instance must be untouched")
	}

	if err := live.Set("layers.1.opacity", float64(0.2)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if live.Invalid("layers.1.opacity") {
		t.Fatalf("layers.1.opacity should be valid")
	}
}

func TestLiveValidatorRunsOnListElements(t *testing.T) {
	t.Parallel()
	schema := domain.Schema{
		{
			Name: "tags", Kind: domain.KindList,
			Item: &domain.Node{
				Name: "tag", Kind: domain.KindString,
				Validator: func(value any, _ domain.Resolved, _ []string) bool {
					s, ok := value.(string)
					return ok && s != ""
				},
			},
		},
	}
	partial := map[string]any{"tags": []any{"draft", "final"}}
	live, err := service.NewLive(schema, partial)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	if err := live.Set("tags.1", ""); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !live.Invalid("tags.1") {
		t.Fatalf("empty list element should be invalid")
	}
	if live.Invalid("tags.0") {
		t.Fatalf("tags.0 was not edited")
	}
}

func TestLiveRangeValidatorReportsWithoutClamping(t *testing.T) {
	t.Parallel()
	schema := domain.Schema{
		{
			Name: "n", Kind: domain.KindNumber, Default: 5,
			Min: floatPtr(0), Max: floatPtr(10),
			Validator: func(value any, _ domain.Resolved, _ []string) bool {
				n, ok := value.(float64)
				return ok && n >= 0 && n <= 10
			},
		},
	}
	live, err := service.NewLive(schema, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	if err := live.Set("n", float64(20)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _ := live.Values().ValueAt([]string{"n"})
	if got != float64(20) {
		t.Fatalf("value must be retained unclamped, got %#v", got)
	}
	if !live.Invalid("n") {
		t.Fatalf("range validator should report invalid")
	}
}

func TestLiveAsyncValidatorDebounces(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	schema := domain.Schema{
		{
			Name: "host", Kind: domain.KindString,
			AsyncValidatorDebounce: 20 * time.Millisecond,
			AsyncValidator: func(_ context.Context, value any, _ domain.Resolved, _ []string) (bool, error) {
				calls.Add(1)
				s, _ := value.(string)
				return s != "", nil
			},
		},
	}
	live, err := service.NewLive(schema, nil)
	if err != nil {
		t.Fatalf("new live: %v", err)
	}
	defer live.Close()

	// rapid edits within the debounce window collapse to one run
	for _, v := range []string{"a", "ab", ""} {
		if err := live.Set("host", v); err != nil {
			t.Fatalf("set: %v", err)
		}
	}
	if !live.Pending("host") {
		t.Fatalf("expected a pending async validation")
	}

	deadline := time.Now().Add(2 * time.Second)
	for live.Pending("host") {
		if time.Now().After(deadline) {
			t.Fatalf("async validation never settled")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one async run after debounce, got %d", got)
	}
	if !live.Invalid("host") {
		t.Fatalf("trailing value was empty, field should be invalid")
	}
}
