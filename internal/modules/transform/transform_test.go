package transform

import (
	"testing"

	"github.com/stacflow/stacflow/internal/item"
	"github.com/stretchr/testify/require"
)

func newModule(t *testing.T, rules []any, strategy string) *Module {
	t.Helper()
	cfg := map[string]any{"rules": rules}
	if strategy != "" {
		cfg["strategy"] = strategy
	}
	raw, err := New(cfg)
	require.NoError(t, err)
	return raw.(*Module)
}

func TestModifyRemapsDottedFields(t *testing.T) {
	t.Parallel()

	mod := newModule(t, []any{
		map[string]any{"source_field": "props.datetime", "target_field": "properties.datetime"},
	}, "merge")

	it := item.Item{"id": "a", "props": map[string]any{"datetime": "2024-01-01"}}
	out, err := mod.Modify(it, nil)
	require.NoError(t, err)
	require.Equal(t, "2024-01-01", out["properties"].(map[string]any)["datetime"])
	require.Equal(t, "a", out["id"])
}

func TestModifyNewStrategyStartsEmpty(t *testing.T) {
	t.Parallel()

	mod := newModule(t, []any{
		map[string]any{"source_field": "id", "target_field": "item_id"},
	}, "new")

	it := item.Item{"id": "a", "extra": "dropped"}
	out, err := mod.Modify(it, nil)
	require.NoError(t, err)
	require.Equal(t, "a", out["item_id"])
	require.NotContains(t, out, "extra")
	require.NotContains(t, out, "id")
}

func TestModifyCoercesTypes(t *testing.T) {
	t.Parallel()

	mod := newModule(t, []any{
		map[string]any{"source_field": "cloud_cover", "target_field": "properties.eo:cloud_cover", "type": "int"},
	}, "merge")

	out, err := mod.Modify(item.Item{"cloud_cover": "42"}, nil)
	require.NoError(t, err)
	require.Equal(t, 42, out["properties"].(map[string]any)["eo:cloud_cover"])
}

func TestModifyFailsOnMissingRequiredField(t *testing.T) {
	t.Parallel()

	mod := newModule(t, []any{
		map[string]any{"source_field": "missing", "target_field": "x", "required": true},
	}, "merge")

	_, err := mod.Modify(item.Item{"id": "a"}, nil)
	require.Error(t, err)
}

func TestModifySkipsMissingOptionalField(t *testing.T) {
	t.Parallel()

	mod := newModule(t, []any{
		map[string]any{"source_field": "missing", "target_field": "x"},
	}, "merge")

	out, err := mod.Modify(item.Item{"id": "a"}, nil)
	require.NoError(t, err)
	require.NotContains(t, out, "x")
}

func TestNewRejectsEmptyRules(t *testing.T) {
	t.Parallel()

	_, err := New(map[string]any{})
	require.Error(t, err)
}
