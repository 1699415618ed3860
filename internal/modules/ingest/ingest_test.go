package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, seq interface {
	Next(ctx *execctx.Context) (item.Item, bool, error)
}) []item.Item {
	t.Helper()
	var out []item.Item
	for {
		it, ok, err := seq.Next(nil)
		require.NoError(t, err)
		if !ok {
			return out
		}
		out = append(out, it)
	}
}

func TestNewStaticItemsMode(t *testing.T) {
	t.Parallel()

	raw, err := New(map[string]any{
		"items": []any{
			map[string]any{"id": "a"},
			map[string]any{"id": "b"},
		},
	})
	require.NoError(t, err)

	mod := raw.(*Module)
	seq, err := mod.Fetch(nil)
	require.NoError(t, err)

	out := drain(t, seq)
	require.Len(t, out, 2)
	require.Equal(t, "a", item.ID(out[0]))
}

func TestNewFileArrayMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	payload, _ := json.Marshal([]map[string]any{{"id": "a"}, {"id": "b"}})
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	raw, err := New(map[string]any{"path": path})
	require.NoError(t, err)

	mod := raw.(*Module)
	seq, err := mod.Fetch(nil)
	require.NoError(t, err)

	out := drain(t, seq)
	require.Len(t, out, 2)
}

func TestNewFileFeatureCollectionMode(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "items.json")
	payload, _ := json.Marshal(map[string]any{
		"type":     "FeatureCollection",
		"features": []map[string]any{{"id": "a"}},
	})
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	raw, err := New(map[string]any{"path": path})
	require.NoError(t, err)

	mod := raw.(*Module)
	seq, err := mod.Fetch(nil)
	require.NoError(t, err)

	out := drain(t, seq)
	require.Len(t, out, 1)
	require.Equal(t, "a", item.ID(out[0]))
}

func TestNewRejectsMissingSource(t *testing.T) {
	t.Parallel()

	_, err := New(map[string]any{})
	require.Error(t, err)
}
