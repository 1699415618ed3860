// Package sink implements the Sink reference module: it writes one JSON
// file per item under a configured directory, named "{id}.json", and a
// manifest.json summary (files written, total count) on finalize.
package sink

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
	stacerrors "github.com/stacflow/stacflow/pkg/errors"
)

// Config is the sink step's opaque config.
type Config struct {
	OutputPath string
}

// Module is the sink Sink. It owns the checkpoint interaction: on a
// successful write it calls ctx.Checkpoint.MarkCompleted(item_id, path),
// since the Sink is the only component that knows the final output path.
type Module struct {
	cfg Config

	mu    sync.Mutex
	files []string
}

// New constructs a sink Module from raw step config.
func New(raw map[string]any) (any, error) {
	outputPath, _ := raw["output_path"].(string)
	if outputPath == "" {
		return nil, fmt.Errorf("sink: config.output_path is required")
	}
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		return nil, fmt.Errorf("sink: create output directory: %w", err)
	}
	return &Module{cfg: Config{OutputPath: outputPath}}, nil
}

var _ registry.Sink = (*Module)(nil)

// Accept writes it as "<id>.json" under OutputPath and marks the item
// completed in the pipeline's Checkpoint Store.
func (m *Module) Accept(it item.Item, ctx *execctx.Context) error {
	id := item.ID(it)
	path := filepath.Join(m.cfg.OutputPath, id+".json")

	encoded, err := json.MarshalIndent(map[string]any(it), "", "  ")
	if err != nil {
		return fmt.Errorf("sink: marshal item %q: %w", id, err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("sink: write %s: %w", path, err)
	}

	if ctx != nil && ctx.Checkpoint != nil {
		if err := ctx.Checkpoint.MarkCompleted(id, path); err != nil {
			return stacerrors.NewFatalError(id, fmt.Sprintf("checkpoint flush failed for %q", id), err)
		}
	}

	m.mu.Lock()
	m.files = append(m.files, path)
	m.mu.Unlock()

	return nil
}

// Finalize writes manifest.json listing every accepted file and the total
// count.
func (m *Module) Finalize(ctx *execctx.Context) error {
	m.mu.Lock()
	files := append([]string(nil), m.files...)
	m.mu.Unlock()

	manifest := map[string]any{
		"files": files,
		"total": len(files),
	}

	encoded, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("sink: marshal manifest: %w", err)
	}

	manifestPath := filepath.Join(m.cfg.OutputPath, "manifest.json")
	if err := os.WriteFile(manifestPath, encoded, 0o644); err != nil {
		return fmt.Errorf("sink: write manifest: %w", err)
	}

	return nil
}
