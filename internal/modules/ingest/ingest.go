// Package ingest implements the Source reference module: it emits items
// from a static in-config list or from a JSON file (a bare array or a
// FeatureCollection).
package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
)

// Config is the ingest step's opaque config, decoded from its
// map[string]any at construction.
type Config struct {
	// Items, when non-empty, is used verbatim (static source mode,
	// modules/static_source.py).
	Items []item.Item
	// Path, when Items is empty, names a JSON file holding either a bare
	// array of items or a GeoJSON FeatureCollection-shaped
	// {"features": [...]}  document (modules/ingest.py's fetch_from_file).
	Path string
}

// Module is the ingest Source.
type Module struct {
	cfg Config
}

// New constructs an ingest Module from raw step config.
func New(raw map[string]any) (any, error) {
	cfg := Config{}

	if rawItems, ok := raw["items"]; ok {
		list, ok := rawItems.([]any)
		if !ok {
			return nil, fmt.Errorf("ingest: config.items must be a list")
		}
		for _, entry := range list {
			asMap, ok := entry.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("ingest: each item must be a map")
			}
			cfg.Items = append(cfg.Items, item.Item(asMap))
		}
	}

	if path, ok := raw["path"].(string); ok {
		cfg.Path = path
	}

	if len(cfg.Items) == 0 && cfg.Path == "" {
		return nil, fmt.Errorf("ingest: config must set either items or path")
	}

	return &Module{cfg: cfg}, nil
}

var _ registry.Source = (*Module)(nil)

// Fetch returns the configured static list, or reads and decodes cfg.Path.
func (m *Module) Fetch(ctx *execctx.Context) (registry.Sequence, error) {
	if len(m.cfg.Items) > 0 {
		return &sliceSequence{items: m.cfg.Items}, nil
	}

	items, err := loadFromFile(m.cfg.Path)
	if err != nil {
		return nil, err
	}
	return &sliceSequence{items: items}, nil
}

func loadFromFile(path string) ([]item.Item, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: read %s: %w", path, err)
	}

	var asArray []item.Item
	if err := json.Unmarshal(raw, &asArray); err == nil {
		return asArray, nil
	}

	var featureCollection struct {
		Features []item.Item `json:"features"`
	}
	if err := json.Unmarshal(raw, &featureCollection); err != nil {
		return nil, fmt.Errorf("ingest: decode %s: %w", path, err)
	}
	return featureCollection.Features, nil
}

// sliceSequence is a registry.Sequence over an in-memory slice. Errors
// during production are not possible for this Source, matching a list
// already fully materialized in memory.
type sliceSequence struct {
	items []item.Item
	pos   int
}

func (s *sliceSequence) Next(ctx *execctx.Context) (item.Item, bool, error) {
	if s.pos >= len(s.items) {
		return nil, false, nil
	}
	it := s.items[s.pos]
	s.pos++
	return it, true, nil
}
