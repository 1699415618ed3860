// Package validate implements a Transformer reference module: it checks
// required top-level fields and, when require_bbox is set, that the item's
// bbox is well-formed. No geometry library is available, so the check is a
// minimal standalone one: the geometry itself (its coordinates and rings)
// is not inspected (see DESIGN.md).
package validate

import (
	"fmt"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
)

// Config is the validate step's opaque config.
type Config struct {
	RequiredFields []string
	RequireBBox    bool
}

// Module is the validate Transformer.
type Module struct {
	cfg Config
}

// New constructs a validate Module from raw step config.
func New(raw map[string]any) (any, error) {
	cfg := Config{}

	if rawFields, ok := raw["required_fields"].([]any); ok {
		for _, f := range rawFields {
			if s, ok := f.(string); ok {
				cfg.RequiredFields = append(cfg.RequiredFields, s)
			}
		}
	}

	if requireBBox, ok := raw["require_bbox"].(bool); ok {
		cfg.RequireBBox = requireBBox
	}

	return &Module{cfg: cfg}, nil
}

var _ registry.Transformer = (*Module)(nil)

// Modify checks RequiredFields are present and, if RequireBBox, that the
// item's bbox is a well-formed [minX, minY, maxX, maxY] quadruple of
// numbers with min not greater than max. The bbox is not compared against
// the item's geometry. Any violation is an item-level error: the item is
// dropped, the pipeline continues.
func (m *Module) Modify(it item.Item, ctx *execctx.Context) (item.Item, error) {
	for _, field := range m.cfg.RequiredFields {
		if _, ok := it[field]; !ok {
			return nil, fmt.Errorf("validate: missing required field %q", field)
		}
	}

	if m.cfg.RequireBBox {
		if err := checkBBox(it); err != nil {
			return nil, err
		}
	}

	return it, nil
}

func checkBBox(it item.Item) error {
	bboxRaw, ok := it["bbox"]
	if !ok {
		return fmt.Errorf("validate: missing bbox")
	}

	bbox, ok := bboxRaw.([]any)
	if !ok || len(bbox) != 4 {
		return fmt.Errorf("validate: bbox must be a 4-element array")
	}

	coords := make([]float64, 4)
	for i, v := range bbox {
		f, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("validate: bbox element %d is not numeric", i)
		}
		coords[i] = f
	}

	minX, minY, maxX, maxY := coords[0], coords[1], coords[2], coords[3]
	if minX > maxX || minY > maxY {
		return fmt.Errorf("validate: bbox [%v,%v,%v,%v] has min greater than max", minX, minY, maxX, maxY)
	}

	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}
