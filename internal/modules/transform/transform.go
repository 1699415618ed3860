// Package transform implements a Transformer reference module: it remaps
// fields between dotted paths according to a list of mapping rules. No
// JMESPath (or comparable path-query) library is available, so field
// addressing here is a narrower dotted-path getter/setter (see DESIGN.md).
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
)

// Rule describes one field remapping.
type Rule struct {
	SourceField string
	TargetField string
	Type        string // "string", "int", "float", "bool", "" (no coercion)
	Required    bool
}

// Strategy controls how the transformed result combines with the input
// item: "new" starts from an empty item, "merge" overlays onto a clone of
// the input.
type Strategy string

const (
	StrategyNew   Strategy = "new"
	StrategyMerge Strategy = "merge"
)

// Config is the transform step's opaque config.
type Config struct {
	Rules    []Rule
	Strategy Strategy
}

// Module is the transform Transformer.
type Module struct {
	cfg Config
}

// New constructs a transform Module from raw step config.
func New(raw map[string]any) (any, error) {
	rawRules, ok := raw["rules"].([]any)
	if !ok || len(rawRules) == 0 {
		return nil, fmt.Errorf("transform: config.rules must be a non-empty list")
	}

	rules := make([]Rule, 0, len(rawRules))
	for _, rr := range rawRules {
		ruleMap, ok := rr.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("transform: each rule must be a map")
		}

		source, _ := ruleMap["source_field"].(string)
		target, _ := ruleMap["target_field"].(string)
		if source == "" || target == "" {
			return nil, fmt.Errorf("transform: rule requires source_field and target_field")
		}

		typ, _ := ruleMap["type"].(string)
		required, _ := ruleMap["required"].(bool)

		rules = append(rules, Rule{SourceField: source, TargetField: target, Type: typ, Required: required})
	}

	strategy := StrategyMerge
	if s, ok := raw["strategy"].(string); ok && s != "" {
		strategy = Strategy(s)
	}

	return &Module{cfg: Config{Rules: rules, Strategy: strategy}}, nil
}

var _ registry.Transformer = (*Module)(nil)

// Modify applies every configured rule in order, reading SourceField from
// it via dotted-path lookup and writing TargetField into the result via
// dotted-path assignment.
func (m *Module) Modify(it item.Item, ctx *execctx.Context) (item.Item, error) {
	var out item.Item
	if m.cfg.Strategy == StrategyMerge {
		out = item.Clone(it)
	} else {
		out = item.Item{}
	}

	for _, rule := range m.cfg.Rules {
		value, ok := getNested(it, rule.SourceField)
		if !ok {
			if rule.Required {
				return nil, fmt.Errorf("transform: required field %q missing", rule.SourceField)
			}
			continue
		}

		coerced, err := coerce(value, rule.Type)
		if err != nil {
			return nil, fmt.Errorf("transform: field %q: %w", rule.SourceField, err)
		}

		setNested(out, rule.TargetField, coerced)
	}

	return out, nil
}

// getNested reads a dotted path ("properties.datetime") out of a nested
// map[string]any tree.
func getNested(it item.Item, path string) (any, bool) {
	parts := strings.Split(path, ".")
	var current any = map[string]any(it)
	for _, part := range parts {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		value, ok := asMap[part]
		if !ok {
			return nil, false
		}
		current = value
	}
	return current, true
}

// setNested writes value at a dotted path. Each intermediate map it
// descends into is copied (or created when absent) before being written, so
// nested maps shared with a shallow-cloned input item are never mutated.
func setNested(it item.Item, path string, value any) {
	parts := strings.Split(path, ".")
	current := map[string]any(it)
	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}
		next := map[string]any{}
		if existing, ok := current[part].(map[string]any); ok {
			for k, v := range existing {
				next[k] = v
			}
		}
		current[part] = next
		current = next
	}
}

func coerce(value any, typ string) (any, error) {
	switch typ {
	case "", "any":
		return value, nil
	case "string":
		return fmt.Sprintf("%v", value), nil
	case "int":
		switch v := value.(type) {
		case int:
			return v, nil
		case float64:
			return int(v), nil
		case string:
			return strconv.Atoi(v)
		default:
			return nil, fmt.Errorf("cannot coerce %T to int", value)
		}
	case "float":
		switch v := value.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			return strconv.ParseFloat(v, 64)
		default:
			return nil, fmt.Errorf("cannot coerce %T to float", value)
		}
	case "bool":
		switch v := value.(type) {
		case bool:
			return v, nil
		case string:
			return strconv.ParseBool(v)
		default:
			return nil, fmt.Errorf("cannot coerce %T to bool", value)
		}
	default:
		return nil, fmt.Errorf("unknown coercion type %q", typ)
	}
}
