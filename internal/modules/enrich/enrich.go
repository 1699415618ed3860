// Package enrich implements a Transformer reference module: it validates an
// item's properties against a JSON Schema and, on success, appends a STAC
// extension URL and merges in the default properties listed in its config
// (config.defaults); defaults declared inside the schema are not applied.
package enrich

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
)

// Config is the enrich step's opaque config.
type Config struct {
	ExtensionURL string
	Schema       *jsonschema.Schema
	Defaults     map[string]any
}

// Module is the enrich Transformer.
type Module struct {
	cfg Config
}

// New constructs an enrich Module. config.schema is an inline JSON Schema
// document (map[string]any); config.extension_url names the STAC extension
// being applied; config.defaults are properties merged in when absent.
func New(raw map[string]any) (any, error) {
	extensionURL, _ := raw["extension_url"].(string)
	if extensionURL == "" {
		return nil, fmt.Errorf("enrich: config.extension_url is required")
	}

	var compiled *jsonschema.Schema
	if rawSchema, ok := raw["schema"]; ok {
		schema, err := compileInlineSchema(rawSchema)
		if err != nil {
			return nil, fmt.Errorf("enrich: compile schema: %w", err)
		}
		compiled = schema
	}

	defaults, _ := raw["defaults"].(map[string]any)

	return &Module{cfg: Config{ExtensionURL: extensionURL, Schema: compiled, Defaults: defaults}}, nil
}

func compileInlineSchema(raw any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	const resourceURL = "mem://enrich-schema.json"
	if err := compiler.AddResource(resourceURL, doc); err != nil {
		return nil, err
	}
	return compiler.Compile(resourceURL)
}

var _ registry.Transformer = (*Module)(nil)

// Modify validates the item's "properties" field against the configured
// schema (if any), then appends ExtensionURL to "stac_extensions" and fills
// in any Defaults not already present in "properties". A schema validation
// failure is returned as an item-level error.
func (m *Module) Modify(it item.Item, ctx *execctx.Context) (item.Item, error) {
	if m.cfg.Schema != nil {
		properties, _ := it["properties"].(map[string]any)
		if err := m.cfg.Schema.Validate(toInterface(properties)); err != nil {
			return nil, fmt.Errorf("enrich: schema validation failed: %w", err)
		}
	}

	out := item.Clone(it)

	extensions, _ := out["stac_extensions"].([]any)
	out["stac_extensions"] = appendIfMissing(extensions, m.cfg.ExtensionURL)

	properties, _ := out["properties"].(map[string]any)
	merged := make(map[string]any, len(properties)+len(m.cfg.Defaults))
	for k, v := range properties {
		merged[k] = v
	}
	for k, v := range m.cfg.Defaults {
		if _, exists := merged[k]; !exists {
			merged[k] = v
		}
	}
	out["properties"] = merged

	return out, nil
}

func appendIfMissing(extensions []any, url string) []any {
	for _, e := range extensions {
		if s, ok := e.(string); ok && s == url {
			return extensions
		}
	}
	return append(extensions, url)
}

func toInterface(m map[string]any) any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
