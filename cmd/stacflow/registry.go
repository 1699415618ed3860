package main

import (
	"github.com/stacflow/stacflow/internal/modules/enrich"
	"github.com/stacflow/stacflow/internal/modules/ingest"
	"github.com/stacflow/stacflow/internal/modules/sink"
	"github.com/stacflow/stacflow/internal/modules/transform"
	"github.com/stacflow/stacflow/internal/modules/validate"
	"github.com/stacflow/stacflow/internal/registry"
)

// builtinModules names every reference module wired into the registry by
// the CLI, in the order `stacflow modules list` reports them.
var builtinModules = []string{"ingest", "enrich", "transform", "validate", "sink"}

// newBuiltinRegistry returns a Registry with every reference module from
// internal/modules registered under its workflow-document module name.
func newBuiltinRegistry() *registry.Registry {
	reg := registry.New()
	reg.Register("ingest", ingest.New)
	reg.Register("enrich", enrich.New)
	reg.Register("transform", transform.New)
	reg.Register("validate", validate.New)
	reg.Register("sink", sink.New)
	return reg
}
