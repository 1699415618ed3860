// Package registry maps step-role names to concrete module constructors and
// classifies each constructed instance by role via Go interface
// satisfaction: a module is a Source, Transformer, or Sink according to
// which single interface its constructed value implements.
package registry

import (
	"fmt"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/logger"
	stacerrors "github.com/stacflow/stacflow/pkg/errors"
)

// Dropped is the sentinel a Transformer returns instead of an item to remove
// it from the stream without that being a failure.
var Dropped item.Item = nil

// Source exposes a lazy, finite sequence of items.
type Source interface {
	Fetch(ctx *execctx.Context) (Sequence, error)
}

// Sequence is a pull-driven iterator of items. Next returns ok=false once
// the sequence is exhausted; io-bound sources may suspend inside Next.
type Sequence interface {
	Next(ctx *execctx.Context) (it item.Item, ok bool, err error)
}

// Transformer synchronously maps one item to zero or one items. Returning
// (Dropped, nil), i.e. (nil, nil), means "drop" — not a failure.
type Transformer interface {
	Modify(it item.Item, ctx *execctx.Context) (item.Item, error)
}

// Sink consumes the stream and flushes durable state on Finalize.
type Sink interface {
	Accept(it item.Item, ctx *execctx.Context) error
	Finalize(ctx *execctx.Context) error
}

// LoggerAware is optionally implemented by any module; when present, the
// executor injects a step-scoped logger before first use.
type LoggerAware interface {
	SetLogger(l *logger.Logger)
}

// Constructor builds one module instance from its (possibly matrix-merged)
// config.
type Constructor func(config map[string]any) (any, error)

// Registry is a compile-/startup-time name→constructor map.
type Registry struct {
	constructors map[string]Constructor
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{constructors: make(map[string]Constructor)}
}

// Register binds a module name to its constructor. Re-registering a name
// overwrites the previous binding.
func (r *Registry) Register(name string, ctor Constructor) {
	r.constructors[name] = ctor
}

// Role classifies a constructed module instance.
type Role int

const (
	RoleSource Role = iota
	RoleTransformer
	RoleSink
)

func (role Role) String() string {
	switch role {
	case RoleSource:
		return "source"
	case RoleTransformer:
		return "transformer"
	case RoleSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Build instantiates the named module with cfg and classifies it by role. A
// request for an unknown name, a failed constructor, or a module satisfying
// zero or more than one role returns a ModuleError (configuration category)
// naming stepID.
func (r *Registry) Build(stepID, name string, cfg map[string]any) (any, Role, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, 0, stacerrors.NewModuleError(name, stepID, fmt.Errorf("unknown module %q", name))
	}

	instance, err := ctor(cfg)
	if err != nil {
		return nil, 0, stacerrors.NewModuleError(name, stepID, err)
	}

	role, err := classify(instance)
	if err != nil {
		return nil, 0, stacerrors.NewModuleError(name, stepID, err)
	}

	return instance, role, nil
}

// classify determines which single role instance satisfies. Exactly one of
// Source/Transformer/Sink must match.
func classify(instance any) (Role, error) {
	_, isSource := instance.(Source)
	_, isTransformer := instance.(Transformer)
	_, isSink := instance.(Sink)

	matches := 0
	var role Role
	if isSource {
		matches++
		role = RoleSource
	}
	if isTransformer {
		matches++
		role = RoleTransformer
	}
	if isSink {
		matches++
		role = RoleSink
	}

	switch matches {
	case 1:
		return role, nil
	case 0:
		return 0, fmt.Errorf("module implements none of Source/Transformer/Sink")
	default:
		return 0, fmt.Errorf("module implements more than one of Source/Transformer/Sink")
	}
}
