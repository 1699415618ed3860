// Package execctx implements the per-pipeline Execution Context: the bundle
// of logger, failure collector, checkpoint store, and advisory data bag
// threaded through every step of a single pipeline run.
package execctx

import (
	"context"

	"github.com/stacflow/stacflow/internal/checkpoint"
	"github.com/stacflow/stacflow/internal/failure"
	"github.com/stacflow/stacflow/internal/logger"
)

// Context bundles everything a pipeline needs besides the item stream
// itself: the workflow id, a logger, the shared Failure Collector, the
// pipeline's own Checkpoint Store, a mutable data bag, and the standard
// library context used for cancellation.
type Context struct {
	WorkflowID string
	Logger     *logger.Logger
	Failures   *failure.Collector
	Checkpoint *checkpoint.Store
	Data       map[string]any

	Std context.Context
}

// Fork returns a new Context sharing Logger, Failures, and Checkpoint by
// reference, with Data replaced by a shallow overlay merge: {...parent.Data,
// ...overlay}, overlay wins on collisions. Used both for matrix entries and
// any other pre-step config merge point.
func (c *Context) Fork(overlay map[string]any) *Context {
	merged := make(map[string]any, len(c.Data)+len(overlay))
	for k, v := range c.Data {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}

	return &Context{
		WorkflowID: c.WorkflowID,
		Logger:     c.Logger,
		Failures:   c.Failures,
		Checkpoint: c.Checkpoint,
		Data:       merged,
		Std:        c.Std,
	}
}

// WithStd returns a shallow copy of c carrying a different standard-library
// context (e.g. one derived with cancellation for a single pipeline run).
func (c *Context) WithStd(std context.Context) *Context {
	next := *c
	next.Std = std
	return &next
}
