// Package stream implements the Stream Executor: it composes instantiated
// steps into a single lazy pull chain, one goroutine per stage connected
// by unbuffered channels, giving backpressure without a goroutine per item.
package stream

import (
	"fmt"

	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/item"
	"github.com/stacflow/stacflow/internal/registry"
	stacerrors "github.com/stacflow/stacflow/pkg/errors"
)

// Step is one instantiated, role-classified module in topological order.
type Step struct {
	ID     string
	Role   registry.Role
	Module any
}

// progressInterval is how often the Sink stage emits a debug progress line.
const progressInterval = 100

// Run composes steps into a pipeline and drains it to completion, returning
// the count of items the Sink successfully accepted. steps must already be
// in topological order; Run itself only checks the role sequence
// (Source first, Sink last, Transformers between).
func Run(ctx *execctx.Context, steps []Step) (int, error) {
	if len(steps) == 0 {
		return 0, stacerrors.NewFatalError("", "empty pipeline: no steps to run", nil)
	}

	first := steps[0]
	source, ok := first.Module.(registry.Source)
	if !ok || first.Role != registry.RoleSource {
		return 0, stacerrors.NewConfigurationError("steps[0]", "pipeline must begin with a Source", nil)
	}

	last := steps[len(steps)-1]
	sink, ok := last.Module.(registry.Sink)
	if !ok || last.Role != registry.RoleSink {
		return 0, stacerrors.NewConfigurationError(fmt.Sprintf("steps[%d]", len(steps)-1), "pipeline must terminate with a Sink", nil)
	}

	for _, mid := range steps[1 : len(steps)-1] {
		if _, ok := mid.Module.(registry.Transformer); !ok || mid.Role != registry.RoleTransformer {
			return 0, stacerrors.NewConfigurationError(fmt.Sprintf("steps[%s]", mid.ID), "only Transformers may sit between the Source and the Sink", nil)
		}
	}

	seq, err := source.Fetch(ctx)
	if err != nil {
		return 0, stacerrors.NewFatalError(first.ID, "source construction failed", err)
	}

	ch := sourceStage(ctx, first.ID, seq)
	for _, mid := range steps[1 : len(steps)-1] {
		ch = transformerStage(ctx, mid.ID, mid.Module.(registry.Transformer), ch)
	}

	return sinkDrain(ctx, last.ID, sink, ch)
}

// sourceStage runs the Source's sequence in its own goroutine, writing
// produced items to an unbuffered channel. Errors during item production
// are item-level: captured against the source step id with item.UnknownID
// since no item was produced, and Next is called again for the next item.
// Only ok == false (the sequence is exhausted) stops the stage.
func sourceStage(ctx *execctx.Context, stepID string, seq registry.Sequence) <-chan item.Item {
	out := make(chan item.Item)

	go func() {
		defer close(out)
		for {
			it, ok, err := seq.Next(ctx)
			if err != nil {
				ctx.Failures.Add(stepID, item.UnknownID, err, nil)
				continue
			}
			if !ok {
				return
			}
			select {
			case out <- it:
			case <-stdDone(ctx):
				return
			}
		}
	}()

	return out
}

// transformerStage wraps in with a lazy mapping stage: one goroutine pulls
// from in, calls Modify, and forwards the result (or nothing, on drop or
// error) to its own output channel.
func transformerStage(ctx *execctx.Context, stepID string, t registry.Transformer, in <-chan item.Item) <-chan item.Item {
	out := make(chan item.Item)

	go func() {
		defer close(out)
		for it := range in {
			result, err := t.Modify(it, ctx)
			if err != nil {
				ctx.Failures.Add(stepID, item.ID(it), err, nil)
				continue
			}
			if result == nil {
				continue
			}
			select {
			case out <- result:
			case <-stdDone(ctx):
				return
			}
		}
	}()

	return out
}

// sinkDrain drains in to completion, calling Accept per item and Finalize
// once the stream is exhausted. Most Accept errors are item-level, but a
// checkpoint-flush failure surfaced past the Sink is Fatal and aborts the
// pipeline immediately; the remaining upstream items are drained in the
// background so the producer goroutines never block on a full channel.
func sinkDrain(ctx *execctx.Context, stepID string, sink registry.Sink, in <-chan item.Item) (int, error) {
	accepted := 0

	for it := range in {
		if err := sink.Accept(it, ctx); err != nil {
			if stacerrors.IsFatal(err) {
				go func() {
					for range in {
					}
				}()
				return accepted, err
			}
			ctx.Failures.Add(stepID, item.ID(it), err, nil)
			continue
		}
		accepted++
		if accepted%progressInterval == 0 && ctx.Logger != nil {
			ctx.Logger.Debug(fmt.Sprintf("%d items accepted", accepted))
		}
	}

	if err := sink.Finalize(ctx); err != nil {
		return accepted, stacerrors.NewFatalError(stepID, "sink finalize failed", err)
	}

	return accepted, nil
}

func stdDone(ctx *execctx.Context) <-chan struct{} {
	if ctx == nil || ctx.Std == nil {
		return nil
	}
	return ctx.Std.Done()
}
