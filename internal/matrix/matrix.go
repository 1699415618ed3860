// Package matrix implements the Matrix Runner: it expands a matrix of
// parameter maps into independent forked pipelines and runs them
// concurrently, aggregating results in input order. Built on an errgroup
// with SetLimit, but deliberately diverging from fail-fast semantics: every
// entry recovers its own error into a Result instead of returning it to the
// group, so one entry's fatal error never cancels siblings.
package matrix

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Entry is one matrix parameter map paired with its position in the matrix;
// CollectionID derives the pipeline-local id suffix from the two.
type Entry struct {
	Index int
	Data  map[string]any
}

// CollectionID returns the entry's collection_id field if present, or a
// positional fallback "entry-<index>".
func (e Entry) CollectionID() string {
	if v, ok := e.Data["collection_id"]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return fmt.Sprintf("entry-%d", e.Index)
}

// RunFunc executes one matrix entry's pipeline and returns its Result.
type RunFunc[R any] func(entry Entry) R

// DefaultConcurrency bounds how many entries run at once when the caller
// does not specify a limit.
const DefaultConcurrency = 8

// Run executes fn once per entry in entries, bounded to concurrency
// simultaneous goroutines, and returns results in the same order as
// entries. Unlike an errgroup used for fail-fast cancellation, fn itself is
// responsible for turning any internal error into part of R — Run never
// aborts sibling entries.
func Run[R any](entries []Entry, concurrency int, fn RunFunc[R]) []R {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]R, len(entries))

	var g errgroup.Group
	g.SetLimit(concurrency)

	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			results[entry.Index] = fn(entry)
			return nil
		})
	}

	// fn never returns an error into the group, so Wait cannot itself
	// fail; it only blocks until every entry has run.
	_ = g.Wait()

	return results
}
