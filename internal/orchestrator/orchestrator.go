// Package orchestrator implements the Orchestration Facade: the top-level
// entry point binding configuration, the module registry, and the stream
// executor together behind a single Execute operation. DAG compilation
// happens eagerly at construction; execution then splits into a
// single-pipeline path and a matrix path, both funneling into the same
// per-run status derivation.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/stacflow/stacflow/internal/checkpoint"
	"github.com/stacflow/stacflow/internal/dag"
	"github.com/stacflow/stacflow/internal/execctx"
	"github.com/stacflow/stacflow/internal/failure"
	"github.com/stacflow/stacflow/internal/logger"
	"github.com/stacflow/stacflow/internal/matrix"
	"github.com/stacflow/stacflow/internal/registry"
	"github.com/stacflow/stacflow/internal/stream"
	"github.com/stacflow/stacflow/internal/workflowconfig"
)

// Status is the coarse pipeline outcome.
type Status string

const (
	StatusCompleted             Status = "completed"
	StatusCompletedWithFailures Status = "completed_with_failures"
	StatusFailed                Status = "failed"
)

// Result is returned per pipeline run: one per matrix entry, or a single
// one-element slice when the workflow has no matrix.
type Result struct {
	Success             bool
	Status              Status
	Summary             string
	FailureCount        int
	TotalItemsProcessed int
	MatrixEntry         map[string]any
	Failures            *failure.Collector
}

// Options configures a Manager.
type Options struct {
	CheckpointRoot     string
	ResumeFromExisting bool
	Concurrency        int
}

// Manager compiles a workflow's step graph at construction time, so graph
// Configuration errors (duplicate ids, undeclared dependencies, cycles,
// non-linear graphs) surface here. Module resolution and role-sequence
// errors depend on per-entry config and surface from Execute instead.
type Manager struct {
	workflow *workflowconfig.Workflow
	order    []string
	registry *registry.Registry
	logger   *logger.Logger
	opts     Options

	failures *failure.Collector
}

// New validates and compiles wf's step graph, returning a Manager ready to
// Execute, or the ConfigurationError the compiler raised.
func New(wf *workflowconfig.Workflow, reg *registry.Registry, log *logger.Logger, opts Options) (*Manager, error) {
	nodes := make([]dag.Node, len(wf.Steps))
	for i, step := range wf.Steps {
		nodes[i] = dag.Node{ID: step.ID, DependsOn: step.DependsOn}
	}

	order, err := dag.Compile(nodes)
	if err != nil {
		return nil, err
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = matrix.DefaultConcurrency
	}

	return &Manager{
		workflow: wf,
		order:    order,
		registry: reg,
		logger:   log,
		opts:     opts,
		failures: failure.New(),
	}, nil
}

// Failures returns the root Failure Collector, aggregating every pipeline
// run across the life of this Manager (matrix entries share it in effect:
// each pipeline runs with its own collector for correct per-entry counts,
// then merges its records in here — see DESIGN.md).
func (m *Manager) Failures() *failure.Collector {
	return m.failures
}

// Execute runs one pipeline (no matrix) or one pipeline per matrix entry
// concurrently, returning a Result per pipeline in matrix input order. It
// never returns an error: graph Configuration errors already surfaced at
// New; anything else (unknown module, failed constructor, wrong role
// sequence, Fatal runtime error) becomes a failed Result for that pipeline.
func (m *Manager) Execute(ctx context.Context) []Result {
	entries, isMatrix := m.buildEntries()

	return matrix.Run(entries, m.opts.Concurrency, func(entry matrix.Entry) Result {
		return m.runPipeline(ctx, entry, isMatrix)
	})
}

func (m *Manager) buildEntries() ([]matrix.Entry, bool) {
	if !m.workflow.HasMatrix() {
		return []matrix.Entry{{Index: 0, Data: map[string]any{}}}, false
	}

	entries := make([]matrix.Entry, len(m.workflow.Strategy.Matrix))
	for i, data := range m.workflow.Strategy.Matrix {
		entries[i] = matrix.Entry{Index: i, Data: data}
	}
	return entries, true
}

func (m *Manager) runPipeline(ctx context.Context, entry matrix.Entry, isMatrix bool) Result {
	workflowID := m.workflow.Name
	collectionID := "default"
	if isMatrix {
		collectionID = entry.CollectionID()
		workflowID = fmt.Sprintf("%s-%s", m.workflow.Name, collectionID)
	}

	local := failure.New()
	defer func() { mergeInto(m.failures, local) }()

	store, err := checkpoint.Open(checkpoint.Options{
		Root:               m.opts.CheckpointRoot,
		WorkflowID:         workflowID,
		CollectionID:       collectionID,
		ResumeFromExisting: m.opts.ResumeFromExisting,
	})
	if err != nil {
		return criticalResult(err, local, entry, isMatrix)
	}
	defer store.Close()

	rootCtx := &execctx.Context{
		WorkflowID: workflowID,
		Logger:     m.logger.WithFields(map[string]any{"workflow_id": workflowID}),
		Failures:   local,
		Checkpoint: store,
		Data:       map[string]any{},
	}
	execCtx := rootCtx.Fork(entry.Data).WithStd(ctx)

	steps, err := m.instantiateSteps(execCtx, entry.Data)
	if err != nil {
		return criticalResult(err, local, entry, isMatrix)
	}

	accepted, err := stream.Run(execCtx, steps)
	if err != nil {
		return criticalResult(err, local, entry, isMatrix)
	}

	status, success := deriveStatus(accepted, local.Count())
	return Result{
		Success:             success,
		Status:              status,
		Summary:             summaryFor(status, accepted, local.Count()),
		FailureCount:        local.Count(),
		TotalItemsProcessed: accepted,
		MatrixEntry:         matrixEntryField(isMatrix, entry),
		Failures:            local,
	}
}

// instantiateSteps builds one module per compiled step id, in topological
// order, merging matrixData into each step's config (matrixData keys take
// precedence) before constructing it.
func (m *Manager) instantiateSteps(ctx *execctx.Context, matrixData map[string]any) ([]stream.Step, error) {
	byID := make(map[string]workflowconfig.Step, len(m.workflow.Steps))
	for _, s := range m.workflow.Steps {
		byID[s.ID] = s
	}

	steps := make([]stream.Step, 0, len(m.order))
	for _, id := range m.order {
		def := byID[id]

		cfg := (&execctx.Context{Data: def.Config}).Fork(matrixData).Data

		instance, role, err := m.registry.Build(def.ID, def.Module, cfg)
		if err != nil {
			return nil, err
		}

		if aware, ok := instance.(registry.LoggerAware); ok {
			stepLogger := ctx.Logger.WithFields(map[string]any{"step": def.ID})
			if def.LogLevel != "" {
				stepLogger = stepLogger.WithLevel(def.LogLevel)
			}
			aware.SetLogger(stepLogger)
		}

		steps = append(steps, stream.Step{ID: id, Role: role, Module: instance})
	}

	return steps, nil
}

// deriveStatus classifies a run's outcome from its success/failure counts.
// "items processed" here is the total count of items definitively resolved
// (successes plus failures); items a Transformer dropped are neither, and
// never enter this comparison.
func deriveStatus(successCount, failureCount int) (Status, bool) {
	attempted := successCount + failureCount
	switch {
	case attempted == 0:
		return StatusFailed, false
	case failureCount == 0:
		return StatusCompleted, true
	case failureCount < attempted:
		return StatusCompletedWithFailures, true
	default:
		return StatusFailed, false
	}
}

func summaryFor(status Status, accepted, failures int) string {
	switch status {
	case StatusCompleted:
		return fmt.Sprintf("completed: %d items processed", accepted)
	case StatusCompletedWithFailures:
		return fmt.Sprintf("completed with failures: %d processed, %d failed", accepted, failures)
	default:
		return "failed: no items were successfully processed"
	}
}

func criticalResult(err error, local *failure.Collector, entry matrix.Entry, isMatrix bool) Result {
	return Result{
		Success:      false,
		Status:       StatusFailed,
		Summary:      fmt.Sprintf("Critical error: %v", err),
		FailureCount: local.Count(),
		MatrixEntry:  matrixEntryField(isMatrix, entry),
		Failures:     local,
	}
}

func matrixEntryField(isMatrix bool, entry matrix.Entry) map[string]any {
	if !isMatrix {
		return nil
	}
	return entry.Data
}

func mergeInto(root, local *failure.Collector) {
	for _, r := range local.GetAll() {
		root.AddRecord(r)
	}
}
