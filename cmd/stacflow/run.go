package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacflow/stacflow/internal/orchestrator"
	"github.com/stacflow/stacflow/internal/workflowconfig"
)

var (
	checkpointRoot     string
	resumeFromExisting bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <workflow.yaml>",
		Short: "Compile and execute a workflow document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWorkflow(args[0])
		},
	}

	cmd.Flags().StringVar(&checkpointRoot, "checkpoint-root", "./checkpoints", "directory holding per-(workflow,collection) checkpoint files")
	cmd.Flags().BoolVar(&resumeFromExisting, "resume", true, "load existing checkpoint state before running")

	return cmd
}

func runWorkflow(path string) error {
	wf, err := workflowconfig.Load(path)
	if err != nil {
		return fmt.Errorf("load workflow: %w", err)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("configure logger: %w", err)
	}

	mgr, err := orchestrator.New(wf, newBuiltinRegistry(), log, orchestrator.Options{
		CheckpointRoot:     checkpointRoot,
		ResumeFromExisting: resumeFromExisting,
	})
	if err != nil {
		return fmt.Errorf("compile workflow: %w", err)
	}

	results := mgr.Execute(context.Background())

	anyFailed := false
	for _, r := range results {
		fmt.Printf("status=%s success=%t processed=%d failures=%d summary=%q\n",
			r.Status, r.Success, r.TotalItemsProcessed, r.FailureCount, r.Summary)
		if !r.Success {
			anyFailed = true
		}
	}

	if anyFailed {
		return fmt.Errorf("one or more pipelines failed")
	}
	return nil
}
