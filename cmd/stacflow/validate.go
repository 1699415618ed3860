package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacflow/stacflow/internal/orchestrator"
	"github.com/stacflow/stacflow/internal/workflowconfig"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <workflow.yaml>",
		Short: "Parse and compile a workflow document without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := workflowconfig.Load(args[0])
			if err != nil {
				return fmt.Errorf("load workflow: %w", err)
			}

			log, err := newLogger()
			if err != nil {
				return fmt.Errorf("configure logger: %w", err)
			}

			if _, err := orchestrator.New(wf, newBuiltinRegistry(), log, orchestrator.Options{}); err != nil {
				return fmt.Errorf("compile workflow: %w", err)
			}

			fmt.Printf("workflow %q is valid: %d steps\n", wf.Name, len(wf.Steps))
			return nil
		},
	}
}
