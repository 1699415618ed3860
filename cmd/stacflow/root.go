// Package main is the stacflow command-line front end: a thin cobra tree
// wiring configuration loading, the module registry, and the orchestration
// facade together for a human operator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stacflow/stacflow/internal/logger"
)

var (
	logLevel      string
	humanReadable bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stacflow",
		Short: "Declarative STAC item pipeline engine",
		Long:  "stacflow compiles a workflow document into a DAG of ingest/transform/validate/sink steps and streams STAC items through it, with per-item failure isolation and checkpointed resume.",
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&humanReadable, "human", false, "emit human-readable (non-JSON) logs")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newModulesCmd())

	return cmd
}

func newLogger() (*logger.Logger, error) {
	return logger.New(logger.Options{Level: logLevel, HumanReadable: humanReadable, Writer: os.Stdout})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
