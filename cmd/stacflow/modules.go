package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "Inspect the built-in module registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every module name the registry resolves",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range builtinModules {
				fmt.Println(name)
			}
			return nil
		},
	})

	return cmd
}
