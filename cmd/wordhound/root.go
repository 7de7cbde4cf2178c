package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden by the linker on release builds.
var version = "dev"

// NewRootCmd wires the subcommands.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wordhound",
		Short:         "Focused crawler that hunts dictionary words across interesting domains",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(NewRunCmd())
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
