package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joestump/kernel-prism/internal/build"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		// Skip config and logger setup.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kernel-prism %s (commit %s, branch %s)\n", build.Version, build.Commit, build.Branch)
		},
	}
}
