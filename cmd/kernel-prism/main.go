package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/joestump/kernel-prism/internal/config"
	"github.com/joestump/kernel-prism/internal/logging"
)

// app carries what PersistentPreRunE builds for every subcommand.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	verbose bool
}

func main() {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "kernel-prism",
		Short:         "Build structured kernel prompts for image, app and free-form generation",
		Long:          "Kernel Prism — pick tags per category, add your own, and compile a deterministic kernel prompt.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.Log.Level
			if a.verbose {
				level = "debug"
			}
			logger, err := logging.New(level, cfg.Log.Development)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, a.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newMigrateCmd(a))
	rootCmd.AddCommand(newCompileCmd(a))
	rootCmd.AddCommand(newCatalogCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
