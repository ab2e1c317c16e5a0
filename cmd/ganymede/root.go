package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile   string
	verbose   bool
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - governed state mutation engine tooling",
	Long: `Ganymede is a mutation engine that validates, authorizes, executes,
audits, and records deterministic state transitions.

This binary operates on the stores an engine deployment writes to:
  - Query the append-only audit ledger
  - Inspect and verify per-state mutation history
  - Validate configuration files`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := "info"
		if verbose {
			level = "debug"
		}
		logging.Setup(&logging.Config{
			Level:  level,
			Format: logging.LogFormat(logFormat),
		})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text, json")
}
