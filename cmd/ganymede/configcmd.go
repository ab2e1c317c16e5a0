package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Work with configuration files",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Validate a configuration file, including environment overrides.

The file is loaded the same way a deployment loads it: YAML first,
then defaults, then GANYMEDE_* environment overrides, then validation.

Examples:
  ganymede config validate --config config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
		if err != nil {
			return err
		}

		fmt.Printf("✓ %s is valid\n", cfgFile)
		if verbose {
			fmt.Printf("  audit backend:    %s\n", cfg.Audit.Backend)
			fmt.Printf("  history backend:  %s\n", cfg.History.Backend)
			fmt.Printf("  metrics enabled:  %v\n", cfg.Metrics.Enabled)
			fmt.Printf("  execution timeout: %s\n", cfg.Engine.ExecutionTimeout)
			fmt.Printf("  retention period:  %s\n", cfg.Retention.RetentionPeriod)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configValidateCmd)
}
