package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration file, apply defaults and environment
overrides, and run validation. Exits non-zero on the first problem.

Examples:
  callisto validate
  callisto validate --config /etc/callisto/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Configuration valid: %s\n", cfgFile)
	fmt.Fprintf(cmd.OutOrStdout(), "  retention: %d days, interval %s, role %q\n",
		cfg.Sweeper.RetentionDays, cfg.Sweeper.SweepInterval, cfg.Sweeper.Role)
	return nil
}
