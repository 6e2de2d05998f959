package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chatops-hq/callisto/pkg/cli"
	"chatops-hq/callisto/pkg/sweeper"
)

var sweepFlags struct {
	dryRun bool
	output string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Execute a single sweep cycle and exit",
	Long: `Execute exactly one sweep cycle against the configured store and
directory API, print the result, and exit.

Examples:
  # One cycle with the configured settings
  callisto sweep

  # Show what would be revoked without touching anything
  callisto sweep --dry-run

  # Machine-readable result
  callisto sweep --output json`,
	RunE: runSweepOnce,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().BoolVar(&sweepFlags.dryRun, "dry-run", false, "evaluate eligibility without revoking or deleting")
	sweepCmd.Flags().StringVarP(&sweepFlags.output, "output", "o", "text", "output format (text, json)")
}

func runSweepOnce(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	sw, err := sweeper.New(sweeper.Config{
		Tokens:  comps.tokens,
		Store:   comps.store,
		Graph:   comps.graph,
		Policy:  comps.policy,
		Journal: comps.journal,
		Metrics: comps.metrics,
		Tracer:  comps.tracer,
		Role:    cfg.Sweeper.Role,
		DryRun:  cfg.Sweeper.DryRun || sweepFlags.dryRun,
	})
	if err != nil {
		return cli.NewCommandError("sweep", err)
	}

	result, err := sw.SweepOnce(cmd.Context())
	if err != nil {
		return cli.NewCommandError("sweep", err)
	}

	if sweepFlags.output == string(cli.FormatJSON) {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(cmd.OutOrStdout(), result)
	}

	fmt.Fprintf(cmd.OutOrStdout(),
		"cycle %s: scanned=%d eligible=%d revoked=%d failed=%d deleted=%d (%s)\n",
		result.CycleID, result.Scanned, result.Eligible,
		result.Revoked, result.Failed, result.Deleted, result.Duration)
	return nil
}
