package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"chatops-hq/callisto/pkg/cli"
	"chatops-hq/callisto/pkg/config"
	"chatops-hq/callisto/pkg/journal"
	"chatops-hq/callisto/pkg/server"
	"chatops-hq/callisto/pkg/sweeper"
	"chatops-hq/callisto/pkg/telemetry/health"
)

var runFlags struct {
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the retention sweeper",
	Long: `Start the retention sweeper loop with the specified configuration.

The sweeper wakes on a fixed interval, revokes the add-in from accounts
past the retention threshold, and deletes their records. It also starts
the operational HTTP server and watches the configuration file for
retention threshold changes.

Examples:
  # Start with default config
  callisto run

  # Start with custom config
  callisto run --config /etc/callisto/config.yaml

  # Evaluate eligibility without revoking or deleting
  callisto run --dry-run`,
	RunE: runSweeper,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "evaluate eligibility without revoking or deleting")
}

func runSweeper(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	comps, err := buildComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	ctx, cancel := context.WithCancel(cli.SetupSignalHandler())
	defer cancel()

	// Config file watcher: threshold changes apply on the next cycle.
	watcher, err := config.NewWatcher(cfgFile, comps.policy, slog.Default())
	if err != nil {
		slog.Warn("config watcher unavailable, threshold is fixed", "error", err)
	} else {
		go func() {
			if err := watcher.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				slog.Warn("config watcher stopped", "error", err)
			}
		}()
	}

	// Journal maintenance on its cron schedule.
	if cfg.Journal.Enabled {
		maintainer := journal.NewMaintainer(comps.journal, cfg.Journal.MaintenanceSchedule, cfg.Journal.RetentionDays)
		if err := maintainer.Start(ctx); err != nil {
			slog.Warn("journal maintenance unavailable", "error", err)
		} else {
			defer maintainer.Stop()
		}
	}

	// Ops server with health checks for the sweeper's dependencies.
	checker := health.New(0)
	checker.RegisterCheck("store", comps.store.Ping)
	if cfg.Journal.Enabled {
		checker.RegisterCheck("journal", func(ctx context.Context) error {
			_, err := comps.journal.RecentActions(ctx, 1)
			return err
		})
	}

	opsServer := server.New(cfg.Telemetry.Ops, cfg.Telemetry.Metrics, checker, comps.metrics, comps.journal,
		server.BuildInfo{Version: Version, Commit: GitCommit, BuildTime: BuildDate})
	go func() {
		if err := opsServer.Start(ctx); err != nil {
			slog.Error("ops server failed", "error", err)
		}
	}()

	sw, err := sweeper.New(sweeper.Config{
		Tokens:   comps.tokens,
		Store:    comps.store,
		Graph:    comps.graph,
		Policy:   comps.policy,
		Journal:  comps.journal,
		Metrics:  comps.metrics,
		Tracer:   comps.tracer,
		Interval: cfg.Sweeper.SweepInterval,
		Role:     cfg.Sweeper.Role,
		DryRun:   cfg.Sweeper.DryRun || runFlags.dryRun,
	})
	if err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Printf("Callisto %s\n", Version)
	fmt.Printf("✓ Configuration loaded from %s\n", cfgFile)
	fmt.Printf("✓ Sweeping role %q every %s (retention %d days)\n",
		cfg.Sweeper.Role, cfg.Sweeper.SweepInterval, cfg.Sweeper.RetentionDays)
	fmt.Printf("✓ Ops server on %s\n", cfg.Telemetry.Ops.ListenAddress)
	fmt.Println("\nPress Ctrl+C to stop")

	if err := sw.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("✓ Sweeper stopped")
	return nil
}
