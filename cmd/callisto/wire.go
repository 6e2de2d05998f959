package main

import (
	"context"
	"fmt"

	"chatops-hq/callisto/pkg/cli"
	"chatops-hq/callisto/pkg/config"
	"chatops-hq/callisto/pkg/directory"
	"chatops-hq/callisto/pkg/graph"
	"chatops-hq/callisto/pkg/identity"
	"chatops-hq/callisto/pkg/journal"
	"chatops-hq/callisto/pkg/telemetry/logging"
	"chatops-hq/callisto/pkg/telemetry/metrics"
	"chatops-hq/callisto/pkg/telemetry/tracing"
)

// components holds the wired dependency graph shared by the run and
// sweep commands.
type components struct {
	cfg     *config.Config
	store   directory.Store
	graph   *graph.Client
	tokens  identity.TokenSource
	journal journal.Journal
	metrics *metrics.Collector
	tracer  *tracing.Tracer
	policy  *config.RetentionPolicy

	closers []func() error
}

// close releases resources in reverse wiring order.
func (c *components) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		_ = c.closers[i]()
	}
}

// loadConfig loads, overrides, and validates the configuration file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}
	if err := config.Validate(cfg); err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

// buildComponents wires the store, graph client, token source, journal,
// and metrics from a validated configuration. Callers own the returned
// components and must call close.
func buildComponents(cfg *config.Config) (*components, error) {
	c := &components{
		cfg:    cfg,
		policy: config.NewRetentionPolicy(cfg.Sweeper.RetentionDays),
	}

	if _, err := logging.Install(logging.Config{
		Level:         cfg.Telemetry.Logging.Level,
		Format:        cfg.Telemetry.Logging.Format,
		RedactSecrets: cfg.Telemetry.Logging.RedactSecrets,
	}); err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}

	c.metrics = metrics.NewCollector(metrics.Config{
		Enabled:   cfg.Telemetry.Metrics.Enabled,
		Namespace: cfg.Telemetry.Metrics.Namespace,
	}, nil)

	tracer, err := tracing.New(tracing.Config{
		Enabled:     cfg.Telemetry.Tracing.Enabled,
		Endpoint:    cfg.Telemetry.Tracing.Endpoint,
		ServiceName: cfg.Telemetry.Tracing.ServiceName,
		SampleRatio: cfg.Telemetry.Tracing.SampleRatio,
		Insecure:    cfg.Telemetry.Tracing.Insecure,
		Timeout:     cfg.Telemetry.Tracing.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	c.tracer = tracer
	c.closers = append(c.closers, func() error {
		return tracer.Shutdown(context.Background())
	})

	store, err := directory.NewSQLiteStore(&directory.SQLiteConfig{
		Path:         cfg.Store.Path,
		MaxOpenConns: cfg.Store.MaxOpenConns,
		MaxIdleConns: cfg.Store.MaxIdleConns,
		WALMode:      cfg.Store.WALMode,
		BusyTimeout:  cfg.Store.BusyTimeout,
	})
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to open user store: %w", err)
	}
	c.store = store
	c.closers = append(c.closers, store.Close)

	graphClient, err := graph.NewClient(graph.Config{
		BaseURL:             cfg.Graph.BaseURL,
		AppCatalogID:        cfg.Graph.AppCatalogID,
		Timeout:             cfg.Graph.Timeout,
		MaxRetries:          cfg.Graph.MaxRetries,
		MaxIdleConns:        cfg.Graph.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Graph.MaxIdleConnsPerHost,
		Metrics:             c.metrics,
	})
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create graph client: %w", err)
	}
	c.graph = graphClient
	c.closers = append(c.closers, graphClient.Close)

	tokens, err := identity.NewClient(identity.Config{
		Endpoint:     cfg.Identity.Endpoint,
		TenantID:     cfg.Identity.TenantID,
		ClientID:     cfg.Identity.ClientID,
		ClientSecret: cfg.Identity.ClientSecret,
		Timeout:      cfg.Identity.Timeout,
	})
	if err != nil {
		c.close()
		return nil, fmt.Errorf("failed to create identity client: %w", err)
	}
	c.tokens = tokens

	c.journal = journal.Nop{}
	if cfg.Journal.Enabled {
		jrnl, err := journal.NewSQLiteJournal(journal.SQLiteJournalConfig{
			Path: cfg.Journal.Path,
		})
		if err != nil {
			c.close()
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		c.journal = jrnl
		c.closers = append(c.closers, jrnl.Close)
	}

	return c, nil
}
