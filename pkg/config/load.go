package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that behavior.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Booleans defaulting to true are seeded before unmarshal so that an
	// absent key keeps the default while an explicit false wins.
	cfg := Config{
		Store:   StoreConfig{WALMode: true},
		Journal: JournalConfig{Enabled: true},
		Telemetry: TelemetryConfig{
			Logging: LoggingConfig{RedactSecrets: true},
			Metrics: MetricsConfig{Enabled: true},
		},
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow the
// naming convention CALLISTO_SECTION_FIELD (e.g.
// CALLISTO_SWEEPER_RETENTION_DAYS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables use the format CALLISTO_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Sweeper overrides
	if val := os.Getenv("CALLISTO_SWEEPER_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Sweeper.RetentionDays = i
		}
	}
	if val := os.Getenv("CALLISTO_SWEEPER_SWEEP_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Sweeper.SweepInterval = d
		}
	}
	if val := os.Getenv("CALLISTO_SWEEPER_ROLE"); val != "" {
		cfg.Sweeper.Role = val
	}
	if val := os.Getenv("CALLISTO_SWEEPER_DRY_RUN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Sweeper.DryRun = b
		}
	}

	// Store overrides
	if val := os.Getenv("CALLISTO_STORE_PATH"); val != "" {
		cfg.Store.Path = val
	}
	if val := os.Getenv("CALLISTO_STORE_MAX_OPEN_CONNS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Store.MaxOpenConns = i
		}
	}
	if val := os.Getenv("CALLISTO_STORE_WAL_MODE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Store.WALMode = b
		}
	}

	// Graph overrides
	if val := os.Getenv("CALLISTO_GRAPH_BASE_URL"); val != "" {
		cfg.Graph.BaseURL = val
	}
	if val := os.Getenv("CALLISTO_GRAPH_APP_CATALOG_ID"); val != "" {
		cfg.Graph.AppCatalogID = val
	}
	if val := os.Getenv("CALLISTO_GRAPH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Graph.Timeout = d
		}
	}
	if val := os.Getenv("CALLISTO_GRAPH_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Graph.MaxRetries = i
		}
	}

	// Identity overrides
	if val := os.Getenv("CALLISTO_IDENTITY_ENDPOINT"); val != "" {
		cfg.Identity.Endpoint = val
	}
	if val := os.Getenv("CALLISTO_IDENTITY_TENANT_ID"); val != "" {
		cfg.Identity.TenantID = val
	}
	if val := os.Getenv("CALLISTO_IDENTITY_CLIENT_ID"); val != "" {
		cfg.Identity.ClientID = val
	}
	if val := os.Getenv("CALLISTO_IDENTITY_CLIENT_SECRET"); val != "" {
		cfg.Identity.ClientSecret = val
	}

	// Journal overrides
	if val := os.Getenv("CALLISTO_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Journal.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_JOURNAL_PATH"); val != "" {
		cfg.Journal.Path = val
	}
	if val := os.Getenv("CALLISTO_JOURNAL_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Journal.RetentionDays = i
		}
	}
	if val := os.Getenv("CALLISTO_JOURNAL_MAINTENANCE_SCHEDULE"); val != "" {
		cfg.Journal.MaintenanceSchedule = val
	}

	// Telemetry overrides
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_TELEMETRY_OPS_LISTEN_ADDRESS"); val != "" {
		cfg.Telemetry.Ops.ListenAddress = val
	}
}
