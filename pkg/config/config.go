package config

import "time"

// Config is the root configuration structure for Callisto.
// It contains all configuration sections for the sweep loop, the user
// store, the graph API client, the token service, the audit journal, and
// telemetry.
type Config struct {
	// Sweeper contains the retention sweep loop configuration.
	Sweeper SweeperConfig `yaml:"sweeper"`

	// Store contains the user store configuration.
	Store StoreConfig `yaml:"store"`

	// Graph contains the directory/graph API client configuration.
	Graph GraphConfig `yaml:"graph"`

	// Identity contains the token service client configuration.
	Identity IdentityConfig `yaml:"identity"`

	// Journal contains the sweep audit journal configuration.
	Journal JournalConfig `yaml:"journal"`

	// Telemetry contains logging, metrics, and ops server configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// SweeperConfig contains configuration for the retention sweep loop.
type SweeperConfig struct {
	// RetentionDays is the number of whole days a new-hire record may
	// exist before its add-in installation is revoked. The comparison is
	// strict: a record aged exactly RetentionDays is kept for one more
	// cycle. This value is hot-reloadable; changes apply to the next
	// cycle.
	// Default: 30
	RetentionDays int `yaml:"retention_days"`

	// SweepInterval is the pause between sweep cycles. It is independent
	// of RetentionDays.
	// Default: 5s
	SweepInterval time.Duration `yaml:"sweep_interval"`

	// Role is the directory role the sweeper scans.
	// Default: "new-hire"
	Role string `yaml:"role"`

	// DryRun logs what would be revoked and deleted without calling the
	// graph API or mutating the store.
	// Default: false
	DryRun bool `yaml:"dry_run"`
}

// StoreConfig contains configuration for the SQLite user store.
type StoreConfig struct {
	// Path is the SQLite database file path.
	// Default: "data/users.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns is the maximum number of idle database connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// GraphConfig contains configuration for the directory/graph API client.
type GraphConfig struct {
	// BaseURL is the base URL of the graph API.
	// Default: "https://graph.example.com/v1.0"
	BaseURL string `yaml:"base_url"`

	// AppCatalogID is the catalog identifier of the add-in whose
	// installations the sweeper revokes.
	AppCatalogID string `yaml:"app_catalog_id"`

	// Timeout is the per-request timeout.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries for transient failures
	// (5xx responses and network errors). Client errors are not retried.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// MaxIdleConns is the connection pool size.
	// Default: 100
	MaxIdleConns int `yaml:"max_idle_conns"`

	// MaxIdleConnsPerHost is the per-host connection pool size.
	// Default: 10
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host"`
}

// IdentityConfig contains configuration for the token service client.
type IdentityConfig struct {
	// Endpoint is the base URL of the token service.
	// Default: "https://login.example.com"
	Endpoint string `yaml:"endpoint"`

	// TenantID is the host tenant the application token is scoped to.
	TenantID string `yaml:"tenant_id"`

	// ClientID is the application (client) identifier.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the application client secret. Prefer the
	// CALLISTO_IDENTITY_CLIENT_SECRET environment variable over the
	// config file for this value.
	ClientSecret string `yaml:"client_secret"`

	// Timeout is the token request timeout.
	// Default: 15s
	Timeout time.Duration `yaml:"timeout"`
}

// JournalConfig contains configuration for the sweep audit journal.
type JournalConfig struct {
	// Enabled controls whether sweep activity is journaled.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the journal SQLite database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// RetentionDays is how long journal rows are kept before the
	// maintenance job prunes them. 0 keeps rows forever.
	// Default: 90
	RetentionDays int `yaml:"retention_days"`

	// MaintenanceSchedule is a cron expression for the journal prune and
	// vacuum job. Empty disables scheduled maintenance.
	// Default: "0 3 * * *"
	MaintenanceSchedule string `yaml:"maintenance_schedule"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry span export configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Ops contains the operational HTTP server configuration.
	Ops OpsConfig `yaml:"ops"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the log output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`

	// RedactSecrets redacts bearer tokens and client secrets from log
	// attributes.
	// Default: true
	RedactSecrets bool `yaml:"redact_secrets"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the metrics endpoint path on the ops server.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "callisto"
	Namespace string `yaml:"namespace"`
}

// TracingConfig contains OpenTelemetry span export configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector address.
	// Default: "localhost:4317"
	Endpoint string `yaml:"endpoint"`

	// ServiceName identifies this process in exported spans.
	// Default: "callisto"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of sweep cycles to sample, in (0, 1].
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS on the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds each export batch.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// OpsConfig contains the operational HTTP server configuration.
// The ops server exposes health, readiness, and metrics endpoints; it is
// not part of the sweeper's externally consumed surface.
type OpsConfig struct {
	// ListenAddress is the address the ops server listens on.
	// Default: "127.0.0.1:9090"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading a request.
	// Default: 10s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration for writing a response.
	// Default: 10s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// ShutdownTimeout is the maximum duration for graceful shutdown.
	// Default: 10s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}
