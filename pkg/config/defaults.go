package config

import "time"

// Default values applied by ApplyDefaults when a field is unset.
const (
	DefaultRetentionDays = 30
	DefaultSweepInterval = 5 * time.Second
	DefaultRole          = "new-hire"

	DefaultStorePath    = "data/users.db"
	DefaultMaxOpenConns = 10
	DefaultMaxIdleConns = 5
	DefaultBusyTimeout  = 5 * time.Second

	DefaultGraphBaseURL        = "https://graph.example.com/v1.0"
	DefaultGraphTimeout        = 30 * time.Second
	DefaultGraphMaxRetries     = 3
	DefaultGraphMaxIdleConns   = 100
	DefaultGraphMaxIdlePerHost = 10

	DefaultIdentityEndpoint = "https://login.example.com"
	DefaultIdentityTimeout  = 15 * time.Second

	DefaultJournalPath          = "data/journal.db"
	DefaultJournalRetentionDays = 90
	DefaultJournalSchedule      = "0 3 * * *"

	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "callisto"
	DefaultOpsListenAddress = "127.0.0.1:9090"
	DefaultOpsTimeout       = 10 * time.Second

	DefaultTracingEndpoint    = "localhost:4317"
	DefaultTracingServiceName = "callisto"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
)

// NewDefaultConfig returns a configuration populated entirely from defaults.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills unset fields of cfg with default values.
// Boolean fields that default to true are handled in LoadConfig before
// unmarshaling, since an unset and an explicit false are indistinguishable
// after parsing.
func ApplyDefaults(cfg *Config) {
	if cfg.Sweeper.RetentionDays == 0 {
		cfg.Sweeper.RetentionDays = DefaultRetentionDays
	}
	if cfg.Sweeper.SweepInterval == 0 {
		cfg.Sweeper.SweepInterval = DefaultSweepInterval
	}
	if cfg.Sweeper.Role == "" {
		cfg.Sweeper.Role = DefaultRole
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultStorePath
	}
	if cfg.Store.MaxOpenConns == 0 {
		cfg.Store.MaxOpenConns = DefaultMaxOpenConns
	}
	if cfg.Store.MaxIdleConns == 0 {
		cfg.Store.MaxIdleConns = DefaultMaxIdleConns
	}
	if cfg.Store.BusyTimeout == 0 {
		cfg.Store.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Graph.BaseURL == "" {
		cfg.Graph.BaseURL = DefaultGraphBaseURL
	}
	if cfg.Graph.Timeout == 0 {
		cfg.Graph.Timeout = DefaultGraphTimeout
	}
	if cfg.Graph.MaxRetries == 0 {
		cfg.Graph.MaxRetries = DefaultGraphMaxRetries
	}
	if cfg.Graph.MaxIdleConns == 0 {
		cfg.Graph.MaxIdleConns = DefaultGraphMaxIdleConns
	}
	if cfg.Graph.MaxIdleConnsPerHost == 0 {
		cfg.Graph.MaxIdleConnsPerHost = DefaultGraphMaxIdlePerHost
	}

	if cfg.Identity.Endpoint == "" {
		cfg.Identity.Endpoint = DefaultIdentityEndpoint
	}
	if cfg.Identity.Timeout == 0 {
		cfg.Identity.Timeout = DefaultIdentityTimeout
	}

	if cfg.Journal.Path == "" {
		cfg.Journal.Path = DefaultJournalPath
	}
	if cfg.Journal.RetentionDays == 0 {
		cfg.Journal.RetentionDays = DefaultJournalRetentionDays
	}
	if cfg.Journal.MaintenanceSchedule == "" {
		cfg.Journal.MaintenanceSchedule = DefaultJournalSchedule
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Tracing.Endpoint == "" {
		cfg.Telemetry.Tracing.Endpoint = DefaultTracingEndpoint
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Ops.ListenAddress == "" {
		cfg.Telemetry.Ops.ListenAddress = DefaultOpsListenAddress
	}
	if cfg.Telemetry.Ops.ReadTimeout == 0 {
		cfg.Telemetry.Ops.ReadTimeout = DefaultOpsTimeout
	}
	if cfg.Telemetry.Ops.WriteTimeout == 0 {
		cfg.Telemetry.Ops.WriteTimeout = DefaultOpsTimeout
	}
	if cfg.Telemetry.Ops.ShutdownTimeout == 0 {
		cfg.Telemetry.Ops.ShutdownTimeout = DefaultOpsTimeout
	}
}
