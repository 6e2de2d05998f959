package config

import (
	"strings"
	"testing"
)

// TestValidate_DefaultConfig tests that the default configuration is valid.
func TestValidate_DefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Store.WALMode = true
	cfg.Journal.Enabled = true

	if err := Validate(cfg); err != nil {
		t.Fatalf("default configuration should be valid: %v", err)
	}
}

// TestValidate_FieldErrors tests individual validation rules.
func TestValidate_FieldErrors(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(cfg *Config)
		wantField string
	}{
		{
			name:      "negative retention days",
			mutate:    func(cfg *Config) { cfg.Sweeper.RetentionDays = -1 },
			wantField: "sweeper.retention_days",
		},
		{
			name:      "zero sweep interval",
			mutate:    func(cfg *Config) { cfg.Sweeper.SweepInterval = 0 },
			wantField: "sweeper.sweep_interval",
		},
		{
			name:      "empty role",
			mutate:    func(cfg *Config) { cfg.Sweeper.Role = "" },
			wantField: "sweeper.role",
		},
		{
			name:      "empty store path",
			mutate:    func(cfg *Config) { cfg.Store.Path = "" },
			wantField: "store.path",
		},
		{
			name:      "invalid graph base url",
			mutate:    func(cfg *Config) { cfg.Graph.BaseURL = "not a url" },
			wantField: "graph.base_url",
		},
		{
			name:      "invalid identity endpoint",
			mutate:    func(cfg *Config) { cfg.Identity.Endpoint = "::bad::" },
			wantField: "identity.endpoint",
		},
		{
			name:      "invalid cron schedule",
			mutate:    func(cfg *Config) { cfg.Journal.MaintenanceSchedule = "every day at 3" },
			wantField: "journal.maintenance_schedule",
		},
		{
			name:      "unknown log level",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Level = "verbose" },
			wantField: "telemetry.logging.level",
		},
		{
			name:      "unknown log format",
			mutate:    func(cfg *Config) { cfg.Telemetry.Logging.Format = "xml" },
			wantField: "telemetry.logging.format",
		},
		{
			name:      "bad ops listen address",
			mutate:    func(cfg *Config) { cfg.Telemetry.Ops.ListenAddress = "nope" },
			wantField: "telemetry.ops.listen_address",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			cfg.Journal.Enabled = true
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatalf("Validate() should fail for %s", tt.name)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("error %q should mention field %q", err.Error(), tt.wantField)
			}
		})
	}
}

// TestValidate_JournalDisabledSkipsJournalRules tests that a disabled
// journal section is not validated.
func TestValidate_JournalDisabledSkipsJournalRules(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Journal.Enabled = false
	cfg.Journal.Path = ""
	cfg.Journal.MaintenanceSchedule = "garbage"

	if err := Validate(cfg); err != nil {
		t.Fatalf("disabled journal should skip validation: %v", err)
	}
}

// TestValidationError_Message tests multi-error formatting.
func TestValidationError_Message(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Sweeper.RetentionDays = -1
	cfg.Sweeper.Role = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	if !strings.Contains(err.Error(), "2 errors") {
		t.Errorf("error %q should report 2 errors", err.Error())
	}
}
