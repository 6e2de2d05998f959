// Package logging builds the process-wide slog logger.
//
// The logger optionally redacts credentials before they reach the log
// stream: bearer tokens, client secrets, and values keyed by names that
// indicate sensitive data. Redaction is on by default and controlled by
// the telemetry.logging.redact_secrets config field.
package logging
