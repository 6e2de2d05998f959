// Package tracing provides OpenTelemetry span export for the sweeper.
//
// Spans are exported over OTLP gRPC. When tracing is disabled the tracer
// hands out noop spans, so callers never branch on the setting.
package tracing
