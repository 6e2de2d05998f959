// Package telemetry groups the observability surfaces of the sweeper:
// structured logging (logging), Prometheus metrics (metrics), and
// health check endpoints (health).
package telemetry
