// Package metrics exposes Prometheus metrics for the sweeper.
//
// All metrics live under the configured namespace (default "callisto")
// in two subsystems: "sweeper" for cycle-level counters and gauges, and
// "graph" for outbound directory API calls. The Collector owns its own
// registry so tests can scrape in isolation.
package metrics
