// Package server runs the operational HTTP server.
//
// The ops server is the sweeper's only inbound surface. It exposes
// liveness and readiness probes, build information, Prometheus metrics,
// and a read-only view of recent journal activity. It binds to
// localhost by default and carries no sweep functionality.
package server
