// Package health implements liveness and readiness probes for the
// sweeper process.
//
// Liveness is a constant "the process is up". Readiness aggregates
// registered component checks (user store ping, journal ping) and
// reports degraded with a 503 when any of them fail, which keeps the
// sweeper out of rotation until its dependencies recover.
package health
