package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Cycle status label values.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns metric recording on. When false every Record call
	// is a no-op.
	Enabled bool

	// Namespace is the Prometheus namespace prefix.
	// Default: "callisto"
	Namespace string
}

// Collector owns all Prometheus metrics for the sweeper process.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	cyclesTotal        *prometheus.CounterVec
	cycleDuration      prometheus.Histogram
	usersScannedTotal  prometheus.Counter
	usersRevokedTotal  prometheus.Counter
	revocationFailures prometheus.Counter
	eligibleUsers      prometheus.Gauge
	retentionDays      prometheus.Gauge

	graphRequests *prometheus.CounterVec
	graphDuration *prometheus.HistogramVec
}

// NewCollector creates a metrics collector with its own registry.
// If registry is nil, a fresh one is created.
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "cycles_total",
			Help:      "Total sweep cycles by outcome status.",
		}, []string{"status"}),

		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "cycle_duration_seconds",
			Help:      "Wall-clock duration of sweep cycles.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}),

		usersScannedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "users_scanned_total",
			Help:      "Total user records fetched from the store.",
		}),

		usersRevokedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "users_revoked_total",
			Help:      "Total users whose app installation was removed.",
		}),

		revocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "revocation_failures_total",
			Help:      "Total failed revocation attempts.",
		}),

		eligibleUsers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "eligible_users",
			Help:      "Users past the retention threshold in the last cycle.",
		}),

		retentionDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: "sweeper",
			Name:      "retention_days",
			Help:      "Currently effective retention threshold in days.",
		}),

		graphRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "requests_total",
			Help:      "Outbound directory API requests by operation and status.",
		}, []string{"operation", "status"}),

		graphDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: "graph",
			Name:      "request_duration_seconds",
			Help:      "Outbound directory API request duration.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
	}

	registry.MustRegister(
		c.cyclesTotal,
		c.cycleDuration,
		c.usersScannedTotal,
		c.usersRevokedTotal,
		c.revocationFailures,
		c.eligibleUsers,
		c.retentionDays,
		c.graphRequests,
		c.graphDuration,
	)

	return c
}

// Registry returns the collector's Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordCycle records a finished sweep cycle.
func (c *Collector) RecordCycle(status string, duration time.Duration, scanned, eligible, revoked, failed int) {
	if !c.config.Enabled {
		return
	}

	c.cyclesTotal.WithLabelValues(status).Inc()
	c.cycleDuration.Observe(duration.Seconds())
	c.usersScannedTotal.Add(float64(scanned))
	c.usersRevokedTotal.Add(float64(revoked))
	c.revocationFailures.Add(float64(failed))
	c.eligibleUsers.Set(float64(eligible))
}

// SetRetentionDays records the currently effective threshold.
func (c *Collector) SetRetentionDays(days int) {
	if !c.config.Enabled {
		return
	}
	c.retentionDays.Set(float64(days))
}

// RecordGraphRequest records one outbound directory API call.
func (c *Collector) RecordGraphRequest(operation, status string, duration time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.graphRequests.WithLabelValues(operation, status).Inc()
	c.graphDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
