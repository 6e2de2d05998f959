package graph

import (
	"time"

	"chatops-hq/callisto/pkg/telemetry/metrics"
)

// Config contains configuration for the graph API client.
type Config struct {
	// BaseURL is the base URL of the graph API,
	// e.g. "https://graph.example.com/v1.0".
	BaseURL string

	// AppCatalogID is the catalog identifier of the onboarding add-in.
	// Installed-app lookups are filtered to this app.
	AppCatalogID string

	// Timeout is the per-request timeout.
	Timeout time.Duration

	// MaxRetries is the number of retries for transient failures.
	MaxRetries int

	// MaxIdleConns is the connection pool size.
	MaxIdleConns int

	// MaxIdleConnsPerHost is the per-host connection pool size.
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long idle connections are kept.
	IdleConnTimeout time.Duration

	// Metrics records per-request counts and latencies. Optional.
	Metrics *metrics.Collector
}

// installedAppsResponse is the wire shape of the installed-apps listing.
type installedAppsResponse struct {
	Value []installedApp `json:"value"`
}

// installedApp is one installation entry in a user's personal scope.
type installedApp struct {
	// ID is the installation identifier used for removal.
	ID string `json:"id"`

	// App identifies the catalog app behind this installation.
	App catalogApp `json:"app"`
}

// catalogApp is the catalog app reference carried on an installation.
type catalogApp struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// apiError is the wire shape of a graph API error response.
type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
