package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"chatops-hq/callisto/pkg/telemetry/metrics"
)

// Client is the directory/graph API client used by the sweeper.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// NewClient creates a graph API client with connection pooling.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, &GraphError{
			Operation: "configure",
			Message:   "base URL is required",
		}
	}
	if config.AppCatalogID == "" {
		return nil, &GraphError{
			Operation: "configure",
			Message:   "app catalog ID is required",
		}
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = 3
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	c := &Client{
		config: config,
		client: &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		},
		logger: slog.Default().With("component", "graph.client"),
	}

	c.logger.Info("graph client initialized",
		"base_url", config.BaseURL,
		"app_catalog_id", config.AppCatalogID,
	)

	return c, nil
}

// InstalledAppID returns the installation identifier of the onboarding
// add-in in the user's personal scope. It returns a NotFoundError if the
// add-in is not installed for the user.
func (c *Client) InstalledAppID(ctx context.Context, token, userID string) (string, error) {
	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("app/id eq '%s'", c.config.AppCatalogID))
	endpoint := fmt.Sprintf("%s/users/%s/installedApps?%s",
		c.config.BaseURL, url.PathEscape(userID), query.Encode())

	resp, err := c.doRequest(ctx, "lookup_installed_app", http.MethodGet, endpoint, token, userID)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &GraphError{
			Operation: "lookup_installed_app",
			Message:   "failed to read response",
			Cause:     err,
		}
	}

	var listing installedAppsResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		return "", &GraphError{
			Operation: "lookup_installed_app",
			Message:   "failed to decode response",
			Cause:     err,
		}
	}

	for _, app := range listing.Value {
		if app.App.ID == c.config.AppCatalogID {
			return app.ID, nil
		}
	}

	return "", &NotFoundError{UserID: userID, Resource: "installation"}
}

// RemoveInstalledApp removes the given installation from the user's
// personal scope.
func (c *Client) RemoveInstalledApp(ctx context.Context, token, userID, appID string) error {
	endpoint := fmt.Sprintf("%s/users/%s/installedApps/%s",
		c.config.BaseURL, url.PathEscape(userID), url.PathEscape(appID))

	resp, err := c.doRequest(ctx, "remove_installed_app", http.MethodDelete, endpoint, token, userID)
	if err != nil {
		return err
	}
	resp.Body.Close()

	c.logger.Debug("installed app removed",
		"user_id", userID,
		"app_id", appID,
	)
	return nil
}

// Ping verifies the API base URL answers at all. Any HTTP response counts;
// only transport failures are errors.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &GraphError{Operation: "ping", Message: "failed to create request", Cause: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &GraphError{Operation: "ping", Message: "unreachable", Cause: err}
	}
	resp.Body.Close()
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// doRequest performs a request with retry logic. Transient errors (5xx and
// network failures) are retried with exponential backoff; client errors
// are mapped to typed errors and returned immediately.
func (c *Client) doRequest(ctx context.Context, operation, method, endpoint, token, userID string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			c.logger.Debug("retrying graph request",
				"operation", operation,
				"attempt", attempt,
				"max_retries", c.config.MaxRetries,
				"backoff", backoff,
			)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return nil, &GraphError{
				Operation: operation,
				Message:   "failed to create request",
				Cause:     err,
			}
		}

		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("client-request-id", uuid.NewString())

		attemptStart := time.Now()
		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			c.observe(operation, metrics.StatusError, attemptStart)

			if ctx.Err() != nil {
				return nil, &TimeoutError{
					Operation: operation,
					Timeout:   c.config.Timeout,
				}
			}

			c.logger.Warn("graph request failed, will retry",
				"operation", operation,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.observe(operation, metrics.StatusOK, attemptStart)
			return resp, nil
		}
		c.observe(operation, metrics.StatusError, attemptStart)

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return nil, &AuthError{
				Operation: operation,
				Message:   apiErrorMessage(errorBody),
			}

		case http.StatusNotFound:
			return nil, &NotFoundError{UserID: userID, Resource: "user"}

		case http.StatusTooManyRequests:
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			return nil, &RateLimitError{
				Operation:  operation,
				RetryAfter: retryAfter,
				Message:    apiErrorMessage(errorBody),
			}

		default:
			if resp.StatusCode >= 500 {
				// Server error, retry
				lastErr = &GraphError{
					Operation:  operation,
					StatusCode: resp.StatusCode,
					Message:    apiErrorMessage(errorBody),
				}
				c.logger.Warn("graph request returned server error, will retry",
					"operation", operation,
					"status", resp.StatusCode,
					"attempt", attempt+1,
				)
				continue
			}

			// Remaining 4xx, don't retry
			return nil, &GraphError{
				Operation:  operation,
				StatusCode: resp.StatusCode,
				Message:    apiErrorMessage(errorBody),
			}
		}
	}

	if gerr, ok := lastErr.(*GraphError); ok {
		return nil, gerr
	}
	return nil, &GraphError{
		Operation: operation,
		Message:   "retries exhausted",
		Cause:     lastErr,
	}
}

// observe records one request attempt. A nil collector is a no-op.
func (c *Client) observe(operation, status string, start time.Time) {
	if c.config.Metrics == nil {
		return
	}
	c.config.Metrics.RecordGraphRequest(operation, status, time.Since(start))
}

// apiErrorMessage extracts the message from a graph error body, falling
// back to the raw body.
func apiErrorMessage(body []byte) string {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return string(body)
}

// parseRetryAfter parses the Retry-After header value.
// It supports both delay-seconds and HTTP-date formats.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}

	var seconds int
	if _, err := fmt.Sscanf(header, "%d", &seconds); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}

	return 0
}
