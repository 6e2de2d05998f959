package graph

import (
	"fmt"
	"time"
)

// GraphError represents a general graph API error.
type GraphError struct {
	// Operation is the client operation that failed.
	Operation string

	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *GraphError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("graph %s error (status %d): %s", e.Operation, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("graph %s error: %s", e.Operation, e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *GraphError) Unwrap() error {
	return e.Cause
}

// AuthError represents a rejected access token (HTTP 401 or 403).
type AuthError struct {
	// Operation is the client operation that failed.
	Operation string

	// Message is the error message from the API.
	Message string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("graph %s authentication failed: %s", e.Operation, e.Message)
}

// RateLimitError represents a throttled request (HTTP 429).
type RateLimitError struct {
	// Operation is the client operation that was throttled.
	Operation string

	// RetryAfter is the duration to wait before retrying (if provided).
	RetryAfter time.Duration

	// Message is the error message from the API.
	Message string
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("graph %s rate limited (retry after %s): %s",
			e.Operation, e.RetryAfter, e.Message)
	}
	return fmt.Sprintf("graph %s rate limited: %s", e.Operation, e.Message)
}

// NotFoundError indicates the add-in is not installed for the user, or the
// user does not exist in the directory.
type NotFoundError struct {
	// UserID is the directory identifier of the user.
	UserID string

	// Resource describes what was missing ("user", "installation").
	Resource string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("graph: %s not found for user %q", e.Resource, e.UserID)
}

// TimeoutError represents a request that exceeded the configured timeout.
type TimeoutError struct {
	// Operation is the client operation that timed out.
	Operation string

	// Timeout is the configured timeout duration.
	Timeout time.Duration
}

// Error implements the error interface.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("graph %s request timeout after %s", e.Operation, e.Timeout)
}
