package identity

import (
	"context"
	"fmt"
	"time"
)

// AccessToken is a short-lived application credential.
// It is scoped to one sweep cycle and never persisted.
type AccessToken struct {
	// Value is the bearer token.
	Value string

	// ExpiresAt is when the token stops being valid.
	ExpiresAt time.Time
}

// Valid reports whether the token is non-empty and unexpired.
func (t AccessToken) Valid() bool {
	return t.Value != "" && time.Now().Before(t.ExpiresAt)
}

// TokenSource obtains application-level access tokens.
type TokenSource interface {
	// Token returns a token scoped to the host tenant. Implementations
	// must return an error, never an empty token, on failure.
	Token(ctx context.Context) (AccessToken, error)
}

// TokenError represents a failed token acquisition.
type TokenError struct {
	// StatusCode is the HTTP status code (0 if not applicable).
	StatusCode int

	// Message is the error message.
	Message string

	// Cause is the underlying error (if any).
	Cause error
}

// Error implements the error interface.
func (e *TokenError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("token acquisition failed (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("token acquisition failed: %s", e.Message)
}

// Unwrap returns the underlying error for error chain support.
func (e *TokenError) Unwrap() error {
	return e.Cause
}

// StaticTokenSource returns a fixed token. Intended for tests.
type StaticTokenSource struct {
	// TokenValue is the bearer token to hand out.
	TokenValue string

	// Err, if set, is returned instead of a token.
	Err error
}

// Token implements TokenSource.
func (s *StaticTokenSource) Token(ctx context.Context) (AccessToken, error) {
	if s.Err != nil {
		return AccessToken{}, s.Err
	}
	return AccessToken{
		Value:     s.TokenValue,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}
