package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Config contains configuration for the token service client.
type Config struct {
	// Endpoint is the base URL of the token service,
	// e.g. "https://login.example.com".
	Endpoint string

	// TenantID is the host tenant the token is scoped to.
	TenantID string

	// ClientID is the application (client) identifier.
	ClientID string

	// ClientSecret is the application client secret.
	ClientSecret string

	// Scope is the requested token scope.
	// Default: "https://graph.example.com/.default"
	Scope string

	// Timeout is the token request timeout.
	// Default: 15s
	Timeout time.Duration
}

// Client implements TokenSource using the OAuth2 client-credentials flow.
type Client struct {
	config Config
	client *http.Client
	logger *slog.Logger
}

// tokenResponse is the wire shape of the token endpoint response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// NewClient creates a token service client.
func NewClient(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, &TokenError{Message: "endpoint is required"}
	}
	if config.TenantID == "" {
		return nil, &TokenError{Message: "tenant ID is required"}
	}
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil, &TokenError{Message: "client credentials are required"}
	}

	if config.Scope == "" {
		config.Scope = "https://graph.example.com/.default"
	}
	if config.Timeout == 0 {
		config.Timeout = 15 * time.Second
	}

	return &Client{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: slog.Default().With("component", "identity.client"),
	}, nil
}

// Token requests an application token scoped to the configured tenant.
func (c *Client) Token(ctx context.Context) (AccessToken, error) {
	endpoint := fmt.Sprintf("%s/%s/oauth2/v2.0/token",
		strings.TrimRight(c.config.Endpoint, "/"), url.PathEscape(c.config.TenantID))

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {c.config.ClientID},
		"client_secret": {c.config.ClientSecret},
		"scope":         {c.config.Scope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return AccessToken{}, &TokenError{Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return AccessToken{}, &TokenError{Message: "token endpoint unreachable", Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return AccessToken{}, &TokenError{Message: "failed to read response", Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return AccessToken{}, &TokenError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
		}
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return AccessToken{}, &TokenError{Message: "failed to decode response", Cause: err}
	}

	// A 200 with an empty token is still a failure; callers must never
	// see a zero-value token without an error.
	if parsed.AccessToken == "" {
		return AccessToken{}, &TokenError{Message: "token endpoint returned an empty token"}
	}

	expiresIn := parsed.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}

	c.logger.Debug("application token acquired",
		"tenant_id", c.config.TenantID,
		"expires_in_s", expiresIn,
	)

	return AccessToken{
		Value:     parsed.AccessToken,
		ExpiresAt: time.Now().Add(time.Duration(expiresIn) * time.Second),
	}, nil
}
