package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		TenantID:     "tenant-1",
		ClientID:     "client-1",
		ClientSecret: "secret-1",
	}
}

// TestNewClient_RequiresCredentials tests constructor validation.
func TestNewClient_RequiresCredentials(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"missing endpoint", func(cfg *Config) { cfg.Endpoint = "" }},
		{"missing tenant", func(cfg *Config) { cfg.TenantID = "" }},
		{"missing client id", func(cfg *Config) { cfg.ClientID = "" }},
		{"missing client secret", func(cfg *Config) { cfg.ClientSecret = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newTestConfig("https://login.example")
			tt.mutate(&cfg)
			if _, err := NewClient(cfg); err == nil {
				t.Errorf("NewClient() should fail with %s", tt.name)
			}
		})
	}
}

// TestClient_Token tests the client-credentials happy path.
func TestClient_Token(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tenant-1/oauth2/v2.0/token" {
			t.Errorf("path = %q, want tenant token path", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm() failed: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q, want client_credentials", got)
		}
		if got := r.PostForm.Get("client_id"); got != "client-1" {
			t.Errorf("client_id = %q, want client-1", got)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"app-token","token_type":"Bearer","expires_in":3599}`)
	}))
	defer server.Close()

	client, err := NewClient(newTestConfig(server.URL))
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}

	token, err := client.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if token.Value != "app-token" {
		t.Errorf("token = %q, want %q", token.Value, "app-token")
	}
	if !token.Valid() {
		t.Error("freshly issued token should be valid")
	}
}

// TestClient_Token_ErrorStatus tests non-200 handling.
func TestClient_Token_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer server.Close()

	client, _ := NewClient(newTestConfig(server.URL))

	_, err := client.Token(context.Background())
	var tokenErr *TokenError
	if !errors.As(err, &tokenErr) {
		t.Fatalf("error = %v, want *TokenError", err)
	}
	if tokenErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want 400", tokenErr.StatusCode)
	}
}

// TestClient_Token_EmptyToken tests that a 200 with an empty token is an
// error rather than a usable credential.
func TestClient_Token_EmptyToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"","expires_in":3600}`)
	}))
	defer server.Close()

	client, _ := NewClient(newTestConfig(server.URL))

	if _, err := client.Token(context.Background()); err == nil {
		t.Fatal("Token() should fail for an empty access_token")
	}
}

// TestAccessToken_Valid tests expiry checking.
func TestAccessToken_Valid(t *testing.T) {
	expired := AccessToken{Value: "x", ExpiresAt: time.Now().Add(-time.Minute)}
	if expired.Valid() {
		t.Error("expired token should not be valid")
	}

	empty := AccessToken{ExpiresAt: time.Now().Add(time.Hour)}
	if empty.Valid() {
		t.Error("empty token should not be valid")
	}
}

// TestStaticTokenSource tests the test fixture itself.
func TestStaticTokenSource(t *testing.T) {
	src := &StaticTokenSource{TokenValue: "fixed"}
	token, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() failed: %v", err)
	}
	if token.Value != "fixed" {
		t.Errorf("token = %q, want %q", token.Value, "fixed")
	}

	src.Err = errors.New("boom")
	if _, err := src.Token(context.Background()); err == nil {
		t.Error("Token() should return the configured error")
	}
}
