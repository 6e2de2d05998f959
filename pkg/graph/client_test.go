package graph

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"chatops-hq/callisto/pkg/telemetry/metrics"
)

const testCatalogID = "catalog-app-1"

// newTestClient creates a client pointed at a test server with fast
// timeouts and no idle-connection tuning.
func newTestClient(t *testing.T, baseURL string, maxRetries int) *Client {
	t.Helper()

	client, err := NewClient(Config{
		BaseURL:      baseURL,
		AppCatalogID: testCatalogID,
		Timeout:      2 * time.Second,
		MaxRetries:   maxRetries,
	})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return client
}

// TestNewClient_RequiresConfig tests constructor validation.
func TestNewClient_RequiresConfig(t *testing.T) {
	if _, err := NewClient(Config{AppCatalogID: testCatalogID}); err == nil {
		t.Error("NewClient() should fail without a base URL")
	}
	if _, err := NewClient(Config{BaseURL: "https://graph.example"}); err == nil {
		t.Error("NewClient() should fail without an app catalog ID")
	}
}

// TestClient_InstalledAppID tests the installed-app lookup happy path.
func TestClient_InstalledAppID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if r.Header.Get("client-request-id") == "" {
			t.Error("client-request-id header should be set")
		}
		wantFilter := fmt.Sprintf("app/id eq '%s'", testCatalogID)
		if got := r.URL.Query().Get("$filter"); got != wantFilter {
			t.Errorf("$filter = %q, want %q", got, wantFilter)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"value":[
			{"id":"install-9","app":{"id":"other-app","displayName":"Other"}},
			{"id":"install-1","app":{"id":%q,"displayName":"Onboarding"}}
		]}`, testCatalogID)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	appID, err := client.InstalledAppID(context.Background(), "token-1", "user-1")
	if err != nil {
		t.Fatalf("InstalledAppID() failed: %v", err)
	}
	if appID != "install-1" {
		t.Errorf("InstalledAppID() = %q, want %q", appID, "install-1")
	}
}

// TestClient_InstalledAppID_NotInstalled tests the empty listing case.
func TestClient_InstalledAppID_NotInstalled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.InstalledAppID(context.Background(), "token-1", "user-1")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if notFound.UserID != "user-1" || notFound.Resource != "installation" {
		t.Errorf("NotFoundError = %+v, want installation for user-1", notFound)
	}
}

// TestClient_RemoveInstalledApp tests the removal call.
func TestClient_RemoveInstalledApp(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		path = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	if err := client.RemoveInstalledApp(context.Background(), "token-1", "user-1", "install-1"); err != nil {
		t.Fatalf("RemoveInstalledApp() failed: %v", err)
	}
	if path != "/users/user-1/installedApps/install-1" {
		t.Errorf("path = %q, want installation path", path)
	}
}

// TestClient_AuthError tests that 401 maps to AuthError without retries.
func TestClient_AuthError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"code":"InvalidAuthenticationToken","message":"token expired"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	_, err := client.InstalledAppID(context.Background(), "stale", "user-1")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("error = %v, want *AuthError", err)
	}
	if authErr.Message != "token expired" {
		t.Errorf("Message = %q, want parsed API message", authErr.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 401)", calls.Load())
	}
}

// TestClient_RateLimitError tests 429 handling with Retry-After.
func TestClient_RateLimitError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 3)

	err := client.RemoveInstalledApp(context.Background(), "token-1", "user-1", "install-1")
	var rlErr *RateLimitError
	if !errors.As(err, &rlErr) {
		t.Fatalf("error = %v, want *RateLimitError", err)
	}
	if rlErr.RetryAfter != 30*time.Second {
		t.Errorf("RetryAfter = %v, want 30s", rlErr.RetryAfter)
	}
}

// TestClient_UserNotFound tests 404 mapping.
func TestClient_UserNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	_, err := client.InstalledAppID(context.Background(), "token-1", "ghost")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *NotFoundError", err)
	}
	if notFound.Resource != "user" {
		t.Errorf("Resource = %q, want %q", notFound.Resource, "user")
	}
}

// TestClient_RetriesServerErrors tests that 5xx responses are retried.
func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 2)

	if err := client.RemoveInstalledApp(context.Background(), "token-1", "user-1", "install-1"); err != nil {
		t.Fatalf("RemoveInstalledApp() failed after retry: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("server called %d times, want 2", calls.Load())
	}
}

// TestClient_RecordsMetrics tests that every request attempt reaches the
// collector with its operation and status.
func TestClient_RecordsMetrics(t *testing.T) {
	var fail atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, `{"value":[{"id":"install-1","app":{"id":%q}}]}`, testCatalogID)
	}))
	defer server.Close()

	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
	client, err := NewClient(Config{
		BaseURL:      server.URL,
		AppCatalogID: testCatalogID,
		Timeout:      2 * time.Second,
		Metrics:      collector,
	})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	if _, err := client.InstalledAppID(context.Background(), "token-1", "user-1"); err != nil {
		t.Fatalf("InstalledAppID() failed: %v", err)
	}
	fail.Store(true)
	if _, err := client.InstalledAppID(context.Background(), "token-1", "user-1"); err == nil {
		t.Fatal("InstalledAppID() should fail with 401")
	}

	// One ok series and one error series for the lookup operation.
	count, err := testutil.GatherAndCount(collector.Registry(), "callisto_graph_requests_total")
	if err != nil {
		t.Fatalf("gathering metrics failed: %v", err)
	}
	if count != 2 {
		t.Errorf("requests_total series = %d, want 2", count)
	}
}

// TestClient_Ping tests that any HTTP answer counts as reachable.
func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, 0)

	if err := client.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}

	server.Close()
	if err := client.Ping(context.Background()); err == nil {
		t.Error("Ping() should fail once the server is gone")
	}
}

// TestParseRetryAfter tests Retry-After parsing formats.
func TestParseRetryAfter(t *testing.T) {
	if got := parseRetryAfter(""); got != 0 {
		t.Errorf("parseRetryAfter(\"\") = %v, want 0", got)
	}
	if got := parseRetryAfter("15"); got != 15*time.Second {
		t.Errorf("parseRetryAfter(\"15\") = %v, want 15s", got)
	}
	future := time.Now().Add(time.Minute).UTC().Format(http.TimeFormat)
	if got := parseRetryAfter(future); got <= 0 || got > time.Minute {
		t.Errorf("parseRetryAfter(date) = %v, want about a minute", got)
	}
}
