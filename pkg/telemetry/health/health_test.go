package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestChecker_Liveness tests that liveness is always ok.
func TestChecker_Liveness(t *testing.T) {
	c := New(0)

	status := c.CheckLiveness(context.Background())
	if status.Status != "ok" {
		t.Errorf("liveness status = %q, want ok", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}
}

// TestChecker_Readiness tests aggregation across checks.
func TestChecker_Readiness(t *testing.T) {
	c := New(time.Second)

	// No checks registered: ready by default.
	status := c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("status = %q with no checks, want ready", status.Status)
	}

	c.RegisterCheck("store", func(ctx context.Context) error { return nil })
	c.RegisterCheck("journal", func(ctx context.Context) error { return nil })

	status = c.CheckReadiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("status = %q with healthy checks, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("len(checks) = %d, want 2", len(status.Checks))
	}

	c.RegisterCheck("store", func(ctx context.Context) error {
		return errors.New("database locked")
	})

	status = c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q with failing check, want degraded", status.Status)
	}
	if status.Checks["store"].Message != "database locked" {
		t.Errorf("store message = %q, want error text", status.Checks["store"].Message)
	}
	if status.Checks["journal"].Status != "ok" {
		t.Errorf("journal status = %q, want ok", status.Checks["journal"].Status)
	}
}

// TestChecker_Timeout tests that a hanging check is reported unhealthy.
func TestChecker_Timeout(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(time.Second)
		return nil
	})

	status := c.CheckReadiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("status = %q, want degraded on timeout", status.Status)
	}
	if status.Checks["slow"].Message != "health check timeout" {
		t.Errorf("message = %q, want timeout message", status.Checks["slow"].Message)
	}
}

// TestReadinessHandler tests the HTTP surface.
func TestReadinessHandler(t *testing.T) {
	c := New(time.Second)
	c.RegisterCheck("store", func(ctx context.Context) error {
		return errors.New("down")
	})

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", rec.Code)
	}

	var status Status
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if status.Status != "degraded" {
		t.Errorf("body status = %q, want degraded", status.Status)
	}
}

// TestLivenessHandler tests methods and body.
func TestLivenessHandler(t *testing.T) {
	c := New(time.Second)

	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}

	rec = httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status code = %d for POST, want 405", rec.Code)
	}
}

// TestRegister tests that all probe paths are mounted.
func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	Register(mux, New(time.Second), "1.2.3", "abc123", "2026-08-01")

	for _, path := range []string{"/health", "/ready", "/version"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var info VersionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("version body is not JSON: %v", err)
	}
	if info.Version != "1.2.3" || info.GoVersion == "" {
		t.Errorf("version info = %+v, want populated", info)
	}
}
