package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"chatops-hq/callisto/pkg/config"
	"chatops-hq/callisto/pkg/journal"
	"chatops-hq/callisto/pkg/telemetry/health"
	"chatops-hq/callisto/pkg/telemetry/metrics"
)

func newTestServer(t *testing.T, jrnl journal.Journal) *Server {
	t.Helper()

	collector := metrics.NewCollector(metrics.Config{Enabled: true}, prometheus.NewRegistry())

	return New(
		config.OpsConfig{
			ListenAddress:   "127.0.0.1:0",
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			ShutdownTimeout: time.Second,
		},
		config.MetricsConfig{Enabled: true, Path: "/metrics"},
		health.New(time.Second),
		collector,
		jrnl,
		BuildInfo{Version: "test", Commit: "none", BuildTime: "now"},
	)
}

// TestHandler_Routes tests that all ops routes are mounted.
func TestHandler_Routes(t *testing.T) {
	s := newTestServer(t, journal.Nop{})
	handler := s.Handler()

	for _, path := range []string{"/health", "/ready", "/version", "/metrics", "/journal/recent"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rec.Code)
		}
	}
}

// TestRecentJournalHandler tests the journal view endpoint.
func TestRecentJournalHandler(t *testing.T) {
	jrnl, err := journal.NewSQLiteJournal(journal.SQLiteJournalConfig{
		Path: filepath.Join(t.TempDir(), "journal.db"),
	})
	if err != nil {
		t.Fatalf("NewSQLiteJournal() failed: %v", err)
	}
	t.Cleanup(func() { _ = jrnl.Close() })

	err = jrnl.RecordAction(context.Background(), journal.Action{
		CycleID: "cycle-1",
		UserID:  "user-1",
		Outcome: journal.OutcomeRevoked,
	})
	if err != nil {
		t.Fatalf("RecordAction() failed: %v", err)
	}

	s := newTestServer(t, jrnl)
	handler := s.Handler()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journal/recent", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /journal/recent = %d, want 200", rec.Code)
	}

	var actions []journal.Action
	if err := json.Unmarshal(rec.Body.Bytes(), &actions); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if len(actions) != 1 || actions[0].UserID != "user-1" {
		t.Errorf("actions = %+v, want one action for user-1", actions)
	}

	// Invalid limit is rejected.
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/journal/recent?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid limit = %d, want 400", rec.Code)
	}
}

// TestServer_StartShutdown tests the lifecycle.
func TestServer_StartShutdown(t *testing.T) {
	s := newTestServer(t, journal.Nop{})

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	if !s.IsRunning() {
		t.Error("server should be running after Start()")
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v after cancel, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}

	if s.IsRunning() {
		t.Error("server should not be running after shutdown")
	}
}
