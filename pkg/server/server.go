package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"chatops-hq/callisto/pkg/config"
	"chatops-hq/callisto/pkg/journal"
	"chatops-hq/callisto/pkg/telemetry/health"
	"chatops-hq/callisto/pkg/telemetry/metrics"
)

// BuildInfo carries version metadata injected at build time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// Server is the operational HTTP server.
type Server struct {
	opsConfig     config.OpsConfig
	metricsConfig config.MetricsConfig
	checker       *health.Checker
	collector     *metrics.Collector
	journal       journal.Journal
	build         BuildInfo
	logger        *slog.Logger

	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates an ops server. The collector and journal are optional.
func New(opsCfg config.OpsConfig, metricsCfg config.MetricsConfig, checker *health.Checker, collector *metrics.Collector, jrnl journal.Journal, build BuildInfo) *Server {
	if jrnl == nil {
		jrnl = journal.Nop{}
	}

	return &Server{
		opsConfig:     opsCfg,
		metricsConfig: metricsCfg,
		checker:       checker,
		collector:     collector,
		journal:       jrnl,
		build:         build,
		logger:        slog.Default().With("component", "server"),
	}
}

// Start starts the HTTP server and blocks until the context is
// cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:         s.opsConfig.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  s.opsConfig.ReadTimeout,
		WriteTimeout: s.opsConfig.WriteTimeout,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("ops server listening", "address", s.opsConfig.ListenAddress)

		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("ops server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown gracefully stops the server. It is idempotent.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		shutdownCtx, cancel := context.WithTimeout(ctx, s.opsConfig.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				shutdownErr = fmt.Errorf("ops server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("ops server stopped")
	})

	return shutdownErr
}

// IsRunning returns true while the server is serving.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler builds the ops route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	health.Register(mux, s.checker, s.build.Version, s.build.Commit, s.build.BuildTime)

	if s.collector != nil && s.metricsConfig.Enabled {
		path := s.metricsConfig.Path
		if path == "" {
			path = "/metrics"
		}
		mux.Handle(path, s.collector.Handler())
	}

	mux.HandleFunc("/journal/recent", s.recentJournalHandler)

	return mux
}

// recentJournalHandler serves the most recent journal actions.
// The limit query parameter caps the result (default 50, max 500).
func (s *Server) recentJournalHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}
	if limit > 500 {
		limit = 500
	}

	actions, err := s.journal.RecentActions(r.Context(), limit)
	if err != nil {
		s.logger.Error("failed to read journal", "error", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	if actions == nil {
		actions = []journal.Action{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(actions)
}
