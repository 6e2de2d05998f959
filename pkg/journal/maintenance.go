package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Maintainer prunes aged journal rows on a cron schedule.
type Maintainer struct {
	journal       Journal
	schedule      string
	retentionDays int
	cron          *cron.Cron
	logger        *slog.Logger
	mu            sync.Mutex
	running       bool
}

// NewMaintainer creates a journal maintainer. Rows older than
// retentionDays are deleted each time the schedule fires.
func NewMaintainer(journal Journal, schedule string, retentionDays int) *Maintainer {
	return &Maintainer{
		journal:       journal,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(),
		logger:        slog.Default().With("component", "journal.maintainer"),
	}
}

// Start begins scheduled pruning. An empty schedule disables maintenance.
func (m *Maintainer) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schedule == "" {
		m.logger.Info("maintenance schedule not configured, skipping")
		return nil
	}

	if _, err := cron.ParseStandard(m.schedule); err != nil {
		return fmt.Errorf("invalid maintenance schedule %q: %w", m.schedule, err)
	}

	if _, err := m.cron.AddFunc(m.schedule, func() {
		m.runPrune(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule maintenance: %w", err)
	}

	m.cron.Start()
	m.running = true

	m.logger.Info("journal maintenance started",
		"schedule", m.schedule,
		"retention_days", m.retentionDays,
	)

	go func() {
		<-ctx.Done()
		m.Stop()
	}()

	return nil
}

// runPrune executes one maintenance pass.
func (m *Maintainer) runPrune(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -m.retentionDays)

	deleted, err := m.journal.Prune(ctx, cutoff)
	if err != nil {
		m.logger.Error("journal maintenance failed", "error", err)
		return
	}

	if deleted > 0 {
		m.logger.Info("journal maintenance completed", "deleted_count", deleted)
	} else {
		m.logger.Debug("journal maintenance completed, nothing to prune")
	}
}

// Stop stops the scheduler and waits for a running job to finish.
func (m *Maintainer) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron != nil && m.running {
		ctx := m.cron.Stop()
		<-ctx.Done()
		m.running = false
		m.logger.Info("journal maintenance stopped")
	}
}

// IsRunning returns true if the maintainer is scheduled.
func (m *Maintainer) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.running
}

// NextRun returns the next scheduled maintenance time, if any.
func (m *Maintainer) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries := m.cron.Entries()
	if len(entries) == 0 {
		return nil
	}

	next := entries[0].Next
	return &next
}
