package journal

import (
	"context"
	"time"
)

// Outcome classifies the result of a single revocation attempt.
type Outcome string

const (
	// OutcomeRevoked means the app was removed and the record deleted.
	OutcomeRevoked Outcome = "revoked"

	// OutcomeFailed means the revocation call failed; the record was kept.
	OutcomeFailed Outcome = "failed"

	// OutcomeSkipped means the app was not installed for the user, so
	// only the record was deleted.
	OutcomeSkipped Outcome = "skipped"
)

// Action is one journal row describing a revocation attempt.
type Action struct {
	// ID is the row identifier, assigned on insert.
	ID int64 `json:"id"`

	// CycleID groups actions from the same sweep cycle.
	CycleID string `json:"cycle_id"`

	// UserID is the user the action targeted.
	UserID string `json:"user_id"`

	// InstalledAppID is the per-user installation that was removed,
	// empty when the app was not installed.
	InstalledAppID string `json:"installed_app_id,omitempty"`

	// Outcome is the result of the attempt.
	Outcome Outcome `json:"outcome"`

	// Detail carries the error message for failed outcomes.
	Detail string `json:"detail,omitempty"`

	// RecordedAt is when the action was journaled, in UTC.
	RecordedAt time.Time `json:"recorded_at"`
}

// CycleSummary aggregates a finished sweep cycle.
type CycleSummary struct {
	// CycleID identifies the cycle.
	CycleID string

	// Scanned is the number of records fetched from the store.
	Scanned int

	// Eligible is the number of records past the retention threshold.
	Eligible int

	// Revoked is the number of successful revocations.
	Revoked int

	// Failed is the number of failed revocations.
	Failed int

	// Duration is the wall-clock cycle duration.
	Duration time.Duration

	// StartedAt is when the cycle began, in UTC.
	StartedAt time.Time
}

// Journal persists sweep actions and cycle summaries.
type Journal interface {
	// RecordAction appends one revocation attempt.
	RecordAction(ctx context.Context, action Action) error

	// RecordCycle appends a finished cycle summary.
	RecordCycle(ctx context.Context, summary CycleSummary) error

	// RecentActions returns up to limit actions, newest first.
	RecentActions(ctx context.Context, limit int) ([]Action, error)

	// Prune deletes rows recorded before the cutoff and returns how
	// many were removed.
	Prune(ctx context.Context, olderThan time.Time) (int64, error)

	// Close releases the underlying storage.
	Close() error
}

// Nop is a Journal that discards everything. Used when journaling is
// disabled in configuration.
type Nop struct{}

func (Nop) RecordAction(ctx context.Context, action Action) error       { return nil }
func (Nop) RecordCycle(ctx context.Context, summary CycleSummary) error { return nil }
func (Nop) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	return nil, nil
}
func (Nop) Prune(ctx context.Context, olderThan time.Time) (int64, error) { return 0, nil }
func (Nop) Close() error                                                  { return nil }
