package sweeper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"chatops-hq/callisto/pkg/config"
	"chatops-hq/callisto/pkg/directory"
	"chatops-hq/callisto/pkg/graph"
	"chatops-hq/callisto/pkg/identity"
	"chatops-hq/callisto/pkg/journal"
	"chatops-hq/callisto/pkg/telemetry/metrics"
	"chatops-hq/callisto/pkg/telemetry/tracing"
)

// GraphClient is the subset of the directory API the sweeper needs.
type GraphClient interface {
	// InstalledAppID resolves the per-user installation ID of the app.
	InstalledAppID(ctx context.Context, token, userID string) (string, error)

	// RemoveInstalledApp uninstalls the app from the user's scope.
	RemoveInstalledApp(ctx context.Context, token, userID, installedAppID string) error
}

// Config contains the sweeper's dependencies and settings.
type Config struct {
	// Tokens acquires an application token at the start of each cycle.
	Tokens identity.TokenSource

	// Store is the user record store.
	Store directory.Store

	// Graph performs app installation lookups and removals.
	Graph GraphClient

	// Policy provides the currently effective retention threshold.
	Policy *config.RetentionPolicy

	// Journal records revocation actions. Optional; nil disables it.
	Journal journal.Journal

	// Metrics records cycle outcomes. Optional; nil disables it.
	Metrics *metrics.Collector

	// Tracer records spans per cycle and per revocation. Optional; nil
	// means noop spans.
	Tracer *tracing.Tracer

	// Interval is the sleep between cycles.
	// Default: 5s
	Interval time.Duration

	// Role selects which records are swept.
	// Default: directory.RoleNewHire
	Role string

	// DryRun evaluates eligibility without revoking or deleting.
	DryRun bool

	// Now overrides the clock. Intended for tests.
	Now func() time.Time
}

// CycleResult summarizes one sweep cycle.
type CycleResult struct {
	// CycleID identifies the cycle in logs and the journal.
	CycleID string

	// Scanned is how many records the store returned.
	Scanned int

	// Eligible is how many records were past the threshold.
	Eligible int

	// Revoked is how many revocations succeeded.
	Revoked int

	// Failed is how many revocations failed before the loop aborted.
	Failed int

	// Deleted is how many records were removed from the store.
	Deleted int

	// Duration is the wall-clock cycle duration.
	Duration time.Duration
}

// Sweeper runs the retention sweep loop.
type Sweeper struct {
	tokens   identity.TokenSource
	store    directory.Store
	graph    GraphClient
	policy   *config.RetentionPolicy
	journal  journal.Journal
	metrics  *metrics.Collector
	tracer   *tracing.Tracer
	interval time.Duration
	role     string
	dryRun   bool
	now      func() time.Time
	logger   *slog.Logger
}

// New creates a sweeper. Tokens, Store, Graph, and Policy are required.
func New(cfg Config) (*Sweeper, error) {
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("token source is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Graph == nil {
		return nil, fmt.Errorf("graph client is required")
	}
	if cfg.Policy == nil {
		return nil, fmt.Errorf("retention policy is required")
	}

	if cfg.Journal == nil {
		cfg.Journal = journal.Nop{}
	}
	if cfg.Tracer == nil {
		cfg.Tracer = tracing.NewNop()
	}
	if cfg.Interval == 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.Role == "" {
		cfg.Role = directory.RoleNewHire
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Sweeper{
		tokens:   cfg.Tokens,
		store:    cfg.Store,
		graph:    cfg.Graph,
		policy:   cfg.Policy,
		journal:  cfg.Journal,
		metrics:  cfg.Metrics,
		tracer:   cfg.Tracer,
		interval: cfg.Interval,
		role:     cfg.Role,
		dryRun:   cfg.DryRun,
		now:      cfg.Now,
		logger:   slog.Default().With("component", "sweeper"),
	}, nil
}

// Run executes sweep cycles until the context is cancelled. Cycle
// failures are logged and never stop the loop.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("sweeper started",
		"interval", s.interval,
		"role", s.role,
		"retention_days", s.policy.RetentionDays(),
		"dry_run", s.dryRun,
	)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := s.SweepOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.logger.Info("sweeper stopped", "reason", err)
				return err
			}
			s.logger.Error("sweep cycle failed", "error", err)
		}

		timer.Reset(s.interval)
	}
}

// SweepOnce runs a single sweep cycle under its own span. It never
// panics the loop: all errors are returned to the caller, which
// contains them.
func (s *Sweeper) SweepOnce(ctx context.Context) (CycleResult, error) {
	ctx, span := s.tracer.Start(ctx, "sweeper.cycle")
	defer span.End()

	result, err := s.sweepCycle(ctx)

	span.SetAttributes(
		attribute.String("cycle.id", result.CycleID),
		attribute.Int("cycle.scanned", result.Scanned),
		attribute.Int("cycle.eligible", result.Eligible),
		attribute.Int("cycle.revoked", result.Revoked),
		attribute.Int("cycle.failed", result.Failed),
	)
	tracing.SetStatus(span, err)

	return result, err
}

func (s *Sweeper) sweepCycle(ctx context.Context) (CycleResult, error) {
	start := time.Now()
	result := CycleResult{CycleID: uuid.NewString()}
	logger := s.logger.With("cycle_id", result.CycleID)

	thresholdDays := s.policy.RetentionDays()
	if s.metrics != nil {
		s.metrics.SetRetentionDays(thresholdDays)
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		s.finishCycle(ctx, &result, metrics.StatusError, start)
		return result, fmt.Errorf("failed to acquire token: %w", err)
	}

	records, err := s.store.ListByRole(ctx, s.role)
	if err != nil {
		s.finishCycle(ctx, &result, metrics.StatusError, start)
		return result, fmt.Errorf("failed to list records: %w", err)
	}
	result.Scanned = len(records)

	if len(records) == 0 {
		logger.Debug("no records to sweep")
		s.finishCycle(ctx, &result, metrics.StatusSkipped, start)
		return result, nil
	}

	// The clock is read once so every record in the cycle is judged
	// against the same instant.
	now := s.now()
	eligible := selectEligible(records, now, thresholdDays)
	result.Eligible = len(eligible)

	if len(eligible) == 0 {
		logger.Debug("no records past threshold",
			"scanned", result.Scanned,
			"retention_days", thresholdDays,
		)
		s.finishCycle(ctx, &result, metrics.StatusOK, start)
		return result, nil
	}

	logger.Info("records past threshold",
		"scanned", result.Scanned,
		"eligible", result.Eligible,
		"retention_days", thresholdDays,
	)

	if s.dryRun {
		for _, record := range eligible {
			logger.Info("dry run: would revoke",
				"user_id", record.ID,
				"installed_days", elapsedDays(now, record.InstalledAt),
			)
		}
		s.finishCycle(ctx, &result, metrics.StatusOK, start)
		return result, nil
	}

	deletable, loopErr := s.revokeAll(ctx, logger, &result, token, eligible)

	// Records whose revocation succeeded are deleted even when a later
	// record aborted the loop, so a re-run never revokes them twice.
	if len(deletable) > 0 {
		deleted, err := s.store.Delete(ctx, deletable)
		if err != nil {
			s.finishCycle(ctx, &result, metrics.StatusError, start)
			if loopErr != nil {
				return result, errors.Join(loopErr, fmt.Errorf("failed to delete records: %w", err))
			}
			return result, fmt.Errorf("failed to delete records: %w", err)
		}
		result.Deleted = int(deleted)
	}

	status := metrics.StatusOK
	if loopErr != nil {
		status = metrics.StatusError
	}
	s.finishCycle(ctx, &result, status, start)

	logger.Info("sweep cycle complete",
		"revoked", result.Revoked,
		"failed", result.Failed,
		"deleted", result.Deleted,
		"duration", result.Duration,
	)

	return result, loopErr
}

// revokeAll walks the eligible records in store order and revokes the
// app from each user. The first hard failure aborts the remainder of
// the loop; already revoked records are still returned for deletion.
func (s *Sweeper) revokeAll(ctx context.Context, logger *slog.Logger, result *CycleResult, token identity.AccessToken, eligible []directory.UserRecord) ([]string, error) {
	var deletable []string

	for _, record := range eligible {
		ok, err := s.revokeOne(ctx, logger, result, token, record)
		if ok {
			deletable = append(deletable, record.ID)
		}
		if err != nil {
			return deletable, err
		}
	}

	return deletable, nil
}

// revokeOne revokes the app from a single user under its own span. It
// reports whether the record can be deleted; a non-nil error is a hard
// failure that aborts the cycle's revocation loop.
func (s *Sweeper) revokeOne(ctx context.Context, logger *slog.Logger, result *CycleResult, token identity.AccessToken, record directory.UserRecord) (deletable bool, err error) {
	ctx, span := s.tracer.Start(ctx, "sweeper.revoke",
		trace.WithAttributes(attribute.String("user.id", record.ID)))
	defer func() {
		tracing.SetStatus(span, err)
		span.End()
	}()

	installedAppID, err := s.graph.InstalledAppID(ctx, token.Value, record.ID)
	if err != nil {
		var notFound *graph.NotFoundError
		if errors.As(err, &notFound) {
			// Nothing to revoke: the app is gone or the user no longer
			// exists. The record is stale either way.
			logger.Info("app not installed, deleting record only",
				"user_id", record.ID,
				"resource", notFound.Resource,
			)
			s.recordAction(ctx, journal.Action{
				CycleID: result.CycleID,
				UserID:  record.ID,
				Outcome: journal.OutcomeSkipped,
			})
			return true, nil
		}

		result.Failed++
		s.recordAction(ctx, journal.Action{
			CycleID: result.CycleID,
			UserID:  record.ID,
			Outcome: journal.OutcomeFailed,
			Detail:  err.Error(),
		})
		return false, fmt.Errorf("failed to resolve installation for user %s: %w", record.ID, err)
	}

	if err := s.graph.RemoveInstalledApp(ctx, token.Value, record.ID, installedAppID); err != nil {
		var notFound *graph.NotFoundError
		if errors.As(err, &notFound) {
			// The installation vanished between lookup and removal.
			logger.Info("installation already gone, deleting record only",
				"user_id", record.ID,
				"installed_app_id", installedAppID,
			)
			s.recordAction(ctx, journal.Action{
				CycleID:        result.CycleID,
				UserID:         record.ID,
				InstalledAppID: installedAppID,
				Outcome:        journal.OutcomeSkipped,
			})
			return true, nil
		}

		result.Failed++
		s.recordAction(ctx, journal.Action{
			CycleID:        result.CycleID,
			UserID:         record.ID,
			InstalledAppID: installedAppID,
			Outcome:        journal.OutcomeFailed,
			Detail:         err.Error(),
		})
		return false, fmt.Errorf("failed to remove app for user %s: %w", record.ID, err)
	}

	result.Revoked++
	logger.Info("app revoked",
		"user_id", record.ID,
		"installed_app_id", installedAppID,
	)
	s.recordAction(ctx, journal.Action{
		CycleID:        result.CycleID,
		UserID:         record.ID,
		InstalledAppID: installedAppID,
		Outcome:        journal.OutcomeRevoked,
	})
	return true, nil
}

// recordAction journals one action. Journal failures are logged and
// never affect the cycle.
func (s *Sweeper) recordAction(ctx context.Context, action journal.Action) {
	if err := s.journal.RecordAction(ctx, action); err != nil {
		s.logger.Warn("failed to journal action",
			"user_id", action.UserID,
			"error", err,
		)
	}
}

// finishCycle stamps the duration and flushes metrics and the journal
// summary.
func (s *Sweeper) finishCycle(ctx context.Context, result *CycleResult, status string, start time.Time) {
	result.Duration = time.Since(start)

	if s.metrics != nil {
		s.metrics.RecordCycle(status, result.Duration,
			result.Scanned, result.Eligible, result.Revoked, result.Failed)
	}

	err := s.journal.RecordCycle(ctx, journal.CycleSummary{
		CycleID:   result.CycleID,
		Scanned:   result.Scanned,
		Eligible:  result.Eligible,
		Revoked:   result.Revoked,
		Failed:    result.Failed,
		Duration:  result.Duration,
		StartedAt: start,
	})
	if err != nil {
		s.logger.Warn("failed to journal cycle", "cycle_id", result.CycleID, "error", err)
	}
}
