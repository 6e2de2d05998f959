package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteJournal implements Journal backed by a SQLite database.
// The journal is append-mostly, so a single writer with WAL mode is
// sufficient even with the sweeper and the maintainer sharing it.
type SQLiteJournal struct {
	db        *sql.DB
	mu        sync.Mutex
	closeOnce sync.Once

	actionStmt *sql.Stmt
	cycleStmt  *sql.Stmt
	recentStmt *sql.Stmt
	pruneStmt  *sql.Stmt
}

// SQLiteJournalConfig configures the SQLite journal.
type SQLiteJournalConfig struct {
	// Path is the path to the journal database file.
	Path string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

const journalSchema = `
CREATE TABLE IF NOT EXISTS actions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	cycle_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	installed_app_id TEXT NOT NULL DEFAULT '',
	outcome TEXT NOT NULL,
	detail TEXT NOT NULL DEFAULT '',
	recorded_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
	cycle_id TEXT PRIMARY KEY,
	scanned INTEGER NOT NULL,
	eligible INTEGER NOT NULL,
	revoked INTEGER NOT NULL,
	failed INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	started_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_actions_recorded_at ON actions(recorded_at);
CREATE INDEX IF NOT EXISTS idx_actions_cycle ON actions(cycle_id);
`

// NewSQLiteJournal opens or creates a journal database at the given path.
func NewSQLiteJournal(cfg SQLiteJournalConfig) (*SQLiteJournal, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.Path, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	// SQLite only supports a single writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	j := &SQLiteJournal{db: db}

	if _, err := db.Exec(journalSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize journal schema: %w", err)
	}

	if err := j.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return j, nil
}

func (j *SQLiteJournal) prepareStatements() error {
	var err error

	j.actionStmt, err = j.db.Prepare(`
		INSERT INTO actions (cycle_id, user_id, installed_app_id, outcome, detail, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare action statement: %w", err)
	}

	j.cycleStmt, err = j.db.Prepare(`
		INSERT INTO cycles (cycle_id, scanned, eligible, revoked, failed, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (cycle_id) DO UPDATE SET
			scanned = excluded.scanned,
			eligible = excluded.eligible,
			revoked = excluded.revoked,
			failed = excluded.failed,
			duration_ms = excluded.duration_ms
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare cycle statement: %w", err)
	}

	j.recentStmt, err = j.db.Prepare(`
		SELECT id, cycle_id, user_id, installed_app_id, outcome, detail, recorded_at
		FROM actions
		ORDER BY id DESC
		LIMIT ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare recent statement: %w", err)
	}

	j.pruneStmt, err = j.db.Prepare(`
		DELETE FROM actions WHERE recorded_at < ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// RecordAction appends one revocation attempt to the journal.
func (j *SQLiteJournal) RecordAction(ctx context.Context, action Action) error {
	if action.CycleID == "" {
		return fmt.Errorf("cycle ID cannot be empty")
	}
	if action.UserID == "" {
		return fmt.Errorf("user ID cannot be empty")
	}

	recordedAt := action.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.actionStmt.ExecContext(ctx,
		action.CycleID,
		action.UserID,
		action.InstalledAppID,
		string(action.Outcome),
		action.Detail,
		recordedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}

	return nil
}

// RecordCycle appends a finished cycle summary.
func (j *SQLiteJournal) RecordCycle(ctx context.Context, summary CycleSummary) error {
	if summary.CycleID == "" {
		return fmt.Errorf("cycle ID cannot be empty")
	}

	startedAt := summary.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.cycleStmt.ExecContext(ctx,
		summary.CycleID,
		summary.Scanned,
		summary.Eligible,
		summary.Revoked,
		summary.Failed,
		summary.Duration.Milliseconds(),
		startedAt.UTC().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to record cycle: %w", err)
	}

	return nil
}

// RecentActions returns up to limit actions, newest first.
func (j *SQLiteJournal) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 100
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	rows, err := j.recentStmt.QueryContext(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var actions []Action
	for rows.Next() {
		var (
			action     Action
			outcome    string
			recordedAt int64
		)
		if err := rows.Scan(&action.ID, &action.CycleID, &action.UserID,
			&action.InstalledAppID, &outcome, &action.Detail, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		action.Outcome = Outcome(outcome)
		action.RecordedAt = time.Unix(recordedAt, 0).UTC()
		actions = append(actions, action)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating actions: %w", err)
	}

	return actions, nil
}

// Prune deletes actions and cycle summaries recorded before the cutoff
// and vacuums the database when anything was removed.
func (j *SQLiteJournal) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	result, err := j.pruneStmt.ExecContext(ctx, olderThan.UTC().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune actions: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if _, err := j.db.ExecContext(ctx,
		`DELETE FROM cycles WHERE started_at < ?`, olderThan.UTC().Unix()); err != nil {
		return deleted, fmt.Errorf("failed to prune cycles: %w", err)
	}

	if deleted > 0 {
		if _, err := j.db.ExecContext(ctx, "VACUUM"); err != nil {
			return deleted, fmt.Errorf("failed to vacuum journal: %w", err)
		}
	}

	return deleted, nil
}

// Close releases the journal database. Close is idempotent.
func (j *SQLiteJournal) Close() error {
	var closeErr error

	j.closeOnce.Do(func() {
		for _, stmt := range []*sql.Stmt{j.actionStmt, j.cycleStmt, j.recentStmt, j.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}
		if j.db != nil {
			_, _ = j.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
			closeErr = j.db.Close()
		}
	})

	return closeErr
}
