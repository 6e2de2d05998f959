package journal

import (
	"context"
	"testing"
	"time"
)

// TestMaintainer_EmptySchedule tests that no schedule means no-op.
func TestMaintainer_EmptySchedule(t *testing.T) {
	m := NewMaintainer(Nop{}, "", 90)

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if m.IsRunning() {
		t.Error("maintainer should not run without a schedule")
	}
}

// TestMaintainer_InvalidSchedule tests cron validation.
func TestMaintainer_InvalidSchedule(t *testing.T) {
	m := NewMaintainer(Nop{}, "not a cron line", 90)

	if err := m.Start(context.Background()); err == nil {
		t.Fatal("Start() should reject an invalid schedule")
	}
}

// TestMaintainer_StartStop tests lifecycle and NextRun.
func TestMaintainer_StartStop(t *testing.T) {
	m := NewMaintainer(newTestJournal(t), "0 3 * * *", 90)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := m.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if !m.IsRunning() {
		t.Error("maintainer should be running after Start()")
	}

	next := m.NextRun()
	if next == nil || !next.After(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	m.Stop()
	if m.IsRunning() {
		t.Error("maintainer should be stopped after Stop()")
	}
}

// TestMaintainer_RunPrune tests one maintenance pass end to end.
func TestMaintainer_RunPrune(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	err := j.RecordAction(ctx, Action{
		CycleID:    "cycle-old",
		UserID:     "user-old",
		Outcome:    OutcomeRevoked,
		RecordedAt: time.Now().AddDate(0, 0, -200),
	})
	if err != nil {
		t.Fatalf("RecordAction() failed: %v", err)
	}

	m := NewMaintainer(j, "0 3 * * *", 90)
	m.runPrune(ctx)

	actions, err := j.RecentActions(ctx, 10)
	if err != nil {
		t.Fatalf("RecentActions() failed: %v", err)
	}
	if len(actions) != 0 {
		t.Errorf("len(actions) = %d after prune, want 0", len(actions))
	}
}
