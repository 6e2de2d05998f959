package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestWatcher_ReloadsThreshold tests that rewriting the config file updates
// the retention policy.
func TestWatcher_ReloadsThreshold(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	write := func(days int) {
		t.Helper()
		content := fmt.Sprintf("sweeper:\n  retention_days: %d\n", days)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}

	write(30)

	policy := NewRetentionPolicy(30)
	watcher, err := NewWatcher(path, policy, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	reloaded := make(chan *Config, 4)
	watcher.OnReload = func(cfg *Config) { reloaded <- cfg }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := watcher.Watch(ctx); err != nil {
			t.Errorf("Watch() failed: %v", err)
		}
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(200 * time.Millisecond)

	write(7)

	select {
	case cfg := <-reloaded:
		if cfg.Sweeper.RetentionDays != 7 {
			t.Errorf("reloaded RetentionDays = %d, want 7", cfg.Sweeper.RetentionDays)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}

	if got := policy.RetentionDays(); got != 7 {
		t.Errorf("policy RetentionDays() = %d, want 7", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancellation")
	}
}

// TestWatcher_BadReloadKeepsPreviousValue tests that an invalid rewrite
// leaves the threshold untouched.
func TestWatcher_BadReloadKeepsPreviousValue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(path, []byte("sweeper:\n  retention_days: 30\n"), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	policy := NewRetentionPolicy(30)
	watcher, err := NewWatcher(path, policy, nil)
	if err != nil {
		t.Fatalf("NewWatcher() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = watcher.Watch(ctx) }()

	time.Sleep(200 * time.Millisecond)

	// Negative threshold fails validation; the reload must be rejected.
	if err := os.WriteFile(path, []byte("sweeper:\n  retention_days: -5\n"), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	time.Sleep(500 * time.Millisecond)

	if got := policy.RetentionDays(); got != 30 {
		t.Errorf("policy RetentionDays() = %d, want unchanged 30", got)
	}
}

// TestDebouncer_CollapsesBursts tests that rapid triggers produce a single
// callback.
func TestDebouncer_CollapsesBursts(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	fired := make(chan struct{}, 10)
	for i := 0; i < 5; i++ {
		d.Trigger(func() { fired <- struct{}{} })
	}

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}

	select {
	case <-fired:
		t.Error("debouncer fired more than once for a single burst")
	case <-time.After(150 * time.Millisecond):
	}
}
