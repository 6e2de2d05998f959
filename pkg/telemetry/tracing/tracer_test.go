package tracing

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestNew tests tracer construction.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:   "disabled",
			config: Config{Enabled: false},
		},
		{
			name: "enabled with defaults",
			config: Config{
				Enabled:  true,
				Insecure: true,
			},
		},
		{
			name: "enabled with ratio",
			config: Config{
				Enabled:     true,
				Endpoint:    "localhost:4317",
				SampleRatio: 0.25,
				Insecure:    true,
				Timeout:     time.Second,
			},
		},
		{
			name: "ratio out of range",
			config: Config{
				Enabled:     true,
				SampleRatio: 1.5,
				Insecure:    true,
			},
			wantErr: true,
		},
		{
			name: "negative ratio",
			config: Config{
				Enabled:     true,
				SampleRatio: -0.5,
				Insecure:    true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			if tracer.Enabled() != tt.config.Enabled {
				t.Errorf("Enabled() = %v, want %v", tracer.Enabled(), tt.config.Enabled)
			}
			if err := tracer.Shutdown(context.Background()); err != nil {
				t.Errorf("Shutdown() failed: %v", err)
			}
		})
	}
}

// TestNewNop tests that the nop tracer hands out working spans.
func TestNewNop(t *testing.T) {
	tracer := NewNop()
	if tracer.Enabled() {
		t.Error("NewNop() tracer should be disabled")
	}

	ctx, span := tracer.Start(context.Background(), "cycle")
	if span == nil {
		t.Fatal("Start() returned nil span")
	}

	_, child := tracer.Start(ctx, "revoke")
	SetStatus(child, errors.New("removal failed"))
	child.End()

	SetStatus(span, nil)
	span.End()

	if err := tracer.Shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown() failed: %v", err)
	}
}

// TestTraceID tests trace ID extraction from the context.
func TestTraceID(t *testing.T) {
	if got := TraceID(context.Background()); got != "" {
		t.Errorf("TraceID() = %q without a span, want empty", got)
	}

	tracer := NewNop()
	ctx, span := tracer.Start(context.Background(), "cycle")
	defer span.End()

	// Noop spans carry no valid span context.
	if got := TraceID(ctx); got != "" {
		t.Errorf("TraceID() = %q for a noop span, want empty", got)
	}
}
