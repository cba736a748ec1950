package errhandling

import (
	"context"
	"errors"
	"testing"
	"time"
)

// TestRetryConfigValidate tests bound checks on the retry configuration.
func TestRetryConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     RetryConfig
		wantErr bool
	}{
		{name: "defaults", cfg: DefaultRetryConfig(), wantErr: false},
		{name: "zero attempts", cfg: RetryConfig{MaxAttempts: 0, DelayMs: 1, BackoffMultiplier: 2, MaxDelayMs: 10}, wantErr: true},
		{name: "too many attempts", cfg: RetryConfig{MaxAttempts: 11, DelayMs: 1, BackoffMultiplier: 2, MaxDelayMs: 10}, wantErr: true},
		{name: "negative delay", cfg: RetryConfig{MaxAttempts: 1, DelayMs: -1, BackoffMultiplier: 2, MaxDelayMs: 10}, wantErr: true},
		{name: "multiplier too small", cfg: RetryConfig{MaxAttempts: 1, DelayMs: 1, BackoffMultiplier: 0.5, MaxDelayMs: 10}, wantErr: true},
		{name: "max below initial", cfg: RetryConfig{MaxAttempts: 1, DelayMs: 100, BackoffMultiplier: 2, MaxDelayMs: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestDelayForAttempt tests exponential growth and capping.
func TestDelayForAttempt(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 5, DelayMs: 100, BackoffMultiplier: 2, MaxDelayMs: 350}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 3, want: 350 * time.Millisecond}, // capped
		{attempt: 4, want: 350 * time.Millisecond},
	}

	for _, tt := range tests {
		if got := cfg.DelayForAttempt(tt.attempt); got != tt.want {
			t.Errorf("DelayForAttempt(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

// TestDoRetriesRetryable tests that retryable failures are retried to success.
func TestDoRetriesRetryable(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, DelayMs: 1, BackoffMultiplier: 1, MaxDelayMs: 1}

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewIOError("LOAD_FAILED", "transient", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

// TestDoStopsOnNonRetryable tests that fatal errors are not retried.
func TestDoStopsOnNonRetryable(t *testing.T) {
	cfg := DefaultRetryConfig()

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		return NewSchemaError("BAD_ROW", "malformed record", nil)
	})
	if err == nil {
		t.Fatal("Do() should fail")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry of schema errors)", calls)
	}
}

// TestDoExhaustsAttempts tests the all-attempts-failed path.
func TestDoExhaustsAttempts(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 2, DelayMs: 1, BackoffMultiplier: 1, MaxDelayMs: 1}

	calls := 0
	err := cfg.Do(context.Background(), func() error {
		calls++
		return NewIOError("LOAD_FAILED", "still broken", nil)
	})
	if err == nil {
		t.Fatal("Do() should fail after exhausting attempts")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	var classified *ClassifiedError
	if !errors.As(err, &classified) {
		t.Error("final error should wrap the classified error")
	}
}
