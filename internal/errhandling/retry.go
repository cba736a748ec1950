// Package errhandling provides retry configuration and mechanism for the
// dataset reload watcher. This file defines retry configuration validation
// and delay calculation with exponential backoff.
package errhandling

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Default retry configuration values
const (
	DefaultMaxAttempts       = 3
	DefaultDelayMs           = 1000
	DefaultBackoffMultiplier = 2.0
	DefaultMaxDelayMs        = 30000
	MaxRetryAttempts         = 10
	MinBackoffMultiplier     = 1.0
	MaxBackoffMultiplier     = 10.0
)

// RetryConfig holds retry configuration for dataset reloads.
// Only errors classified as retryable (CategoryIO) are retried; a malformed
// dataset stays malformed no matter how often it is re-read.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the first).
	// Default: 3, Max: 10
	MaxAttempts int

	// DelayMs is the initial delay between attempts in milliseconds.
	// Default: 1000
	DelayMs int

	// BackoffMultiplier is the multiplier for exponential backoff.
	// Default: 2.0, Min: 1.0, Max: 10.0
	BackoffMultiplier float64

	// MaxDelayMs is the maximum delay between attempts in milliseconds.
	// Default: 30000
	MaxDelayMs int
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       DefaultMaxAttempts,
		DelayMs:           DefaultDelayMs,
		BackoffMultiplier: DefaultBackoffMultiplier,
		MaxDelayMs:        DefaultMaxDelayMs,
	}
}

// Validate checks the configuration and returns an error describing the
// first violated bound.
func (c RetryConfig) Validate() error {
	if c.MaxAttempts < 1 || c.MaxAttempts > MaxRetryAttempts {
		return fmt.Errorf("maxAttempts must be between 1 and %d, got %d", MaxRetryAttempts, c.MaxAttempts)
	}
	if c.DelayMs < 0 {
		return fmt.Errorf("delayMs must be >= 0, got %d", c.DelayMs)
	}
	if c.BackoffMultiplier < MinBackoffMultiplier || c.BackoffMultiplier > MaxBackoffMultiplier {
		return fmt.Errorf("backoffMultiplier must be between %.1f and %.1f, got %.1f",
			MinBackoffMultiplier, MaxBackoffMultiplier, c.BackoffMultiplier)
	}
	if c.MaxDelayMs < c.DelayMs {
		return fmt.Errorf("maxDelayMs (%d) must be >= delayMs (%d)", c.MaxDelayMs, c.DelayMs)
	}
	return nil
}

// DelayForAttempt returns the backoff delay before the given retry attempt
// (attempt 1 is the first retry). The delay grows by BackoffMultiplier per
// attempt and is capped at MaxDelayMs.
func (c RetryConfig) DelayForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delayMs := float64(c.DelayMs) * math.Pow(c.BackoffMultiplier, float64(attempt-1))
	if delayMs > float64(c.MaxDelayMs) {
		delayMs = float64(c.MaxDelayMs)
	}
	return time.Duration(delayMs) * time.Millisecond
}

// Do runs op, retrying retryable failures per the configuration.
// Non-retryable errors return immediately. The context bounds the whole
// operation including backoff sleeps.
func (c RetryConfig) Do(ctx context.Context, op func() error) error {
	if err := c.Validate(); err != nil {
		return err
	}

	var lastErr error
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == c.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.DelayForAttempt(attempt)):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", c.MaxAttempts, lastErr)
}
