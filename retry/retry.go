// Package retry provides exponential backoff retry logic with
// permanent/transient error classification.
package retry

import (
	"context"
	"errors"
	"time"
)

// Config holds retry configuration.
type Config struct {
	// MaxAttempts is the total number of attempts (first try included).
	MaxAttempts int
	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration
	// Multiplier is the exponential backoff multiplier.
	Multiplier float64
	// Sleep waits for the given duration or until the context is done.
	// Nil uses a timer; tests inject a recorder here.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultConfig returns the acquisition defaults: three attempts with
// 2s and 4s waits between them.
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		BaseDelay:   2 * time.Second,
		Multiplier:  2.0,
	}
}

// ErrorClassifier reports whether an error is worth retrying.
type ErrorClassifier func(error) bool

// Permanence is implemented by errors that know whether a retry can
// ever succeed.
type Permanence interface {
	Permanent() bool
}

// IsRetryable is the default classifier. Context errors and errors
// tagged permanent are not retried; everything else is.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var p Permanence
	if errors.As(err, &p) {
		return !p.Permanent()
	}
	return true
}

// Do executes fn with retry logic. Permanent errors abort immediately;
// exhausting all attempts returns the last transient error unchanged.
func Do(ctx context.Context, cfg Config, classifier ErrorClassifier, fn func(context.Context) error) error {
	if classifier == nil {
		classifier = IsRetryable
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepTimer
	}

	var lastErr error
	delay := cfg.BaseDelay

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err
		if !classifier(err) {
			return err
		}

		// Last attempt, don't sleep
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay = time.Duration(float64(delay) * cfg.Multiplier)
	}

	return lastErr
}

func sleepTimer(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
