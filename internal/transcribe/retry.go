package transcribe

import (
	"context"
	"time"
)

// RetryConfig controls exponential backoff for transient API failures.
type RetryConfig struct {
	MaxRetries int           // Retries after the first attempt.
	BaseDelay  time.Duration // Delay before the first retry.
	MaxDelay   time.Duration // Delay ceiling.
}

// DefaultRetryConfig suits short per-snippet API calls: a few quick
// retries, never more than a handful of seconds in total.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
	}
}

// retryWithBackoff runs fn, retrying on errors that shouldRetry accepts.
// The delay doubles per attempt up to MaxDelay. Context cancellation
// aborts the wait immediately.
func retryWithBackoff[T any](ctx context.Context, cfg RetryConfig, shouldRetry func(error) bool, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	delay := cfg.BaseDelay
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !shouldRetry(err) {
			return zero, err
		}
	}
	return zero, lastErr
}
