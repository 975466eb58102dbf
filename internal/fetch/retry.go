package fetch

import (
	"context"
	"time"
)

// RetryConfig holds retry configuration.
type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

// SingleRetryConfig returns the standard pipeline retry policy: one
// original attempt plus at most one retry after a short backoff.
func SingleRetryConfig(delay time.Duration) RetryConfig {
	if delay <= 0 {
		delay = 2 * time.Second
	}
	return RetryConfig{
		MaxAttempts: 2,
		Delay:       delay,
	}
}

// RetryWithCheck executes a function with retry, using shouldRetry to
// decide whether an error belongs to the retryable class.
func RetryWithCheck[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	var lastErr error
	var zero T

	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if !shouldRetry(err) {
			break
		}

		// Don't wait after the last attempt
		if attempt == cfg.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(cfg.Delay):
		}
	}

	return zero, lastErr
}
