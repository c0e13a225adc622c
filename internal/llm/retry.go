package llm

import (
	"context"
	"fmt"
	"time"
)

const maxBackoff = 8 * time.Second

// retry runs fn up to attempts times, doubling the delay between tries.
// Errors rejected by Retryable end the loop immediately.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, onFailure func(attempt int, err error), fn func() (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	delay := backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 && delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, ctx.Err()
			case <-timer.C:
			}
			delay *= 2
			if delay > maxBackoff {
				delay = maxBackoff
			}
		}

		value, err := fn()
		if err == nil {
			return value, nil
		}
		lastErr = err
		if onFailure != nil {
			onFailure(attempt, err)
		}
		if !Retryable(err) || ctx.Err() != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("after %d attempts: %w", attempts, lastErr)
}
