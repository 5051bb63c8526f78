// Package retry provides a bounded retry loop with a fixed interval between
// attempts. Exhausting the attempt budget is reported as an ExhaustedError
// rather than the last attempt's error alone, so callers can distinguish a
// timeout from an ordinary failure.
package retry

import (
	"context"
	"fmt"
	"time"
)

// ExhaustedError is returned when all attempts have failed.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	if e.LastErr == nil {
		return fmt.Sprintf("gave up after %d attempts", e.Attempts)
	}
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Do runs op up to attempts times, sleeping interval between failed attempts.
// It returns nil as soon as op succeeds, the context error if the context is
// cancelled while waiting, or an *ExhaustedError once the budget is spent.
func Do(ctx context.Context, attempts int, interval time.Duration, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}

	return &ExhaustedError{Attempts: attempts, LastErr: lastErr}
}
