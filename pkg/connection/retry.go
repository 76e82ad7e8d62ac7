package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned when every attempt failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// AttemptFunc is one try of a retried operation.
type AttemptFunc func(ctx context.Context) error

// Retry calls fn until it succeeds, attempts are used up, or ctx is done.
// It sleeps b.Next() between attempts and resets b on success. attempts
// below 1 means one attempt. A nil b uses the defaults.
//
// The last failure is returned wrapped with ErrRetriesExhausted. A
// cancelled context returns ctx.Err() wrapped with the last failure.
func Retry(ctx context.Context, b *Backoff, attempts int, fn AttemptFunc) error {
	if b == nil {
		b = NewBackoff()
	}
	if attempts < 1 {
		attempts = 1
	}

	var last error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return joinCause(err, last)
		}

		last = fn(ctx)
		if last == nil {
			b.Reset()
			return nil
		}
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(b.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return joinCause(ctx.Err(), last)
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, last)
}

func joinCause(ctxErr, last error) error {
	if last == nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %w", ctxErr, last)
}
