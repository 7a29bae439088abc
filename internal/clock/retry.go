// Package clock provides context-aware waiting helpers.
package clock

import (
	"context"
	"fmt"
	"time"
)

// Retry calls fn until it succeeds, attempts run out or ctx is done. The delay
// between attempts starts at backoff and doubles up to maxBackoff.
func Retry(ctx context.Context, attempts int, backoff, maxBackoff time.Duration, fn func(context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			return fmt.Errorf("giving up after %d attempts: %w", attempts, err)
		}
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return fmt.Errorf("%w (last error: %v)", sleepErr, err)
		}
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
