package resilience

import (
	"context"
	"time"
)

// LinearBackoff returns base*(attempt+1).
func LinearBackoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(attempt+1) * base
}

// Wait blocks for d or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
