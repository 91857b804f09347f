package integration

import (
	"context"
	"time"
)

// RetryPolicy defines how transient fetch failures are retried.
// It is constant configuration, not runtime state: backoff behavior is
// defined once here instead of ad-hoc sleeps at call sites.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first
	MaxAttempts int
	// BackoffSchedule holds the sleep before each retry. Attempt n sleeps
	// BackoffSchedule[n-1]; the index clamps at the last entry when
	// attempts exceed the schedule length.
	BackoffSchedule []time.Duration
}

// DefaultRetryPolicy returns the retry policy used when none is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BackoffSchedule: []time.Duration{
			1 * time.Second,
			3 * time.Second,
			10 * time.Second,
		},
	}
}

// Validate checks the policy is usable
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return ErrPermanent
	}
	if len(p.BackoffSchedule) == 0 {
		return ErrPermanent
	}
	return nil
}

// Backoff returns the sleep duration before retry number retry (1-based)
func (p RetryPolicy) Backoff(retry int) time.Duration {
	if len(p.BackoffSchedule) == 0 {
		return 0
	}
	idx := retry - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.BackoffSchedule) {
		idx = len(p.BackoffSchedule) - 1
	}
	return p.BackoffSchedule[idx]
}

// Sleep blocks for d or until ctx is cancelled, so a retry sleep never
// outlives a scheduler stop. Returns ctx.Err() when interrupted.
func Sleep(ctx context.Context, d time.Duration) error {
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
