// Package retry describes how often, and how patiently, a transient failure
// is retried.
package retry

import (
	"context"
	"math"
	"time"
)

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Zero means no limit.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt. Zero disables waiting.
	InitialDelay time.Duration

	// MaxDelay caps the wait between attempts. Zero means no cap.
	MaxDelay time.Duration

	// Multiplier grows the delay after every failed attempt. Values below 1
	// are treated as 1.
	Multiplier float64
}

// Default returns a bounded policy with exponential backoff.
func Default() Policy {
	return Policy{
		MaxAttempts:  16,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
	}
}

// Unbounded returns a policy that retries forever without waiting.
func Unbounded() Policy {
	return Policy{}
}

// Exhausted reports whether no attempt may follow the given 1-based attempt.
func (p Policy) Exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

// Delay returns the wait that follows the given failed 1-based attempt.
func (p Policy) Delay(attempt int) time.Duration {
	if p.InitialDelay <= 0 {
		return 0
	}
	if attempt <= 1 {
		return p.InitialDelay
	}
	mult := p.Multiplier
	if mult < 1.0 {
		mult = 1.0
	}
	delay := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	// float64(math.MaxInt64) rounds up to 2^63, which does not convert
	if delay >= math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(delay)
}

// Wait sleeps for d, or until ctx is done.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
