package llm

import (
	"context"
	"time"
)

// SleepFunc waits for d or until the context is done. Injected so the retry
// driver can be tested with a fake clock.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock SleepFunc.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Policy is an explicit retry policy: total attempts, the wait before the
// first retry, and the factor applied to the wait after each retry.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the upstream free-tier guidance: 3 attempts with
// exponential backoff starting at one second.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// Do runs attempt up to p.MaxAttempts times. Only retryable failures
// (overload, transport) trigger another attempt; everything else returns
// immediately. After the final attempt the most recent concrete error is
// surfaced, never a generic retries-exceeded placeholder.
func (p Policy) Do(ctx context.Context, sleep SleepFunc, attempt func(context.Context) error) error {
	if sleep == nil {
		sleep = Sleep
	}

	delay := p.BaseDelay
	var last error
	for i := 0; i < p.MaxAttempts; i++ {
		if i > 0 {
			if err := sleep(ctx, delay); err != nil {
				return Normalize(err)
			}
			delay = time.Duration(float64(delay) * p.Multiplier)
		}

		last = attempt(ctx)
		if last == nil {
			return nil
		}
		if !IsRetryable(last) {
			return last
		}
	}
	return last
}
