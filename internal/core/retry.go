package core

import (
	"context"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
)

const defaultRetryAttempts = 3
const defaultRetryBaseDelay = time.Second
const defaultRetryMaxDelay = 8 * time.Second

// RetryPolicy retries an operation with exponential backoff and jitter.
// Classify decides whether an error is worth another attempt; anything it
// rejects is returned immediately.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Classify    func(error) bool
}

func NewRetryPolicy(attempts int, baseDelayMs int) RetryPolicy {
	policy := RetryPolicy{
		MaxAttempts: attempts,
		BaseDelay:   time.Duration(baseDelayMs) * time.Millisecond,
		MaxDelay:    defaultRetryMaxDelay,
		Classify:    IsTransient,
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaultRetryAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = defaultRetryBaseDelay
	}
	return policy
}

// Do runs op until it succeeds, fails terminally, or the attempt budget is
// spent. Backoff sleeps respect context cancellation.
func (p RetryPolicy) Do(ctx context.Context, op func() error) error {
	classify := p.Classify
	if classify == nil {
		classify = IsTransient
	}
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeCanceled).
				WithMsg("operation canceled").
				WithCause(err)
		}
		err := op()
		if err == nil {
			return nil
		}
		lastErr = err
		if !classify(err) || attempt == p.MaxAttempts-1 {
			return err
		}
		if err := sleepContext(ctx, p.delay(attempt)); err != nil {
			return err
		}
	}
	return lastErr
}

func (p RetryPolicy) delay(attempt int) time.Duration {
	delay := p.BaseDelay * time.Duration(1<<attempt)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	jitter := time.Duration(time.Now().UnixNano() % int64(delay/2+1))
	return delay + jitter
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return errbuilder.New().
			WithCode(errbuilder.CodeCanceled).
			WithMsg("operation canceled").
			WithCause(ctx.Err())
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether an error is a temporary failure: network
// blips, 5xx responses, and integrity mismatches that a fresh attempt can
// resolve.
func IsTransient(err error) bool {
	switch errbuilder.CodeOf(err) {
	case errbuilder.CodeUnavailable, errbuilder.CodeDataLoss:
		return true
	default:
		return false
	}
}
