// ABOUTME: Retry logic with exponential backoff for policy-service calls.
// ABOUTME: Provides RetryPolicy configuration and a Retry wrapper that respects error retryability.

package llm

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retry behavior for policy API calls.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts (not counting the initial call).
	MaxRetries int

	// BaseDelay is the delay before the first retry.
	BaseDelay time.Duration

	// MaxDelay is the upper bound on the delay between retries.
	MaxDelay time.Duration

	// BackoffMultiplier controls exponential growth of the delay between retries.
	BackoffMultiplier float64

	// Jitter randomizes the delay to avoid thundering herd problems.
	// Disabled by default so backoff timing stays deterministic and testable.
	Jitter bool

	// OnRetry is an optional callback invoked before each retry attempt.
	// It receives the error that triggered the retry, the attempt number
	// (0-indexed), and the delay applied before the next attempt.
	OnRetry func(err error, attempt int, delay time.Duration)
}

// DefaultRetryPolicy returns the retry policy the decision engine uses:
// 3 retries, 2s base delay, 60s max delay, 2x backoff, no jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         2 * time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// CalculateDelay computes the delay for a given retry attempt using
// exponential backoff, capped at MaxDelay. With Jitter enabled the delay
// is randomized between 0 and the calculated value.
func (p RetryPolicy) CalculateDelay(attempt int) time.Duration {
	delayFloat := float64(p.BaseDelay) * math.Pow(p.BackoffMultiplier, float64(attempt))

	if delayFloat > float64(p.MaxDelay) {
		delayFloat = float64(p.MaxDelay)
	}

	delay := time.Duration(delayFloat)

	if p.Jitter {
		delay = time.Duration(rand.Int64N(int64(delay) + 1))
	}

	return delay
}

// ShouldRetry reports whether the operation should be retried given the
// error and the current attempt number. Only errors classified as
// retryable (rate limiting, server unavailability) qualify.
func (p RetryPolicy) ShouldRetry(err error, attempt int) bool {
	if err == nil {
		return false
	}
	if attempt >= p.MaxRetries {
		return false
	}
	return IsRetryable(err)
}

// Retry executes fn with the given policy. Retry state lives in this loop's
// locals: an attempt counter and a computed delay, discarded when the call
// resolves. If the error carries a retry-after hint, that value is used as
// the minimum delay. The context cancels retries early.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	for attempt := 0; ; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !policy.ShouldRetry(lastErr, attempt) {
			return lastErr
		}

		delay := policy.CalculateDelay(attempt)
		if hint, ok := RetryAfterHint(lastErr); ok {
			if hinted := time.Duration(hint * float64(time.Second)); hinted > delay {
				delay = hinted
			}
		}

		if policy.OnRetry != nil {
			policy.OnRetry(lastErr, attempt, delay)
		}

		select {
		case <-ctx.Done():
			return lastErr
		case <-time.After(delay):
		}
	}
}
