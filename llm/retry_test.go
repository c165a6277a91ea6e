// ABOUTME: Tests for retry policy delay calculation, retryability gating, and the Retry wrapper.
// ABOUTME: Verifies the exact d+2d+4d backoff schedule used for transient policy failures.

package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

func transientErr() error {
	return &ServerError{ProviderError: ProviderError{
		SDKError:  SDKError{Message: "anthropic: overloaded"},
		Retryable: true,
	}}
}

func permanentErr() error {
	return &AuthenticationError{ProviderError: ProviderError{
		SDKError: SDKError{Message: "anthropic: invalid api key"},
	}}
}

func TestDefaultRetryPolicy(t *testing.T) {
	p := DefaultRetryPolicy()

	if p.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", p.MaxRetries)
	}
	if p.BaseDelay != 2*time.Second {
		t.Errorf("BaseDelay = %v, want 2s", p.BaseDelay)
	}
	if p.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %f, want 2.0", p.BackoffMultiplier)
	}
	if p.Jitter {
		t.Error("Jitter should be disabled by default")
	}
}

func TestCalculateDelay(t *testing.T) {
	p := RetryPolicy{
		BaseDelay:         time.Second,
		MaxDelay:          60 * time.Second,
		BackoffMultiplier: 2.0,
	}

	tests := []struct {
		attempt   int
		wantDelay time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
	}

	for _, tt := range tests {
		if got := p.CalculateDelay(tt.attempt); got != tt.wantDelay {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.wantDelay)
		}
	}
}

func TestCalculateDelayRespectsMax(t *testing.T) {
	p := RetryPolicy{
		BaseDelay:         10 * time.Second,
		MaxDelay:          30 * time.Second,
		BackoffMultiplier: 3.0,
	}

	if got := p.CalculateDelay(2); got != 30*time.Second {
		t.Errorf("got %v, want 30s (capped at MaxDelay)", got)
	}
}

func TestShouldRetry(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3}

	if p.ShouldRetry(nil, 0) {
		t.Error("nil error should not retry")
	}
	if !p.ShouldRetry(transientErr(), 0) {
		t.Error("transient error should retry")
	}
	if p.ShouldRetry(transientErr(), 3) {
		t.Error("attempt at MaxRetries should not retry")
	}
	if p.ShouldRetry(permanentErr(), 0) {
		t.Error("permanent error should not retry")
	}
	if p.ShouldRetry(errors.New("plain"), 0) {
		t.Error("non-SDK error should not retry")
	}
}

func TestRetryBackoffSchedule(t *testing.T) {
	// 3 consecutive transient failures with base delay d must wait
	// d, 2d, 4d and then give up with no further attempt.
	base := 10 * time.Millisecond
	p := RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         base,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}

	var delays []time.Duration
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		delays = append(delays, delay)
	}

	calls := 0
	err := Retry(context.Background(), p, func() error {
		calls++
		return transientErr()
	})

	if err == nil {
		t.Fatal("expected error after exhausted retries")
	}
	if calls != 4 {
		t.Errorf("calls = %d, want 4 (initial + 3 retries)", calls)
	}
	want := []time.Duration{base, 2 * base, 4 * base}
	if len(delays) != len(want) {
		t.Fatalf("delays = %v, want %v", delays, want)
	}
	for i := range want {
		if delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, delays[i], want[i])
		}
	}
}

func TestRetryPermanentFailureNoRetry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy(), func() error {
		calls++
		return permanentErr()
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on permanent failure)", calls)
	}
}

func TestRetrySuccessAfterTransient(t *testing.T) {
	p := RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}

	calls := 0
	err := Retry(context.Background(), p, func() error {
		calls++
		if calls < 3 {
			return transientErr()
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := RetryPolicy{
		MaxRetries:        3,
		BaseDelay:         time.Hour,
		MaxDelay:          time.Hour,
		BackoffMultiplier: 2.0,
	}

	calls := 0
	err := Retry(ctx, p, func() error {
		calls++
		return transientErr()
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (cancelled before first backoff elapsed)", calls)
	}
}

func TestRetryHonorsRetryAfterHint(t *testing.T) {
	hint := 0.05 // 50ms, larger than the 1ms calculated delay
	rle := &RateLimitError{ProviderError: ProviderError{
		SDKError:   SDKError{Message: "rate limited"},
		Retryable:  true,
		RetryAfter: &hint,
	}}

	p := RetryPolicy{
		MaxRetries:        1,
		BaseDelay:         time.Millisecond,
		MaxDelay:          time.Second,
		BackoffMultiplier: 2.0,
	}

	var applied time.Duration
	p.OnRetry = func(err error, attempt int, delay time.Duration) {
		applied = delay
	}

	calls := 0
	_ = Retry(context.Background(), p, func() error {
		calls++
		return rle
	})

	if applied != 50*time.Millisecond {
		t.Errorf("applied delay = %v, want 50ms from retry-after hint", applied)
	}
}
