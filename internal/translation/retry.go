package translation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// RetryPolicy controls how often and how patiently a provider call is
// retried.
type RetryPolicy struct {
	// MaxRetries is the total number of attempts, including the first.
	MaxRetries int
	// Delay is the pause after the first failed attempt.
	Delay time.Duration
	// Multiplier grows the pause after every further failure.
	Multiplier float64
	// RequestTimeout bounds a single attempt (0 = no limit).
	RequestTimeout time.Duration
}

// DefaultRetryPolicy returns the policy used when nothing is configured
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:     3,
		Delay:          time.Second,
		Multiplier:     2,
		RequestTimeout: 60 * time.Second,
	}
}

// Validate checks the policy bounds
func (p RetryPolicy) Validate() error {
	if p.MaxRetries < 1 {
		return fmt.Errorf("max retries must be at least 1, got %d", p.MaxRetries)
	}
	if p.Delay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %v", p.Delay)
	}
	if p.Multiplier < 1 {
		return fmt.Errorf("retry multiplier must be at least 1, got %v", p.Multiplier)
	}
	if p.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative, got %v", p.RequestTimeout)
	}
	return nil
}

// Backoff returns the pause after failed attempt number attempt (1-based):
// Delay * Multiplier^(attempt-1).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.Delay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > float64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Retrier runs a call under a RetryPolicy.
//
// With a RequestTimeout each attempt runs in its own goroutine. A call that
// ignores its context keeps running after its attempt timed out, so the
// next attempt may overlap it and the backend can see more in-flight
// requests than the scheduler has workers.
type Retrier struct {
	policy RetryPolicy

	// OnRetry is called before sleeping after a failed attempt
	OnRetry func(attempt int, delay time.Duration, err error)

	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetrier creates a retrier for policy
func NewRetrier(policy RetryPolicy) *Retrier {
	return &Retrier{
		policy: policy,
		sleep:  sleepContext,
	}
}

// Policy returns the retrier's policy
func (r *Retrier) Policy() RetryPolicy {
	return r.policy
}

// Do runs call until it returns a non-empty result or the attempts are
// used up. A failed run returns a *ProviderError wrapping the last
// failure. Cancellation of ctx stops immediately and returns ctx.Err().
func (r *Retrier) Do(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	maxAttempts := r.policy.MaxRetries
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		text, err := r.attempt(ctx, call)
		if err == nil {
			return text, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		delay := r.policy.Backoff(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt, delay, err)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return "", err
		}
	}

	return "", &ProviderError{Attempts: maxAttempts, Err: lastErr}
}

// attempt runs one call under the request timeout. The call runs in its own
// goroutine so that a provider ignoring its context still cannot hold the
// worker past the timeout.
func (r *Retrier) attempt(ctx context.Context, call func(ctx context.Context) (string, error)) (string, error) {
	if r.policy.RequestTimeout <= 0 {
		text, err := call(ctx)
		if err != nil {
			return "", err
		}
		return CheckResult(text)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, r.policy.RequestTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		text, err := call(attemptCtx)
		done <- result{text, err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
				return "", &TimeoutError{Timeout: r.policy.RequestTimeout}
			}
			return "", res.err
		}
		return CheckResult(res.text)
	case <-attemptCtx.Done():
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", &TimeoutError{Timeout: r.policy.RequestTimeout}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
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
