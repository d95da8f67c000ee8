package translation

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTranslationCache(t *testing.T) {
	cache := NewCache()

	// Test empty cache
	_, found := cache.Get("你好", "en")
	if found {
		t.Error("Expected not found in empty cache")
	}

	// Test adding and retrieving
	cache.Put("你好", "en", "Hello")
	cache.Put("你好", "de", "Hallo")

	translation, found := cache.Get("你好", "en")
	if !found {
		t.Error("Expected to find '你好'/en in cache")
	}
	if translation != "Hello" {
		t.Errorf("Expected 'Hello', got '%s'", translation)
	}

	translation, _ = cache.Get("你好", "de")
	if translation != "Hallo" {
		t.Errorf("Expected 'Hallo' for de, got '%s'", translation)
	}

	// The first stored value wins
	if stored := cache.Put("你好", "en", "Hi"); stored != "Hello" {
		t.Errorf("Put() returned %q, want the existing 'Hello'", stored)
	}
	translation, _ = cache.Get("你好", "en")
	if translation != "Hello" {
		t.Errorf("Expected cached value to stay 'Hello', got '%s'", translation)
	}

	if cache.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cache.Len())
	}

	hits, misses := cache.Stats()
	if hits != 3 || misses != 1 {
		t.Errorf("Stats() = (%d, %d), want (3, 1)", hits, misses)
	}
}

func TestTranslationCache_Concurrent(t *testing.T) {
	cache := NewCache()
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("text-%d", i%5)
			cache.Put(key, "en", fmt.Sprintf("value-%d", i))
			cache.Get(key, "en")
		}(i)
	}
	wg.Wait()

	if cache.Len() != 5 {
		t.Errorf("Len() = %d, want 5", cache.Len())
	}
}

func TestRetryPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  RetryPolicy
		wantErr bool
	}{
		{"default", DefaultRetryPolicy(), false},
		{"zero delay", RetryPolicy{MaxRetries: 1, Delay: 0, Multiplier: 1}, false},
		{"zero retries", RetryPolicy{MaxRetries: 0, Delay: time.Second, Multiplier: 2}, true},
		{"negative delay", RetryPolicy{MaxRetries: 3, Delay: -time.Second, Multiplier: 2}, true},
		{"multiplier below one", RetryPolicy{MaxRetries: 3, Delay: time.Second, Multiplier: 0.5}, true},
		{"negative timeout", RetryPolicy{MaxRetries: 3, Multiplier: 1, RequestTimeout: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryPolicy_Backoff(t *testing.T) {
	p := RetryPolicy{MaxRetries: 5, Delay: 100 * time.Millisecond, Multiplier: 2}

	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond}
	for i, w := range want {
		if got := p.Backoff(i + 1); got != w {
			t.Errorf("Backoff(%d) = %v, want %v", i+1, got, w)
		}
	}
}

// flakyCall fails the first failures attempts and succeeds afterwards
func flakyCall(failures int, calls *int) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		*calls++
		if *calls <= failures {
			return "", fmt.Errorf("attempt %d failed", *calls)
		}
		return "Hello", nil
	}
}

func TestRetrier_SucceedsOnAttemptN(t *testing.T) {
	const n = 4
	r := NewRetrier(RetryPolicy{MaxRetries: 5, Delay: 10 * time.Millisecond, Multiplier: 3})

	var slept []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}

	calls := 0
	out, err := r.Do(context.Background(), flakyCall(n-1, &calls))
	if err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if out != "Hello" {
		t.Errorf("Do() = %q, want Hello", out)
	}
	if calls != n {
		t.Errorf("provider invoked %d times, want %d", calls, n)
	}

	want := []time.Duration{10 * time.Millisecond, 30 * time.Millisecond, 90 * time.Millisecond}
	if !reflect.DeepEqual(slept, want) {
		t.Errorf("backoff delays = %v, want %v", slept, want)
	}
}

func TestRetrier_RealDelaysWithinTolerance(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 3, Delay: 20 * time.Millisecond, Multiplier: 2})

	var stamps []time.Time
	call := func(ctx context.Context) (string, error) {
		stamps = append(stamps, time.Now())
		if len(stamps) < 3 {
			return "", errors.New("boom")
		}
		return "ok", nil
	}

	if _, err := r.Do(context.Background(), call); err != nil {
		t.Fatalf("Do() failed: %v", err)
	}
	if len(stamps) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(stamps))
	}

	want := []time.Duration{20 * time.Millisecond, 40 * time.Millisecond}
	for i, w := range want {
		got := stamps[i+1].Sub(stamps[i])
		if got < w || got > w+200*time.Millisecond {
			t.Errorf("gap before attempt %d = %v, want about %v", i+2, got, w)
		}
	}
}

func TestRetrier_ExhaustedReturnsProviderError(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 3, Multiplier: 1})

	var retries []int
	r.OnRetry = func(attempt int, delay time.Duration, err error) {
		retries = append(retries, attempt)
	}

	calls := 0
	_, err := r.Do(context.Background(), flakyCall(100, &calls))

	var pe *ProviderError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ProviderError, got %T: %v", err, err)
	}
	if pe.Attempts != 3 || calls != 3 {
		t.Errorf("attempts = %d, calls = %d, want 3 and 3", pe.Attempts, calls)
	}
	if pe.Err == nil || pe.Err.Error() != "attempt 3 failed" {
		t.Errorf("ProviderError should wrap the last failure, got %v", pe.Err)
	}
	if !reflect.DeepEqual(retries, []int{1, 2}) {
		t.Errorf("OnRetry attempts = %v, want [1 2]", retries)
	}
}

func TestRetrier_EmptyResultIsRetried(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 2, Multiplier: 1})

	calls := 0
	_, err := r.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "   ", nil
	})

	var invalid *InvalidResultError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidResultError inside the error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetrier_TimeoutCountsAsAttempt(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 2, Multiplier: 1, RequestTimeout: 20 * time.Millisecond})

	// Abandoned attempts are still running when the next one starts.
	var calls atomic.Int32
	block := make(chan struct{})
	defer close(block)

	// The call ignores its context on purpose.
	_, err := r.Do(context.Background(), func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-block
		return "late", nil
	})

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TimeoutError inside the error, got %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Attempts != 2 {
		t.Errorf("expected ProviderError with 2 attempts, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestRetrier_ContextCancelStops(t *testing.T) {
	r := NewRetrier(RetryPolicy{MaxRetries: 5, Delay: time.Hour, Multiplier: 1})

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		_, err := r.Do(ctx, func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("fail")
		})
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Do() did not return after cancel")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unsupported plain", &UnsupportedLanguageError{Requested: "xx"}, `unsupported language "xx"`},
		{"unsupported alias", &UnsupportedLanguageError{Requested: "qq", Canonical: "q-Q"}, `unsupported language "qq" (normalized to "q-Q")`},
		{"timeout", &TimeoutError{Timeout: time.Second}, "request timed out after 1s"},
		{"io", &IOError{Op: "write", Path: "/out/en.json", Err: errors.New("disk full")}, "write /out/en.json: disk full"},
		{"provider", &ProviderError{Provider: "openai", Attempts: 3, Err: errors.New("boom")}, "openai: translation failed after 3 attempt(s): boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.want)
			}
		})
	}
}

func TestCheckResult(t *testing.T) {
	if _, err := CheckResult(""); err == nil {
		t.Error("expected error for empty result")
	}
	if got, err := CheckResult(" Hello "); err != nil || got != " Hello " {
		t.Errorf("CheckResult = %q, %v", got, err)
	}
}
