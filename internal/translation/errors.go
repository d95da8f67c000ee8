package translation

import (
	"fmt"
	"time"
)

// ProviderError is returned when a translation call failed on every
// attempt. Err is the failure of the last attempt.
type ProviderError struct {
	Provider string
	Attempts int
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("%s: translation failed after %d attempt(s): %v", e.Provider, e.Attempts, e.Err)
	}
	return fmt.Sprintf("translation failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// TimeoutError marks a single attempt that exceeded the request timeout
type TimeoutError struct {
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %v", e.Timeout)
}

// InvalidResultError marks a provider response that is empty or not text
type InvalidResultError struct {
	Reason string
}

func (e *InvalidResultError) Error() string {
	return "invalid provider result: " + e.Reason
}

// UnsupportedLanguageError is returned for a target language that is not
// supported after alias normalization.
type UnsupportedLanguageError struct {
	Requested string
	Canonical string
}

func (e *UnsupportedLanguageError) Error() string {
	if e.Canonical != "" && e.Canonical != e.Requested {
		return fmt.Sprintf("unsupported language %q (normalized to %q)", e.Requested, e.Canonical)
	}
	return fmt.Sprintf("unsupported language %q", e.Requested)
}

// IOError is a failure to read the input document or persist output. It
// aborts the whole invocation.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
