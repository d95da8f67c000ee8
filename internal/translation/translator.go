package translation

import (
	"context"
	"strings"
)

// Request is a single text translation request
type Request struct {
	Text           string
	SourceLanguage string
	TargetLanguage string
	// TargetName is the English name of TargetLanguage, if known
	TargetName string
	Model      string
}

// Provider translates text. Implementations live in the provider package
// and may talk to any backend; the engine only relies on this contract.
type Provider interface {
	// Translate returns the translation of req.Text. An empty result is
	// treated as a failure by the caller.
	Translate(ctx context.Context, req Request) (string, error)

	// Name returns the provider name
	Name() string
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, req Request) (string, error)

// Translate calls f
func (f ProviderFunc) Translate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Name returns "func"
func (f ProviderFunc) Name() string {
	return "func"
}

// CheckResult rejects empty or whitespace-only provider output
func CheckResult(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &InvalidResultError{Reason: "empty translation"}
	}
	return text, nil
}
