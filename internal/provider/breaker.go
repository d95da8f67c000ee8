package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// BreakerSettings configures BreakerProvider
type BreakerSettings struct {
	// MaxFailures is the number of consecutive failures that opens a
	// language's breaker (0 disables the breaker)
	MaxFailures uint32
	// Timeout is how long a breaker stays open before a trial request
	Timeout time.Duration
	// OnStateChange is called when a breaker changes state
	OnStateChange func(lang string, from, to gobreaker.State)
}

// DefaultBreakerSettings returns the default breaker configuration
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxFailures: 10,
		Timeout:     30 * time.Second,
	}
}

// BreakerProvider wraps a provider with one circuit breaker per target
// language. A language whose calls keep failing stops reaching the backend
// for a while; other languages are not affected.
type BreakerProvider struct {
	next     translation.Provider
	settings BreakerSettings

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next. With MaxFailures 0 next is returned as is.
func NewBreakerProvider(next translation.Provider, settings BreakerSettings) translation.Provider {
	if settings.MaxFailures == 0 {
		return next
	}
	return &BreakerProvider{
		next:     next,
		settings: settings,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (p *BreakerProvider) breaker(lang string) *gobreaker.CircuitBreaker {
	p.mu.Lock()
	defer p.mu.Unlock()

	if cb, ok := p.breakers[lang]; ok {
		return cb
	}

	maxFailures := p.settings.MaxFailures
	settings := gobreaker.Settings{
		Name:    lang,
		Timeout: p.settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
	}
	if p.settings.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			p.settings.OnStateChange(name, from, to)
		}
	}

	cb := gobreaker.NewCircuitBreaker(settings)
	p.breakers[lang] = cb
	return cb
}

// Translate runs the wrapped provider through the breaker of
// req.TargetLanguage
func (p *BreakerProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	out, err := p.breaker(req.TargetLanguage).Execute(func() (interface{}, error) {
		return p.next.Translate(ctx, req)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", fmt.Errorf("%s circuit breaker: %w", req.TargetLanguage, err)
		}
		return "", err
	}
	return out.(string), nil
}

// State returns the breaker state for lang
func (p *BreakerProvider) State(lang string) gobreaker.State {
	return p.breaker(lang).State()
}

// Name returns the wrapped provider's name
func (p *BreakerProvider) Name() string {
	return p.next.Name()
}
