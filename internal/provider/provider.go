package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// Config holds configuration for translation providers
type Config struct {
	Provider string // "openai", "gemini", "claude" or "http"
	APIKey   string
	Model    string
	BaseURL  string // overrides the provider endpoint

	// Temperature for chat-style providers
	Temperature float32
	// Timeout for the underlying HTTP client (0 = no client timeout)
	Timeout time.Duration

	// HTTPClient is used by the claude and http providers when set
	HTTPClient *http.Client
}

// Default models per provider
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultClaudeModel = "claude-3-5-haiku-latest"
)

// Names lists the provider names accepted by NewProvider
var Names = []string{"openai", "gemini", "claude", "http"}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:    "openai",
		Model:       DefaultOpenAIModel,
		Temperature: 0.3,
	}
}

// NewProvider creates the translation provider named in config
func NewProvider(config *Config) (translation.Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	switch strings.ToLower(config.Provider) {
	case "openai", "":
		if config.APIKey == "" && config.BaseURL == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		return NewOpenAIProvider(config), nil

	case "gemini":
		if config.APIKey == "" {
			return nil, fmt.Errorf("Gemini API key is required")
		}
		return NewGeminiProvider(context.Background(), config)

	case "claude", "anthropic":
		if config.APIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required")
		}
		return NewClaudeProvider(config), nil

	case "http":
		if config.BaseURL == "" {
			return nil, fmt.Errorf("http provider requires a base URL")
		}
		return NewHTTPProvider(config), nil

	default:
		return nil, fmt.Errorf("unknown translation provider: %s", config.Provider)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  translation.Provider
	fallback translation.Provider

	// OnFallback is called when the primary fails and the fallback is tried
	OnFallback func(primary, fallback string, err error)
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback translation.Provider) *ProviderWithFallback {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Translate tries the primary provider first, falls back to the secondary on error
func (p *ProviderWithFallback) Translate(ctx context.Context, req translation.Request) (string, error) {
	text, err := p.primary.Translate(ctx, req)
	if err == nil {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", err
	}

	if p.OnFallback != nil {
		p.OnFallback(p.primary.Name(), p.fallback.Name(), err)
	}

	text, fallbackErr := p.fallback.Translate(ctx, req)
	if fallbackErr != nil {
		return "", fmt.Errorf("primary=%v, fallback=%w", err, fallbackErr)
	}
	return text, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}

func modelOrDefault(reqModel, configModel, fallback string) string {
	if reqModel != "" {
		return reqModel
	}
	if configModel != "" {
		return configModel
	}
	return fallback
}

func httpClient(config *Config) *http.Client {
	if config.HTTPClient != nil {
		return config.HTTPClient
	}
	return &http.Client{Timeout: config.Timeout}
}
