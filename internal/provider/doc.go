// Package provider implements translation backends.
//
// Supported providers:
//   - openai: OpenAI chat completions, or any OpenAI-compatible endpoint via BaseURL
//   - gemini: Google Gemini through the genai SDK
//   - claude: Anthropic messages API
//   - http:   a plain JSON endpoint
//
// NewProvider builds a provider from a Config. NewProviderWithFallback chains
// two providers and BreakerProvider wraps one with a circuit breaker per
// target language.
package provider
