package cli

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return configKey("openai")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return configKey("gemini")
}

// GetAnthropicKey retrieves the Anthropic API key from environment or config
func GetAnthropicKey() string {
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key
	}
	return configKey("claude")
}

// GetHTTPKey retrieves the bearer token for the generic HTTP provider
func GetHTTPKey() string {
	if key := os.Getenv("POLYGLOT_HTTP_API_KEY"); key != "" {
		return key
	}
	return configKey("http")
}

// APIKey returns the key for the named provider
func APIKey(provider string) string {
	switch providerKind(provider) {
	case "gemini":
		return GetGeminiKey()
	case "claude":
		return GetAnthropicKey()
	case "http":
		return GetHTTPKey()
	default:
		return GetOpenAIKey()
	}
}

func providerKind(name string) string {
	switch strings.ToLower(name) {
	case "gemini", "http":
		return strings.ToLower(name)
	case "claude", "anthropic":
		return "claude"
	default:
		return "openai"
	}
}

// configKey reads provider.keys.<kind> from the config file. The shared
// provider.api_key belongs to the primary provider only, so a fallback
// never receives it.
func configKey(kind string) string {
	if key := viper.GetString("provider.keys." + kind); key != "" {
		return key
	}
	if kind == "claude" {
		if key := viper.GetString("provider.keys.anthropic"); key != "" {
			return key
		}
	}
	if providerKind(viper.GetString("provider.name")) == kind {
		return viper.GetString("provider.api_key")
	}
	return ""
}
