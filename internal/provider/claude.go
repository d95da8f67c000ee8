package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"codeberg.org/snonux/polyglot/internal/translation"
)

const (
	defaultClaudeURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// ClaudeProvider translates through the Anthropic messages API
type ClaudeProvider struct {
	client *http.Client
	config *Config
}

// NewClaudeProvider creates a new Claude translation provider
func NewClaudeProvider(config *Config) *ClaudeProvider {
	return &ClaudeProvider{
		client: httpClient(config),
		config: config,
	}
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float32         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Translate translates req.Text with a single user message
func (p *ClaudeProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	body, err := json.Marshal(claudeRequest{
		Model:       modelOrDefault(req.Model, p.config.Model, DefaultClaudeModel),
		MaxTokens:   4096,
		System:      SystemPrompt(),
		Temperature: p.config.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: UserPrompt(req)}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	baseURL := p.config.BaseURL
	if baseURL == "" {
		baseURL = defaultClaudeURL
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/messages"

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("Anthropic API error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed claudeResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("invalid JSON response (status %d): %w", resp.StatusCode, err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("Anthropic API error (%s): %s", parsed.Error.Type, parsed.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Anthropic API returned status %d", resp.StatusCode)
	}

	for _, block := range parsed.Content {
		if block.Type == "text" {
			return restoreSpacing(req.Text, cleanResponse(block.Text)), nil
		}
	}
	return "", &translation.InvalidResultError{Reason: "no text block in Anthropic response"}
}

// Name returns the provider name
func (p *ClaudeProvider) Name() string {
	return "claude"
}
