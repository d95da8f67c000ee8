package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// HTTPProvider posts each text to a custom JSON endpoint:
//
//	POST {BaseURL}
//	{"text": "...", "source": "zh-CN", "target": "en", "model": "..."}
//
// and expects {"translation": "..."} (or {"text": "..."}) back.
type HTTPProvider struct {
	client *http.Client
	config *Config
}

// NewHTTPProvider creates a provider for a custom endpoint
func NewHTTPProvider(config *Config) *HTTPProvider {
	return &HTTPProvider{
		client: httpClient(config),
		config: config,
	}
}

type httpRequest struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Target string `json:"target"`
	Model  string `json:"model,omitempty"`
}

type httpResponse struct {
	Translation string `json:"translation"`
	Text        string `json:"text"`
	Error       string `json:"error"`
}

// Translate posts req to the endpoint
func (p *HTTPProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	body, err := json.Marshal(httpRequest{
		Text:   req.Text,
		Source: req.SourceLanguage,
		Target: req.TargetLanguage,
		Model:  modelOrDefault(req.Model, p.config.Model, ""),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if p.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request to %s failed: %w", p.config.BaseURL, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed httpResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &translation.InvalidResultError{Reason: fmt.Sprintf("response is not JSON: %v", err)}
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("endpoint error: %s", parsed.Error)
	}

	text := parsed.Translation
	if text == "" {
		text = parsed.Text
	}
	return text, nil
}

// Name returns the provider name
func (p *HTTPProvider) Name() string {
	return "http"
}

// truncate shortens s to at most n bytes without splitting a rune
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
