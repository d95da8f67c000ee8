package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// GeminiProvider translates through the Google Gemini API
type GeminiProvider struct {
	client *genai.Client
	config *Config
}

// NewGeminiProvider creates a new Gemini translation provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if config.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL}
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		config: config,
	}, nil
}

// Translate translates req.Text with GenerateContent
func (p *GeminiProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	model := modelOrDefault(req.Model, p.config.Model, DefaultGeminiModel)

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt(), genai.RoleUser),
		Temperature:       genai.Ptr(p.config.Temperature),
	}

	resp, err := p.client.Models.GenerateContent(ctx, model, genai.Text(UserPrompt(req)), genConfig)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", &translation.InvalidResultError{Reason: "no text in Gemini response"}
	}

	return restoreSpacing(req.Text, cleanResponse(text)), nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
