package provider

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// OpenAIProvider translates through the OpenAI chat completions API or any
// OpenAI-compatible endpoint
type OpenAIProvider struct {
	client *openai.Client
	config *Config
}

// NewOpenAIProvider creates a new OpenAI translation provider
func NewOpenAIProvider(config *Config) *OpenAIProvider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		clientConfig.HTTPClient = config.HTTPClient
	} else if config.Timeout > 0 {
		clientConfig.HTTPClient = httpClient(config)
	}

	return &OpenAIProvider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
	}
}

// Translate translates req.Text with a chat completion
func (p *OpenAIProvider) Translate(ctx context.Context, req translation.Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: modelOrDefault(req.Model, p.config.Model, DefaultOpenAIModel),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: SystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: UserPrompt(req),
			},
		},
		Temperature: p.config.Temperature,
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", &translation.InvalidResultError{Reason: "no choices returned"}
	}

	return restoreSpacing(req.Text, cleanResponse(resp.Choices[0].Message.Content)), nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}
