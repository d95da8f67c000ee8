package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Lister handles listing available OpenAI models
type Lister struct {
	apiKey string
	client *openai.Client
}

// NewLister creates a new model lister. baseURL may point to any
// OpenAI-compatible API; empty means api.openai.com.
func NewLister(apiKey, baseURL string) *Lister {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Lister{
		apiKey: apiKey,
		client: openai.NewClientWithConfig(config),
	}
}

// Categories groups model IDs
type Categories struct {
	Chat  []string
	Other []string
}

// Categorize splits model IDs into chat models usable for translation and
// everything else. Both lists are sorted.
func Categorize(ids []string) Categories {
	var c Categories
	for _, id := range ids {
		if isChatModel(id) {
			c.Chat = append(c.Chat, id)
		} else {
			c.Other = append(c.Other, id)
		}
	}
	sort.Strings(c.Chat)
	sort.Strings(c.Other)
	return c
}

func isChatModel(id string) bool {
	for _, skip := range []string{"tts", "audio", "dall-e", "whisper", "embedding", "moderation", "transcribe", "realtime", "image"} {
		if strings.Contains(id, skip) {
			return false
		}
	}
	for _, prefix := range []string{"gpt", "o1", "o3", "o4", "chatgpt"} {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return strings.Contains(id, "chat")
}

// ListAvailableModels writes the chat models for the API key to w
func (l *Lister) ListAvailableModels(ctx context.Context, w io.Writer) error {
	if l.apiKey == "" {
		return fmt.Errorf("OpenAI API key not found. Set OPENAI_API_KEY environment variable or configure in .polyglot.yaml")
	}

	models, err := l.client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	ids := make([]string, 0, len(models.Models))
	for _, model := range models.Models {
		ids = append(ids, model.ID)
	}
	c := Categorize(ids)

	fmt.Fprintln(w, "Chat/Translation Models:")
	if len(c.Chat) == 0 {
		fmt.Fprintln(w, "  No chat models found")
	}
	for _, model := range c.Chat {
		fmt.Fprintf(w, "  %s\n", model)
	}
	if len(c.Other) > 0 {
		fmt.Fprintf(w, "\n%d other models not suitable for translation\n", len(c.Other))
	}

	return nil
}
