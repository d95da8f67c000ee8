package provider

import (
	"fmt"
	"strings"

	"codeberg.org/snonux/polyglot/internal/translation"
)

const systemPrompt = "You are a professional software localization translator. " +
	"Translate the user's text and respond with only the translation, nothing else. " +
	"Keep placeholders such as {name}, {{count}}, %s and %d, HTML tags and " +
	"markdown unchanged. Keep line breaks."

// SystemPrompt returns the instructions sent with every request
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt builds the user message for req
func UserPrompt(req translation.Request) string {
	source := req.SourceLanguage
	if source == "" {
		source = "the source language"
	}
	target := req.TargetLanguage
	if req.TargetName != "" {
		target = fmt.Sprintf("%s (%s)", req.TargetName, req.TargetLanguage)
	}
	return fmt.Sprintf("Translate the following text from %s to %s:\n\n%s",
		source, target, req.Text)
}

// cleanResponse strips wrapping a chat model sometimes adds around the
// translation
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) >= 6 {
		text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")
		if i := strings.IndexByte(text, '\n'); i >= 0 && !strings.Contains(text[:i], " ") {
			text = text[i+1:]
		}
		text = strings.TrimSpace(text)
	}
	return text
}

// restoreSpacing puts the leading and trailing whitespace of original back
// around translated
func restoreSpacing(original, translated string) string {
	trimmed := strings.TrimSpace(translated)
	if trimmed == "" {
		return ""
	}
	lead := original[:len(original)-len(strings.TrimLeft(original, " \t\r\n"))]
	trail := original[len(strings.TrimRight(original, " \t\r\n")):]
	return lead + trimmed + trail
}
