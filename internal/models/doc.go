// Package models lists the chat models available to an OpenAI-compatible
// API key, so users can pick a model for translation.
package models
