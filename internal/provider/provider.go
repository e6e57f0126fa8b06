// Package provider defines the LLM backend contract and implementations.
// New backends (Gemini, local bridges) implement the Provider interface and
// register in the factory.
package provider

import (
	"context"
	"time"
)

// Conversation roles shared by all backends.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Sampling defaults applied when the config leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 4000
)

// Config holds everything needed to construct and validate one backend
// adapter. It is produced by the configuration layer and treated as
// immutable for the lifetime of the adapter built from it.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature *float64 // nil means use DefaultTemperature
	MaxTokens   int      // 0 means use DefaultMaxTokens
	BaseURL     string   // override for the backend endpoint, mainly for tests
	OllamaHost  string   // only the ollama adapter reads this
}

// Message is a single role/content pair in an outgoing backend request.
// Decoupled from any specific LLM API so callers don't import
// backend-specific types.
type Message struct {
	Role    string
	Content string
}

// ConversationMessage is one recorded turn of conversation history.
type ConversationMessage struct {
	Role      string
	Content   string
	Timestamp time.Time
}

// FileContext is a file attached to a generation call. Produced by the
// context-collection layer; read-only here.
type FileContext struct {
	Path    string
	Content string
	Kind    string
}

// ChatContext carries everything beyond the prompt for one generation call:
// an optional system prompt, conversation history in order, and attached
// files. Passed by value; adapters never mutate it.
type ChatContext struct {
	SystemPrompt string
	Messages     []ConversationMessage
	Files        []FileContext
}

// Usage is token accounting for one generation. TotalTokens is always
// recomputed locally as PromptTokens+CompletionTokens rather than trusted
// from the backend.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerationResult is a normalized backend response.
type GenerationResult struct {
	Content string
	Usage   Usage
	Model   string
}

// Provider sends generation requests to an LLM backend.
type Provider interface {
	// Name returns the human-readable backend label (e.g. "OpenAI").
	Name() string

	// GenerateResponse sends the prompt plus chat context to the backend and
	// returns a normalized result. Exactly one backend call per invocation;
	// retries belong to the caller.
	GenerateResponse(ctx context.Context, prompt string, chat ChatContext) (GenerationResult, error)

	// ValidateConfig reports whether cfg is usable by this backend.
	// Pure: no network calls, never panics.
	ValidateConfig(cfg Config) bool
}

// temperatureOrDefault resolves the optional temperature.
func temperatureOrDefault(t *float64) float64 {
	if t != nil {
		return *t
	}
	return DefaultTemperature
}

// maxTokensOrDefault resolves the optional output-token cap.
func maxTokensOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return DefaultMaxTokens
}
