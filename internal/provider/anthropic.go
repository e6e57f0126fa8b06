package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicName        = "Anthropic"
	anthropicDefaultHost = "https://api.anthropic.com"
	anthropicKeyPrefix   = "sk-ant-"
	anthropicVersion     = "2023-06-01"
)

// anthropicModels is the model allow-list checked before any call is
// attempted.
var anthropicModels = map[string]bool{
	"claude-3-opus-20240229":     true,
	"claude-3-sonnet-20240229":   true,
	"claude-3-haiku-20240307":    true,
	"claude-3-5-sonnet-20240620": true,
}

// AnthropicProvider implements Provider using the Anthropic Messages API.
// The system prompt travels in the top-level system field, never inside the
// messages array, and system-role history entries are dropped from the
// outgoing messages.
type AnthropicProvider struct {
	client *http.Client
	host   string
	cfg    Config
}

// NewAnthropic creates an AnthropicProvider for the given config.
// Construction never contacts the backend; use ValidateConfig for pre-flight
// checks.
func NewAnthropic(cfg Config) *AnthropicProvider {
	host := strings.TrimRight(cfg.BaseURL, "/")
	if host == "" {
		host = anthropicDefaultHost
	}
	return &AnthropicProvider{
		client: &http.Client{},
		host:   host,
		cfg:    cfg,
	}
}

func (a *AnthropicProvider) Name() string { return anthropicName }

// ValidateConfig checks the documented key prefix and the model allow-list.
func (a *AnthropicProvider) ValidateConfig(cfg Config) bool {
	if !strings.HasPrefix(cfg.APIKey, anthropicKeyPrefix) {
		return false
	}
	return anthropicModels[cfg.Model]
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model string `json:"model"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorEnvelope struct {
	Type  string `json:"type"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateResponse sends the conversation to Anthropic and returns the
// normalized result. The backend is called exactly once.
func (a *AnthropicProvider) GenerateResponse(ctx context.Context, prompt string, chat ChatContext) (GenerationResult, error) {
	// System-role history travels in the top-level system field, so only
	// user/assistant turns are forwarded.
	msgs := make([]Message, 0, len(chat.Messages)+1)
	for _, m := range chat.Messages {
		if m.Role == RoleSystem {
			continue
		}
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: prompt})
	msgs = appendFileContext(msgs, chat.Files)

	apiMessages := make([]anthropicMessage, len(msgs))
	for i, m := range msgs {
		apiMessages[i] = anthropicMessage(m)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:       a.cfg.Model,
		System:      chat.SystemPrompt,
		Messages:    apiMessages,
		Temperature: temperatureOrDefault(a.cfg.Temperature),
		MaxTokens:   maxTokensOrDefault(a.cfg.MaxTokens),
	})
	if err != nil {
		return GenerationResult{}, fmt.Errorf("encoding anthropic messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		a.host+"/v1/messages",
		bytes.NewReader(body),
	)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("building anthropic messages request: %w", err)
	}
	req.Header.Set("x-api-key", a.cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("anthropic messages: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return GenerationResult{}, a.apiError(resp)
	}

	var decoded anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return GenerationResult{}, &InvalidResponseError{Provider: anthropicName, Reason: "malformed response body"}
	}
	if len(decoded.Content) == 0 {
		return GenerationResult{}, &InvalidResponseError{Provider: anthropicName, Reason: "empty content"}
	}
	if decoded.Content[0].Type != "text" {
		return GenerationResult{}, &InvalidResponseError{
			Provider: anthropicName,
			Reason:   fmt.Sprintf("non-text content block %q", decoded.Content[0].Type),
		}
	}

	// Anthropic reports no native total; input+output is the total.
	usage := Usage{
		PromptTokens:     decoded.Usage.InputTokens,
		CompletionTokens: decoded.Usage.OutputTokens,
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	model := decoded.Model
	if model == "" {
		model = a.cfg.Model
	}

	return GenerationResult{
		Content: decoded.Content[0].Text,
		Usage:   usage,
		Model:   model,
	}, nil
}

// apiError maps an Anthropic error response into an *APIError, retaining
// the raw body.
func (a *AnthropicProvider) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	apiErr := &APIError{
		Provider:   anthropicName,
		StatusCode: resp.StatusCode,
		Raw:        raw,
	}

	var envelope anthropicErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
	}
	return apiErr
}
