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
	openAIName        = "OpenAI"
	openAIDefaultHost = "https://api.openai.com/v1"
	openAIKeyPrefix   = "sk-"

	errorBodyLimit = 64 << 10
)

// openAIModels is the model allow-list checked before any call is attempted.
var openAIModels = map[string]bool{
	"gpt-4":         true,
	"gpt-4-turbo":   true,
	"gpt-4o":        true,
	"gpt-4o-mini":   true,
	"gpt-3.5-turbo": true,
}

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
// The system prompt travels as a system-role entry inside the messages
// array, and history roles are forwarded as-is.
type OpenAIProvider struct {
	client *http.Client
	host   string
	cfg    Config
}

// NewOpenAI creates an OpenAIProvider for the given config. Construction
// never contacts the backend; use ValidateConfig for pre-flight checks.
func NewOpenAI(cfg Config) *OpenAIProvider {
	host := strings.TrimRight(cfg.BaseURL, "/")
	if host == "" {
		host = openAIDefaultHost
	}
	return &OpenAIProvider{
		client: &http.Client{},
		host:   host,
		cfg:    cfg,
	}
}

func (o *OpenAIProvider) Name() string { return openAIName }

// ValidateConfig checks the documented key prefix and the model allow-list.
func (o *OpenAIProvider) ValidateConfig(cfg Config) bool {
	if !strings.HasPrefix(cfg.APIKey, openAIKeyPrefix) {
		return false
	}
	return openAIModels[cfg.Model]
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Model string `json:"model"`
}

type openAIErrorEnvelope struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// GenerateResponse sends the conversation to OpenAI and returns the
// normalized result. The backend is called exactly once.
func (o *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, chat ChatContext) (GenerationResult, error) {
	msgs := BuildMessages(chat.SystemPrompt, chat.Messages, prompt)
	msgs = appendFileContext(msgs, chat.Files)

	apiMessages := make([]openAIMessage, len(msgs))
	for i, m := range msgs {
		apiMessages[i] = openAIMessage(m)
	}

	body, err := json.Marshal(openAIRequest{
		Model:       o.cfg.Model,
		Messages:    apiMessages,
		Temperature: temperatureOrDefault(o.cfg.Temperature),
		MaxTokens:   maxTokensOrDefault(o.cfg.MaxTokens),
	})
	if err != nil {
		return GenerationResult{}, fmt.Errorf("encoding openai chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		o.host+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("building openai chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("openai chat: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return GenerationResult{}, o.apiError(resp)
	}

	var decoded openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return GenerationResult{}, &InvalidResponseError{Provider: openAIName, Reason: "malformed response body"}
	}
	if len(decoded.Choices) == 0 {
		return GenerationResult{}, &InvalidResponseError{Provider: openAIName, Reason: "no choices in response"}
	}

	usage := Usage{
		PromptTokens:     decoded.Usage.PromptTokens,
		CompletionTokens: decoded.Usage.CompletionTokens,
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	model := decoded.Model
	if model == "" {
		model = o.cfg.Model
	}

	return GenerationResult{
		Content: decoded.Choices[0].Message.Content,
		Usage:   usage,
		Model:   model,
	}, nil
}

// apiError maps an OpenAI error response into an *APIError, retaining the
// raw body.
func (o *OpenAIProvider) apiError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))

	apiErr := &APIError{
		Provider:   openAIName,
		StatusCode: resp.StatusCode,
		Raw:        raw,
	}

	var envelope openAIErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Type = envelope.Error.Type
		apiErr.Code = envelope.Error.Code
	}
	return apiErr
}
