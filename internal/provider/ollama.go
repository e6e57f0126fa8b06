package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

const (
	ollamaName        = "Ollama"
	ollamaDefaultHost = "http://localhost:11434"
)

// OllamaProvider implements Provider using a local Ollama instance. It
// shapes requests like OpenAI does: the system prompt rides inside the
// messages array and history roles are forwarded as-is.
type OllamaProvider struct {
	client *api.Client
	cfg    Config
}

// NewOllama creates an OllamaProvider for the given config.
func NewOllama(cfg Config) (*OllamaProvider, error) {
	base, err := url.Parse(ollamaHost(cfg))
	if err != nil {
		return nil, fmt.Errorf("parsing ollama host URL: %w", err)
	}
	client := api.NewClient(base, &http.Client{})
	return &OllamaProvider{client: client, cfg: cfg}, nil
}

func (o *OllamaProvider) Name() string { return ollamaName }

// ValidateConfig requires a model name and a parseable host. Ollama takes
// no credential.
func (o *OllamaProvider) ValidateConfig(cfg Config) bool {
	if strings.TrimSpace(cfg.Model) == "" {
		return false
	}
	_, err := url.Parse(ollamaHost(cfg))
	return err == nil
}

// GenerateResponse sends the conversation to Ollama and returns the
// normalized result. The backend is called exactly once.
func (o *OllamaProvider) GenerateResponse(ctx context.Context, prompt string, chat ChatContext) (GenerationResult, error) {
	msgs := BuildMessages(chat.SystemPrompt, chat.Messages, prompt)
	msgs = appendFileContext(msgs, chat.Files)

	apiMessages := make([]api.Message, len(msgs))
	for i, m := range msgs {
		apiMessages[i] = api.Message{Role: m.Role, Content: m.Content}
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.cfg.Model,
		Messages: apiMessages,
		Stream:   &stream,
		Options: map[string]any{
			"temperature": temperatureOrDefault(o.cfg.Temperature),
			"num_predict": maxTokensOrDefault(o.cfg.MaxTokens),
		},
	}

	var final api.ChatResponse
	err := o.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		final = resp
		return nil
	})
	if err != nil {
		return GenerationResult{}, fmt.Errorf("ollama chat: %w", err)
	}

	if strings.TrimSpace(final.Message.Content) == "" {
		return GenerationResult{}, &InvalidResponseError{Provider: ollamaName, Reason: "empty completion"}
	}

	usage := Usage{
		PromptTokens:     final.PromptEvalCount,
		CompletionTokens: final.EvalCount,
	}
	usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens

	model := final.Model
	if model == "" {
		model = o.cfg.Model
	}

	return GenerationResult{
		Content: final.Message.Content,
		Usage:   usage,
		Model:   model,
	}, nil
}

func ollamaHost(cfg Config) string {
	if strings.TrimSpace(cfg.OllamaHost) != "" {
		return cfg.OllamaHost
	}
	return ollamaDefaultHost
}
