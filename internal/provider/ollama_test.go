package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaValidateConfig(t *testing.T) {
	p := &OllamaProvider{}

	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "model with default host", cfg: Config{Model: "llama3.2:latest"}, want: true},
		{name: "model with explicit host", cfg: Config{Model: "llama3.2:latest", OllamaHost: "http://localhost:11434"}, want: true},
		{name: "no credential needed", cfg: Config{Model: "llama3.2:latest", APIKey: ""}, want: true},
		{name: "empty model", cfg: Config{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ValidateConfig(tt.cfg); got != tt.want {
				t.Errorf("ValidateConfig(%+v) = %v, want %v", tt.cfg, got, tt.want)
			}
		})
	}
}

func TestOllamaGenerateResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("request path = %q, want /api/chat", r.URL.Path)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(req.Messages) == 0 || req.Messages[0].Role != RoleSystem {
			t.Errorf("system prompt should lead the messages array, got %+v", req.Messages)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":             "llama3.2:latest",
			"message":           map[string]string{"role": "assistant", "content": "the answer"},
			"done":              true,
			"prompt_eval_count": 7,
			"eval_count":        3,
		})
	}))
	defer srv.Close()

	p, err := NewOllama(Config{Provider: "ollama", Model: "llama3.2:latest", OllamaHost: srv.URL})
	if err != nil {
		t.Fatalf("NewOllama(): %v", err)
	}

	result, err := p.GenerateResponse(context.Background(), "hi", ChatContext{SystemPrompt: "be terse"})
	if err != nil {
		t.Fatalf("GenerateResponse() unexpected error: %v", err)
	}

	if result.Content != "the answer" {
		t.Errorf("Content = %q, want %q", result.Content, "the answer")
	}
	want := Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10}
	if result.Usage != want {
		t.Errorf("Usage = %+v, want %+v", result.Usage, want)
	}
}

func TestOllamaGenerateResponseEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model":   "llama3.2:latest",
			"message": map[string]string{"role": "assistant", "content": "   "},
			"done":    true,
		})
	}))
	defer srv.Close()

	p, err := NewOllama(Config{Provider: "ollama", Model: "llama3.2:latest", OllamaHost: srv.URL})
	if err != nil {
		t.Fatalf("NewOllama(): %v", err)
	}

	_, err = p.GenerateResponse(context.Background(), "hi", ChatContext{})
	var ire *InvalidResponseError
	if !errors.As(err, &ire) {
		t.Fatalf("error = %v, want *InvalidResponseError", err)
	}
}
