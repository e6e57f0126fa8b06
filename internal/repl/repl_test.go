package repl

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/hpkotak/aichat/internal/llm"
	"github.com/hpkotak/aichat/internal/provider"
)

// fakeOpenAI captures the last request body it received.
type fakeOpenAI struct {
	mu   sync.Mutex
	last struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
}

func (f *fakeOpenAI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if err := json.NewDecoder(r.Body).Decode(&f.last); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"assistant reply"}}],"usage":{"prompt_tokens":4,"completion_tokens":2}}`))
	}
}

func newTestService(t *testing.T, baseURL string) *llm.Service {
	t.Helper()
	svc := llm.NewService()
	err := svc.Initialize(provider.Config{
		Provider: "openai",
		APIKey:   "sk-test123",
		Model:    "gpt-4",
		BaseURL:  baseURL,
	})
	if err != nil {
		t.Fatalf("Initialize(): %v", err)
	}
	return svc
}

func TestRunExit(t *testing.T) {
	svc := newTestService(t, "http://localhost:0")

	var out strings.Builder
	if err := Run(svc, strings.NewReader("exit\n"), &out); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "OpenAI") {
		t.Errorf("banner missing provider name: %q", out.String())
	}
	if !strings.Contains(out.String(), "Bye!") {
		t.Errorf("missing exit message: %q", out.String())
	}
}

func TestRunChatTurn(t *testing.T) {
	fake := &fakeOpenAI{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	var out strings.Builder
	if err := Run(svc, strings.NewReader("hello there\nexit\n"), &out); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "assistant reply") {
		t.Errorf("output missing assistant reply: %q", got)
	}
	if !strings.Contains(got, "4 prompt + 2 completion = 6 tokens") {
		t.Errorf("output missing usage line: %q", got)
	}

	// System prompt leads, user prompt trails.
	fake.mu.Lock()
	defer fake.mu.Unlock()
	msgs := fake.last.Messages
	if len(msgs) < 2 || msgs[0].Role != provider.RoleSystem {
		t.Fatalf("outgoing messages = %+v, want leading system entry", msgs)
	}
	if msgs[len(msgs)-1].Content != "hello there" {
		t.Errorf("final user turn = %q, want the typed prompt", msgs[len(msgs)-1].Content)
	}
}

func TestRunFileAttach(t *testing.T) {
	fake := &fakeOpenAI{}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	svc := newTestService(t, srv.URL)

	origCollect := collectFiles
	collectFiles = func(paths ...string) ([]provider.FileContext, error) {
		return []provider.FileContext{{Path: "hello.go", Content: "package hello", Kind: "go"}}, nil
	}
	defer func() { collectFiles = origCollect }()

	input := "/file hello.go\nwhat does hello.go do?\nexit\n"
	var out strings.Builder
	if err := Run(svc, strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	if !strings.Contains(out.String(), "Attached hello.go") {
		t.Errorf("missing attach confirmation: %q", out.String())
	}

	fake.mu.Lock()
	defer fake.mu.Unlock()
	msgs := fake.last.Messages
	final := msgs[len(msgs)-1].Content
	if !strings.HasPrefix(final, "what does hello.go do?") {
		t.Errorf("file block replaced the prompt: %q", final)
	}
	if !strings.Contains(final, "```hello.go\npackage hello\n```") {
		t.Errorf("file context not appended to the outgoing turn: %q", final)
	}
}

func TestRunErrorKeepsSession(t *testing.T) {
	svc := llm.NewService() // never initialized

	var out strings.Builder
	input := "hello\nexit\n"
	if err := Run(svc, strings.NewReader(input), &out); err != nil {
		t.Fatalf("Run() unexpected error: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "not initialized") {
		t.Errorf("output missing the generation error: %q", got)
	}
	if !strings.Contains(got, "Bye!") {
		t.Errorf("session did not continue to exit after the error: %q", got)
	}
}
