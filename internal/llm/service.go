// Package llm exposes the stateful façade the rest of the application uses
// to talk to a language-model backend. A Service is explicitly constructed
// and injected where needed; there is no package-level instance.
package llm

import (
	"context"
	"errors"
	"sync"

	"github.com/hpkotak/aichat/internal/provider"
)

// ErrNotInitialized is returned by GenerateResponse before a successful
// Initialize.
var ErrNotInitialized = errors.New("llm service not initialized: call Initialize first")

// Service owns at most one active backend adapter plus the configuration
// that produced it. The two change together under one lock, so a concurrent
// generation racing a re-initialize sees either the old pairing or the new
// one, never a mix.
type Service struct {
	mu  sync.RWMutex
	p   provider.Provider
	cfg provider.Config
}

// NewService returns an uninitialized Service.
func NewService() *Service {
	return &Service{}
}

// Initialize validates cfg through the factory and swaps in a freshly built
// adapter. On failure the previously held adapter and configuration stay
// untouched.
func (s *Service) Initialize(cfg provider.Config) error {
	p, err := provider.NewProvider(cfg)
	if err != nil {
		return &provider.InvalidConfigError{
			Provider: cfg.Provider,
			Reason:   err.Error(),
			Cause:    err,
		}
	}
	if !p.ValidateConfig(cfg) {
		return &provider.InvalidConfigError{
			Provider: cfg.Provider,
			Reason:   "credential or model rejected",
		}
	}

	s.mu.Lock()
	s.p = p
	s.cfg = cfg
	s.mu.Unlock()
	return nil
}

// GenerateResponse forwards the prompt and chat context verbatim to the
// held adapter. It carries no timeout or retry; callers own that policy
// through ctx.
func (s *Service) GenerateResponse(ctx context.Context, prompt string, chat provider.ChatContext) (provider.GenerationResult, error) {
	s.mu.RLock()
	p := s.p
	s.mu.RUnlock()

	if p == nil {
		return provider.GenerationResult{}, ErrNotInitialized
	}
	return p.GenerateResponse(ctx, prompt, chat)
}

// ProviderName returns the active backend label, or "" while uninitialized.
func (s *Service) ProviderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.p == nil {
		return ""
	}
	return s.p.Name()
}

// ModelName returns the active model identifier, or "" while uninitialized.
func (s *Service) ModelName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.p == nil {
		return ""
	}
	return s.cfg.Model
}

// IsInitialized reports whether a successful Initialize has happened.
func (s *Service) IsInitialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p != nil
}
