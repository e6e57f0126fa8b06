package provider

import "strings"

// knownProviders is the full identifier vocabulary. The value marks whether
// a working adapter exists; an identifier can be recognized before its
// adapter lands.
var knownProviders = map[string]bool{
	"openai":    true,
	"anthropic": true,
	"ollama":    true,
	"gemini":    false,
}

// NewProvider builds the adapter for cfg.Provider. Unknown identifiers fail
// with *InvalidProviderError; recognized identifiers without an adapter fail
// with *NotImplementedError.
func NewProvider(cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))

	implemented, known := knownProviders[name]
	if !known {
		return nil, &InvalidProviderError{Provider: cfg.Provider}
	}
	if !implemented {
		return nil, &NotImplementedError{Provider: name}
	}

	switch name {
	case "openai":
		return NewOpenAI(cfg), nil
	case "anthropic":
		return NewAnthropic(cfg), nil
	case "ollama":
		return NewOllama(cfg)
	}
	return nil, &NotImplementedError{Provider: name}
}

// SupportedProviders lists the identifiers with a working adapter.
func SupportedProviders() []string {
	return []string{"openai", "anthropic", "ollama"}
}

// ValidateProviderConfig reports whether cfg would produce a usable adapter.
// Any construction or validation failure is false, never an error.
func ValidateProviderConfig(cfg Config) bool {
	p, err := NewProvider(cfg)
	if err != nil {
		return false
	}
	return p.ValidateConfig(cfg)
}
