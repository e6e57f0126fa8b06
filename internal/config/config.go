// Package config manages the aichat configuration file at ~/.aichat/config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hpkotak/aichat/internal/provider"
)

var ErrNotFound = errors.New("config file not found")

type Config struct {
	Provider    string    `yaml:"provider"`
	Model       string    `yaml:"model"`
	Temperature *float64  `yaml:"temperature,omitempty"`
	MaxTokens   int       `yaml:"max_tokens,omitempty"`
	OpenAI      OpenAI    `yaml:"openai"`
	Anthropic   Anthropic `yaml:"anthropic"`
	Ollama      Ollama    `yaml:"ollama"`
}

type OpenAI struct {
	APIKey string `yaml:"api_key"`
}

type Anthropic struct {
	APIKey string `yaml:"api_key"`
}

type Ollama struct {
	Host string `yaml:"host"`
}

// Dir returns the config directory path (~/.aichat).
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".aichat")
}

// Path returns the config file path (~/.aichat/config.yaml).
func Path() string {
	return filepath.Join(Dir(), "config.yaml")
}

// Exists checks if the config file exists.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads and parses the config file, then applies environment-variable
// key overrides. Returns ErrNotFound if the file doesn't exist.
func Load() (*Config, error) {
	cfg, err := loadFrom(Path())
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

func loadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// applyEnv lets environment keys override file keys, so credentials can
// stay out of the config file.
func applyEnv(cfg *Config) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.Anthropic.APIKey = key
	}
}

// Save writes the config to disk, creating the directory if needed.
func Save(cfg *Config) error {
	if err := os.MkdirAll(Dir(), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(Path(), data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a config with sensible defaults.
func Default() *Config {
	return &Config{
		Provider: "ollama",
		Model:    "llama3.2:latest",
		Ollama: Ollama{
			Host: "http://localhost:11434",
		},
	}
}

// ToProviderConfig produces the finished provider configuration, selecting
// the credential that matches the declared provider.
func (c *Config) ToProviderConfig() provider.Config {
	cfg := provider.Config{
		Provider:    c.Provider,
		Model:       c.Model,
		Temperature: c.Temperature,
		MaxTokens:   c.MaxTokens,
		OllamaHost:  c.Ollama.Host,
	}

	switch strings.ToLower(strings.TrimSpace(c.Provider)) {
	case "openai":
		cfg.APIKey = c.OpenAI.APIKey
	case "anthropic":
		cfg.APIKey = c.Anthropic.APIKey
	}
	return cfg
}
