package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hpkotak/aichat/internal/config"
	"github.com/hpkotak/aichat/internal/llm"
	"github.com/hpkotak/aichat/internal/repl"
)

var (
	modelFlag    string
	providerFlag string
)

// Package-level function variables for testability.
// Tests override these to avoid touching the real config file or stdin.
var (
	loadConfig           = config.Load
	ioIn       io.Reader = os.Stdin
	ioOut      io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "aichat",
	Short: "Chat with an LLM backend from the terminal",
	Long: `aichat is an interactive terminal chat client for LLM backends.

It speaks to OpenAI, Anthropic, or a local Ollama instance through one
configuration file (~/.aichat/config.yaml) and lets you attach project files
as context during a session.`,
	RunE:              runChat,
	DisableAutoGenTag: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "override the configured model")
	rootCmd.PersistentFlags().StringVar(&providerFlag, "provider", "", "override the configured provider")
}

func Execute() error {
	return rootCmd.Execute()
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		if errors.Is(err, config.ErrNotFound) {
			return fmt.Errorf("no config found at %s; create one and retry", config.Path())
		}
		return fmt.Errorf("loading config: %w", err)
	}

	if providerFlag != "" {
		cfg.Provider = providerFlag
	}
	if modelFlag != "" {
		cfg.Model = modelFlag
	}

	svc := llm.NewService()
	if err := svc.Initialize(cfg.ToProviderConfig()); err != nil {
		return fmt.Errorf("initializing %q: %w", cfg.Provider, err)
	}

	return repl.Run(svc, ioIn, ioOut)
}
