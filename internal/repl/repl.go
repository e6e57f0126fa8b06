// Package repl implements the interactive chat loop. It manages
// conversation history and per-turn file attachments on top of the LLM
// service.
//
// History is capped rather than summarized — token limits are the LLM's
// problem via context window, not ours.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hpkotak/aichat/internal/filectx"
	"github.com/hpkotak/aichat/internal/llm"
	"github.com/hpkotak/aichat/internal/provider"
)

const (
	chatTimeout    = 120 * time.Second
	maxHistoryMsgs = 50
)

const systemPrompt = `You are a helpful coding assistant running in a terminal.
Answer concisely. When the user attaches files, ground your answers in their
contents and refer to files by path.`

// collectFiles is a package-level function variable for testability.
var collectFiles = filectx.Collect

// Run starts the interactive chat loop against an initialized service.
func Run(svc *llm.Service, in io.Reader, out io.Writer) error {
	_, _ = fmt.Fprintf(out, "aichat — %s (%s)\n", svc.ProviderName(), svc.ModelName())
	_, _ = fmt.Fprintln(out, "Type 'exit' to quit, '/file <path>' to attach a file to the next turn.")
	_, _ = fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	var history []provider.ConversationMessage
	var pendingFiles []provider.FileContext

	for {
		_, _ = fmt.Fprint(out, "> ")

		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				_, _ = fmt.Fprintf(out, "\nInput error: %v\n", err)
				return err
			}
			_, _ = fmt.Fprintln(out)
			break // EOF (Ctrl+D)
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			_, _ = fmt.Fprintln(out, "Bye!")
			return nil
		}
		if path, ok := strings.CutPrefix(input, "/file "); ok {
			files, err := collectFiles(strings.TrimSpace(path))
			if err != nil {
				_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
				continue
			}
			pendingFiles = append(pendingFiles, files...)
			_, _ = fmt.Fprintf(out, "Attached %s to the next turn.\n\n", strings.TrimSpace(path))
			continue
		}

		chat := provider.ChatContext{
			SystemPrompt: systemPrompt,
			Messages:     history,
			Files:        pendingFiles,
		}

		result, err := send(svc, input, chat)
		if err != nil {
			_, _ = fmt.Fprintf(out, "Error: %v\n\n", err)
			continue
		}
		pendingFiles = nil

		now := time.Now()
		history = append(history,
			provider.ConversationMessage{Role: provider.RoleUser, Content: input, Timestamp: now},
			provider.ConversationMessage{Role: provider.RoleAssistant, Content: result.Content, Timestamp: now},
		)

		// Trim history if too long (keep most recent messages).
		if len(history) > maxHistoryMsgs {
			history = history[len(history)-maxHistoryMsgs:]
		}

		_, _ = fmt.Fprintf(out, "\n%s\n", result.Content)
		_, _ = fmt.Fprintf(out, "  [%s | %d prompt + %d completion = %d tokens]\n\n",
			result.Model,
			result.Usage.PromptTokens,
			result.Usage.CompletionTokens,
			result.Usage.TotalTokens,
		)
	}

	return nil
}

func send(svc *llm.Service, prompt string, chat provider.ChatContext) (provider.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), chatTimeout)
	defer cancel()

	return svc.GenerateResponse(ctx, prompt, chat)
}
