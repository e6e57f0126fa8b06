package provider

import (
	"fmt"
	"strings"
)

const fileContextHeader = "The following project files are provided as context:"

// BuildMessages assembles the outgoing message sequence: an optional leading
// system entry, conversation history with roles preserved in order, then the
// current prompt as the final user turn.
func BuildMessages(systemPrompt string, history []ConversationMessage, prompt string) []Message {
	msgs := make([]Message, 0, len(history)+2)
	if strings.TrimSpace(systemPrompt) != "" {
		msgs = append(msgs, Message{Role: RoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		msgs = append(msgs, Message{Role: m.Role, Content: m.Content})
	}
	msgs = append(msgs, Message{Role: RoleUser, Content: prompt})
	return msgs
}

// FormatFileContext renders file entries as a delimited block: a fixed
// header, then one fenced section per file named by its path. Returns ""
// when there are no files.
func FormatFileContext(files []FileContext) string {
	if len(files) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(fileContextHeader)
	b.WriteString("\n")
	for _, f := range files {
		_, _ = fmt.Fprintf(&b, "\n```%s\n%s\n```\n", f.Path, f.Content)
	}
	return b.String()
}

// appendFileContext extends the final outgoing user turn with the rendered
// file block. The block is part of that turn's content, never a separate
// message.
func appendFileContext(msgs []Message, files []FileContext) []Message {
	block := FormatFileContext(files)
	if block == "" || len(msgs) == 0 {
		return msgs
	}
	last := len(msgs) - 1
	msgs[last].Content += "\n\n" + block
	return msgs
}
