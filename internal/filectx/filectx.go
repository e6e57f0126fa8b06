// Package filectx collects files from disk into context entries attached to
// generation calls.
package filectx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hpkotak/aichat/internal/provider"
)

const maxFileBytes = 256 << 10

// kinds maps file extensions to context kinds. Unlisted extensions are
// plain text.
var kinds = map[string]string{
	".go":   "go",
	".py":   "python",
	".js":   "javascript",
	".ts":   "typescript",
	".sh":   "shell",
	".md":   "markdown",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".toml": "toml",
}

// Collect reads each path into a FileContext entry, preserving argument
// order.
func Collect(paths ...string) ([]provider.FileContext, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	entries := make([]provider.FileContext, 0, len(paths))
	for _, path := range paths {
		entry, err := read(path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func read(path string) (provider.FileContext, error) {
	info, err := os.Stat(path)
	if err != nil {
		return provider.FileContext{}, fmt.Errorf("reading context file: %w", err)
	}
	if info.IsDir() {
		return provider.FileContext{}, fmt.Errorf("context path %q is a directory", path)
	}
	if info.Size() > maxFileBytes {
		return provider.FileContext{}, fmt.Errorf("context file %q exceeds %d bytes", path, maxFileBytes)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return provider.FileContext{}, fmt.Errorf("reading context file: %w", err)
	}

	return provider.FileContext{
		Path:    path,
		Content: string(data),
		Kind:    kindFor(path),
	}, nil
}

func kindFor(path string) string {
	if kind, ok := kinds[strings.ToLower(filepath.Ext(path))]; ok {
		return kind
	}
	return "text"
}
