package utils

import (
	"fmt"
	"os"
	"strings"
)

// LoadPrompt loads instruction text from an exact file path
func LoadPrompt(filePath string) (string, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt %s: %w", filePath, err)
	}
	return strings.TrimSpace(string(content)), nil
}

// LoadPromptWithFallback loads instruction text from a file path, returning
// the fallback when the file is missing or unreadable
func LoadPromptWithFallback(filePath, fallback string) string {
	if filePath == "" {
		return fallback
	}
	if content, err := LoadPrompt(filePath); err == nil {
		return content
	}
	return fallback
}
