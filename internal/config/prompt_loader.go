package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads summarizer prompts from external files if file
// paths are specified. Inline prompts stay untouched.
func (c *Config) loadPromptsFromFiles() error {
	s := &c.Summarizer
	loaded := 0

	if s.SystemPromptFile != "" {
		content, err := loadPromptFromFile(s.SystemPromptFile, "system")
		if err != nil {
			return err
		}
		s.LoadedSystemPrompt = content
		loaded++
	}

	if s.UserPromptFile != "" {
		content, err := loadPromptFromFile(s.UserPromptFile, "user")
		if err != nil {
			return err
		}
		if !strings.Contains(content, "%s") {
			return fmt.Errorf("user summary prompt file '%s' must contain a %%s placeholder for the resume text", s.UserPromptFile)
		}
		s.LoadedUserPrompt = content
		loaded++
	}

	if loaded == 0 {
		log.Println("[CONFIG] No custom summary prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom summary prompts loaded: %d", loaded)
	}
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s summary prompt file '%s': %w", promptType, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s summary prompt file not found: %s", promptType, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s summary prompt file '%s': %w", promptType, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s summary prompt file '%s' is empty", promptType, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s summary prompt from file: %s (%d characters)",
		promptType, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType string) {
		if filePath == "" {
			return
		}
		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s summary prompt: %s", promptType, filePath))
			return
		}
		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s summary prompt file not found: %s", promptType, absPath))
		}
	}

	validateFile(c.Summarizer.SystemPromptFile, "system")
	validateFile(c.Summarizer.UserPromptFile, "user")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}
	return nil
}
