package ai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"resumescan/internal/config"
	"resumescan/internal/errors"
)

// Fixed summary texts returned instead of an error.
const (
	SummaryUnavailable = "AI summary model is unavailable."
	SummaryFailed      = "Could not generate a unique AI summary."
)

var lineBreaks = regexp.MustCompile(`\s*\n\s*`)

// SummaryService prepares resume text for the summarizer and turns every
// outcome into a displayable string.
type SummaryService struct {
	summarizer Summarizer
	config     config.SummarizerConfig
	logger     *errors.Logger
	onResult   func(success bool, usage *TokenUsage)
}

// NewSummaryService creates the service for the configured provider.
// Provider "none" yields a service that always reports the model as unavailable.
func NewSummaryService(cfg config.SummarizerConfig, logger *errors.Logger) (*SummaryService, error) {
	logger.Debug("Initializing summary service",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"temperature", cfg.Temperature,
		"timeout", cfg.Timeout,
		"max_retries", cfg.MaxRetries,
		"input_window", cfg.InputWindow)

	var summarizer Summarizer
	switch cfg.Provider {
	case "", config.ProviderNone:
	case config.ProviderGemini:
		gemini, err := NewGeminiSummarizer(cfg, logger)
		if err != nil {
			return nil, err
		}
		summarizer = gemini
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported summarizer provider: %s", cfg.Provider), nil)
	}

	return NewSummaryServiceWith(summarizer, cfg, logger), nil
}

// NewSummaryServiceWith wraps an existing Summarizer. A nil summarizer is
// treated as not loaded.
func NewSummaryServiceWith(summarizer Summarizer, cfg config.SummarizerConfig, logger *errors.Logger) *SummaryService {
	return &SummaryService{
		summarizer: summarizer,
		config:     cfg,
		logger:     logger,
	}
}

// OnResult registers a hook called after every summarizer invocation.
func (s *SummaryService) OnResult(fn func(success bool, usage *TokenUsage)) {
	s.onResult = fn
}

// Available reports whether a summarizer is loaded.
func (s *SummaryService) Available() bool {
	return s != nil && s.summarizer != nil
}

// Summarize returns a summary of the resume text. Failures never propagate:
// they produce SummaryUnavailable or SummaryFailed.
func (s *SummaryService) Summarize(ctx context.Context, resumeText string) string {
	if !s.Available() {
		return SummaryUnavailable
	}

	input := s.prepare(resumeText)
	summary, usage, err := s.summarizer.Summarize(ctx, input, s.config.MaxLength, s.config.MinLength)
	if s.onResult != nil {
		s.onResult(err == nil, usage)
	}
	if err != nil {
		s.logger.LogError(err, "Summary generation failed", "input_length", len(input))
		return SummaryFailed
	}

	if usage != nil {
		s.logger.Debug("Summary generated",
			"input_tokens", usage.InputTokens,
			"output_tokens", usage.OutputTokens,
			"total_tokens", usage.TotalTokens)
	}
	return strings.TrimSpace(summary)
}

// prepare flattens line breaks and cuts the text to the input window.
func (s *SummaryService) prepare(text string) string {
	flat := strings.TrimSpace(lineBreaks.ReplaceAllString(text, " "))
	return truncateRunes(flat, s.config.InputWindow)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Stats reports provider and breaker state for health endpoints.
func (s *SummaryService) Stats() map[string]any {
	if !s.Available() {
		return map[string]any{"provider": config.ProviderNone, "available": false}
	}
	stats := map[string]any{"provider": s.config.Provider, "available": true}
	if reporter, ok := s.summarizer.(interface{ Stats() map[string]any }); ok {
		for k, v := range reporter.Stats() {
			stats[k] = v
		}
	}
	return stats
}

// Close releases the underlying summarizer.
func (s *SummaryService) Close() error {
	if !s.Available() {
		return nil
	}
	return s.summarizer.Close()
}
