package ai

import "context"

// Summarizer produces a short abstractive summary of a resume.
// maxLength and minLength are word bounds passed on to the model.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, *TokenUsage, error)
	Close() error
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}
