package ai

import (
	"context"
	"crypto/rand"
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"resumescan/internal/config"
	"resumescan/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type generateFunc func(ctx context.Context, model, prompt string, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// GeminiSummarizer implements Summarizer with Google Gemini
type GeminiSummarizer struct {
	config         config.SummarizerConfig
	circuitBreaker *SummaryCircuitBreaker
	logger         *errors.Logger
	generate       generateFunc
	backoff        func(attempt int) time.Duration
}

var _ Summarizer = (*GeminiSummarizer)(nil)

// NewGeminiSummarizer creates a Gemini-backed summarizer
func NewGeminiSummarizer(cfg config.SummarizerConfig, logger *errors.Logger) (*GeminiSummarizer, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	generate := func(ctx context.Context, model, prompt string, gc *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
		return client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	}
	return newGeminiSummarizer(cfg, generate, logger), nil
}

func newGeminiSummarizer(cfg config.SummarizerConfig, generate generateFunc, logger *errors.Logger) *GeminiSummarizer {
	return &GeminiSummarizer{
		config:         cfg,
		circuitBreaker: NewSummaryCircuitBreaker(config.ProviderGemini, cfg.CircuitBreaker, logger),
		logger:         logger,
		generate:       generate,
		backoff:        backoffDelay,
	}
}

// Summarize asks the model for a summary of text within the given word bounds.
func (g *GeminiSummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumescan.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini.summarize")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", config.ProviderGemini),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(g.config.Temperature)),
		attribute.Int("input.length", len(text)),
	)

	if g.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.config.Timeout)
		defer cancel()
	}

	systemPrompt := resolvePrompt(g.config.LoadedSystemPrompt, g.config.SystemPrompt, DefaultSystemPrompt) +
		fmt.Sprintf(lengthInstruction, minLength, maxLength)
	userPrompt := fmt.Sprintf(resolvePrompt(g.config.LoadedUserPrompt, g.config.UserPrompt, DefaultUserPrompt), text)

	genaiConfig := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
	}
	if g.config.Temperature > 0 {
		temperature := g.config.Temperature
		genaiConfig.Temperature = &temperature
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, "summarize", func() (*genai.GenerateContentResponse, error) {
			return g.generate(ctx, g.config.Model, userPrompt, genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to generate summary", err)
	}

	summary := ""
	if result != nil {
		summary = strings.TrimSpace(result.Text())
	}
	if summary == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Model returned an empty summary", nil)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true), attribute.Int("output.length", len(summary)))
	return summary, tokenUsage, nil
}

// executeWithRetry executes an AI operation with retry logic and exponential backoff
func (g *GeminiSummarizer) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	var lastErr error

	for attempt := 0; attempt <= g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", g.config.MaxRetries,
				"error", lastErr.Error())

			select {
			case <-time.After(g.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Auth and invalid input errors will not improve on retry.
		if !isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"max_retries", g.config.MaxRetries)

	return nil, fmt.Errorf("operation '%s' failed: %w", operation, lastErr)
}

// backoffDelay is 2^(attempt-1) seconds plus up to 10% jitter, capped at 30s.
func backoffDelay(attempt int) time.Duration {
	baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
	jitter := time.Duration(0)
	if jitterMax := int64(float64(baseDelay) * 0.1); jitterMax > 0 {
		if jitterBig, err := rand.Int(rand.Reader, big.NewInt(jitterMax)); err == nil {
			jitter = time.Duration(jitterBig.Int64())
		}
	}
	return min(baseDelay+jitter, 30*time.Second)
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Timeouts and connection failures
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	var genaiErr genai.APIError
	if stderrors.As(err, &genaiErr) {
		switch genaiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// Stats returns circuit breaker statistics
func (g *GeminiSummarizer) Stats() map[string]any {
	return map[string]any{
		"provider":        config.ProviderGemini,
		"model":           g.config.Model,
		"circuit_breaker": g.circuitBreaker.GetStats(),
		"healthy":         g.circuitBreaker.IsHealthy(),
	}
}

// Close implements Summarizer. The genai client holds no resources in
// single-shot usage.
func (g *GeminiSummarizer) Close() error {
	return nil
}
