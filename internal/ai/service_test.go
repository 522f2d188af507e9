package ai

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"resumescan/internal/config"
	"resumescan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSummarizer struct {
	summary string
	err     error
	usage   *TokenUsage
	inputs  []string
	bounds  [][2]int
	closed  bool
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, maxLength, minLength int) (string, *TokenUsage, error) {
	f.inputs = append(f.inputs, text)
	f.bounds = append(f.bounds, [2]int{maxLength, minLength})
	return f.summary, f.usage, f.err
}

func (f *fakeSummarizer) Close() error {
	f.closed = true
	return nil
}

func serviceConfig(window int) config.SummarizerConfig {
	return config.SummarizerConfig{Provider: "fake", InputWindow: window, MaxLength: 130, MinLength: 40}
}

func TestSummaryServiceUnavailable(t *testing.T) {
	svc, err := NewSummaryService(config.SummarizerConfig{Provider: config.ProviderNone}, errors.Discard())
	require.NoError(t, err)

	assert.False(t, svc.Available())
	assert.Equal(t, SummaryUnavailable, svc.Summarize(context.Background(), "anything"))
	assert.Equal(t, false, svc.Stats()["available"])
	assert.NoError(t, svc.Close())

	var nilService *SummaryService
	assert.Equal(t, SummaryUnavailable, nilService.Summarize(context.Background(), "anything"))
}

func TestSummaryServiceUnknownProvider(t *testing.T) {
	_, err := NewSummaryService(config.SummarizerConfig{Provider: "openai"}, errors.Discard())
	require.Error(t, err)

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeInvalidConfig, appErr.Code)
}

func TestSummaryServiceFlattensAndTruncates(t *testing.T) {
	fake := &fakeSummarizer{summary: " Short summary. "}
	svc := NewSummaryServiceWith(fake, serviceConfig(20), errors.Discard())

	got := svc.Summarize(context.Background(), "  Jane Doe \n\n  Engineer\t\n Go, Python, Kubernetes")
	assert.Equal(t, "Short summary.", got)

	require.Len(t, fake.inputs, 1)
	assert.Equal(t, "Jane Doe Engineer Go", fake.inputs[0])
	assert.Equal(t, [2]int{130, 40}, fake.bounds[0])
}

func TestSummaryServiceWindowCountsRunes(t *testing.T) {
	fake := &fakeSummarizer{summary: "ok"}
	svc := NewSummaryServiceWith(fake, serviceConfig(3), errors.Discard())

	svc.Summarize(context.Background(), "éèêëě")
	assert.Equal(t, "éèê", fake.inputs[0])
}

func TestSummaryServiceFailure(t *testing.T) {
	fake := &fakeSummarizer{err: stderrors.New("quota exceeded")}
	svc := NewSummaryServiceWith(fake, serviceConfig(2048), errors.Discard())

	var results []bool
	svc.OnResult(func(success bool, _ *TokenUsage) { results = append(results, success) })

	assert.Equal(t, SummaryFailed, svc.Summarize(context.Background(), "text"))

	fake.err = nil
	fake.summary = "fine"
	fake.usage = &TokenUsage{TotalTokens: 10}
	assert.Equal(t, "fine", svc.Summarize(context.Background(), "text"))

	assert.Equal(t, []bool{false, true}, results)
}

func TestSummaryServiceStatsAndClose(t *testing.T) {
	generate, _ := scriptedGenerate("ok")
	gemini := newTestSummarizer(testSummarizerConfig(), generate)
	svc := NewSummaryServiceWith(gemini, testSummarizerConfig(), errors.Discard())

	stats := svc.Stats()
	assert.Equal(t, true, stats["available"])
	assert.Equal(t, config.ProviderGemini, stats["provider"])
	assert.Equal(t, "gemini-test", stats["model"])

	fake := &fakeSummarizer{}
	require.NoError(t, NewSummaryServiceWith(fake, serviceConfig(10), errors.Discard()).Close())
	assert.True(t, fake.closed)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abcdef", 3))
	assert.Equal(t, "ab", truncateRunes("ab", 3))
	assert.Equal(t, "abcdef", truncateRunes("abcdef", 0))
	assert.Equal(t, strings.Repeat("x", 2048), truncateRunes(strings.Repeat("x", 3000), 2048))
}
