package observability

import (
	"context"
	"fmt"
	"time"

	"resumescan/internal/config"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the application metrics. The zero value records nothing,
// so callers never need to check whether observability is enabled.
type Metrics struct {
	AnalysesTotal    metric.Int64Counter
	AnalysisDuration metric.Float64Histogram
	OCRFallbacks     metric.Int64Counter

	SummariesTotal metric.Int64Counter
	SummaryTokens  metric.Int64Histogram

	RateLimitHits metric.Int64Counter
	RulesReloads  metric.Int64Counter

	enabled config.CustomMetricsConfig
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// NewMetrics creates every instrument on meter. Groups switched off in
// enabled are created but never recorded.
func NewMetrics(meter metric.Meter, enabled config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{enabled: enabled}

	if err := m.createAnalysisMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createSummarizerMetrics(meter); err != nil {
		return nil, err
	}
	if err := m.createInfrastructureMetrics(meter); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) createAnalysisMetrics(meter metric.Meter) error {
	var err error

	m.AnalysesTotal, err = meter.Int64Counter(
		"resumescan_analyses_total",
		metric.WithDescription("Total number of resume analyses"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analyses metric: %w", err)
	}

	m.AnalysisDuration, err = meter.Float64Histogram(
		"resumescan_analysis_duration_seconds",
		metric.WithDescription("Time spent analysing one resume"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create analysis duration metric: %w", err)
	}

	m.OCRFallbacks, err = meter.Int64Counter(
		"resumescan_ocr_fallbacks_total",
		metric.WithDescription("PDFs whose text layer was too short and went through OCR"),
	)
	if err != nil {
		return fmt.Errorf("failed to create OCR fallback metric: %w", err)
	}
	return nil
}

func (m *Metrics) createSummarizerMetrics(meter metric.Meter) error {
	var err error

	m.SummariesTotal, err = meter.Int64Counter(
		"resumescan_summaries_total",
		metric.WithDescription("Total number of summarizer invocations"),
	)
	if err != nil {
		return fmt.Errorf("failed to create summaries metric: %w", err)
	}

	m.SummaryTokens, err = meter.Int64Histogram(
		"resumescan_summary_token_usage",
		metric.WithDescription("Token usage for summary requests (input, output, total)"),
		metric.WithUnit("tokens"),
	)
	if err != nil {
		return fmt.Errorf("failed to create summary token metric: %w", err)
	}
	return nil
}

func (m *Metrics) createInfrastructureMetrics(meter metric.Meter) error {
	var err error

	m.RateLimitHits, err = meter.Int64Counter(
		"resumescan_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rate limit hits metric: %w", err)
	}

	m.RulesReloads, err = meter.Int64Counter(
		"resumescan_rules_reloads_total",
		metric.WithDescription("Total number of rule table reloads"),
	)
	if err != nil {
		return fmt.Errorf("failed to create rules reload metric: %w", err)
	}
	return nil
}

// RecordAnalysis counts one finished analysis. grade is empty on failure.
func (m *Metrics) RecordAnalysis(ctx context.Context, grade string, success bool, duration time.Duration) {
	if m == nil || m.AnalysesTotal == nil || !m.enabled.Analysis.Enabled {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("grade", grade),
		attribute.Bool("success", success),
	)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	if m.enabled.Analysis.TrackDuration {
		m.AnalysisDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.Bool("success", success)))
	}
}

// RecordOCRFallback counts one PDF routed through OCR.
func (m *Metrics) RecordOCRFallback(ctx context.Context) {
	if m == nil || m.OCRFallbacks == nil || !m.enabled.Analysis.Enabled || !m.enabled.Analysis.TrackOCR {
		return
	}
	m.OCRFallbacks.Add(ctx, 1)
}

// RecordSummary counts one summarizer call and its token usage.
func (m *Metrics) RecordSummary(ctx context.Context, success bool, usage *TokenUsage) {
	if m == nil || m.SummariesTotal == nil || !m.enabled.Summarizer.Enabled {
		return
	}
	m.SummariesTotal.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))

	if usage == nil || !m.enabled.Summarizer.TrackTokenUsage {
		return
	}
	for _, tt := range []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	} {
		m.SummaryTokens.Record(ctx, tt.value, metric.WithAttributes(attribute.String("token_type", tt.tokenType)))
	}
}

// RecordRateLimitHit counts one rejected request.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limitType string) {
	if m == nil || m.RateLimitHits == nil || !m.enabled.Infrastructure.Enabled || !m.enabled.Infrastructure.TrackRateLimits {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_type", limitType)))
}

// RecordRulesReload counts one rule table reload attempt.
func (m *Metrics) RecordRulesReload(ctx context.Context, success bool) {
	if m == nil || m.RulesReloads == nil || !m.enabled.Infrastructure.Enabled || !m.enabled.Infrastructure.TrackRulesReloads {
		return
	}
	m.RulesReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
