// Package analyzer runs the full resume pipeline: extraction, segmentation,
// job-fit matching, issue compilation, scoring and recommendations.
package analyzer

import (
	"context"
	"strings"
	"sync"
	"time"

	"resumescan/internal/ai"
	"resumescan/internal/errors"
	"resumescan/internal/issues"
	"resumescan/internal/match"
	"resumescan/internal/nlp"
	"resumescan/internal/observability"
	"resumescan/internal/recommend"
	"resumescan/internal/rules"
	"resumescan/internal/scoring"
	"resumescan/internal/sections"
	"resumescan/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// GenericDomain names the fallback profile used when no domain is evident.
const GenericDomain = "generic"

// Extractor turns a document into normalized text.
type Extractor interface {
	Extract(ctx context.Context, doc types.Document) (types.RawText, error)
}

// Summarizer produces the free-text summary of a resume. It never fails;
// problems are reported through the returned text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) string
}

// Request is one analysis. A blank JobDescription triggers domain inference.
type Request struct {
	Path           string
	JobDescription string
}

// Analyzer wires the pipeline stages together. It is safe for concurrent use.
type Analyzer struct {
	extractor  Extractor
	lemmatizer nlp.Lemmatizer
	summarizer Summarizer
	rules      rules.Source
	matcher    *match.Matcher
	logger     *errors.Logger
	metrics    *observability.Metrics

	mu       sync.Mutex
	prepared *prepared
}

// prepared holds the stages compiled from one rule table.
type prepared struct {
	table     *rules.Table
	segmenter *sections.Segmenter
	compiler  *issues.Compiler
}

// New creates an analyzer. summarizer may be nil, in which case every report
// carries the unavailable summary text.
func New(extractor Extractor, lemmatizer nlp.Lemmatizer, summarizer Summarizer, source rules.Source, logger *errors.Logger) *Analyzer {
	if logger == nil {
		logger = errors.Discard()
	}
	return &Analyzer{
		extractor:  extractor,
		lemmatizer: lemmatizer,
		summarizer: summarizer,
		rules:      source,
		matcher:    match.New(lemmatizer),
		logger:     logger,
		metrics:    &observability.Metrics{},
	}
}

// WithMetrics records analysis outcomes on m.
func (a *Analyzer) WithMetrics(m *observability.Metrics) *Analyzer {
	if m != nil {
		a.metrics = m
	}
	return a
}

// RulesVersion returns the version of the active rule table.
func (a *Analyzer) RulesVersion() string {
	return a.rules.Current().Version
}

// stages returns the compiled stages for table, rebuilding them only when
// the rule table has been swapped.
func (a *Analyzer) stages(table *rules.Table) *prepared {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.prepared == nil || a.prepared.table != table {
		a.prepared = &prepared{
			table:     table,
			segmenter: sections.New(table),
			compiler:  issues.New(table, a.lemmatizer),
		}
	}
	return a.prepared
}

// Analyze runs the pipeline for one resume. Only extraction can fail; every
// later stage degrades instead of erroring.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*types.Report, error) {
	ctx, span := otel.Tracer("resumescan/analyzer").Start(ctx, "analyzer.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("resume.path", req.Path))

	start := time.Now()
	report, err := a.analyze(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		a.metrics.RecordAnalysis(ctx, "", false, time.Since(start))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("report.score", report.OverallScore),
		attribute.String("report.grade", report.Grade),
	)
	a.metrics.RecordAnalysis(ctx, report.Grade, true, time.Since(start))
	a.logger.Info("Resume analysed",
		"file", req.Path,
		"score", report.OverallScore,
		"grade", report.Grade,
		"duration_ms", time.Since(start).Milliseconds())
	return report, nil
}

func (a *Analyzer) analyze(ctx context.Context, req Request) (*types.Report, error) {
	table := a.rules.Current()
	st := a.stages(table)

	raw, err := a.extractor.Extract(ctx, types.Document{Path: req.Path})
	if err != nil {
		a.logger.LogError(err, "Extraction failed", "file", req.Path)
		return nil, err
	}
	if strings.TrimSpace(raw.Text) == "" {
		err := errors.NewExtractionError(errors.ErrCodeEmptyExtractedText, "no text could be extracted", nil).
			WithContext("file", req.Path)
		a.logger.LogError(err, "Extraction produced no text", "file", req.Path)
		return nil, err
	}

	jd := strings.TrimSpace(req.JobDescription)
	domain := ""
	if jd == "" {
		domain, jd = InferDomain(raw.Text, table)
		a.logger.Debug("Inferred job domain", "file", req.Path, "domain", domain)
	}

	sectionMap := st.segmenter.Segment(raw.Text)
	fit := a.matcher.Match(raw.Text, jd)
	found := st.compiler.Compile(sectionMap, raw.Text)
	if raw.GraphicsHeavy {
		found.FormattingIssues = append(found.FormattingIssues, issues.GraphicsHeavy)
	}

	score, grade := scoring.Score(found, fit.Score, table.Scoring)

	checks := types.ClassifiedChecks{
		FormattingATS: types.IssueCategory{Issues: nonNil(found.FormattingIssues)},
		ContentImpact: types.IssueCategory{Issues: nonNil(found.ContentIssues)},
		JobFit: types.MatchResult{
			Score:           fit.Score,
			MissingKeywords: nonNil(fit.MissingKeywords),
			OverlapKeywords: nonNil(fit.OverlapKeywords),
		},
		TechFreshness: types.TechFreshness{OutdatedTech: nonNil(found.OutdatedTech)},
	}

	return &types.Report{
		OverallScore:    score,
		Grade:           grade,
		Summary:         a.summarize(ctx, raw.Text),
		Checks:          checks,
		Recommendations: recommend.Generate(checks, table.Thresholds),
		InferredDomain:  domain,
		GraphicsHeavy:   raw.GraphicsHeavy,
		RulesVersion:    table.Version,
	}, nil
}

func (a *Analyzer) summarize(ctx context.Context, text string) string {
	if a.summarizer == nil {
		return ai.SummaryUnavailable
	}
	return a.summarizer.Summarize(ctx, text)
}

// InferDomain picks the job domain with the most distinct keywords present
// in text and returns its name and default job description. A keyword
// counts once when it occurs as a substring of the lowercased text. Ties go
// to the domain listed first; a best count below the table's minimum
// selects the generic profile.
func InferDomain(text string, table *rules.Table) (string, string) {
	lower := strings.ToLower(text)

	best, bestHits := -1, 0
	for i, d := range table.Domains {
		hits := 0
		for _, kw := range d.Keywords {
			if kw == "" {
				continue
			}
			if strings.Contains(lower, kw) {
				hits++
			}
		}
		if hits > bestHits {
			best, bestHits = i, hits
		}
	}

	if best < 0 || bestHits < table.Thresholds.DomainMinHits {
		return GenericDomain, table.GenericJobDescription
	}
	d := table.Domains[best]
	return d.Name, d.JobDescription
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
