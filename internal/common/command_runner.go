package common

import (
	"context"
	"fmt"

	"resumescan/internal/ai"
	"resumescan/internal/analyzer"
	"resumescan/internal/config"
	"resumescan/internal/errors"
	"resumescan/internal/extract"
	"resumescan/internal/nlp"
	"resumescan/internal/observability"
	"resumescan/internal/rules"
	"resumescan/internal/store"
	"resumescan/internal/types"
)

// Runtime wires the analysis pipeline from configuration. Both the CLI and
// the HTTP server run on one.
type Runtime struct {
	Config       *config.Config
	Rules        *rules.Store
	RulesWatcher *rules.Watcher
	Lemmatizer   *nlp.Pipeline
	Summaries    *ai.SummaryService
	Extractor    *extract.Extractor
	Analyzer     *analyzer.Analyzer

	logger *errors.Logger
}

// NewRuntime loads rules and models and assembles the analyzer. metrics may
// be nil. A lemmatizer that fails to load is logged and left unloaded so
// keyword matching degrades instead of failing the run.
func NewRuntime(cfg *config.Config, logger *errors.Logger, metrics *observability.Metrics) (*Runtime, error) {
	if logger == nil {
		logger = errors.Discard()
	}

	table, err := rules.Load(cfg.Rules.File)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidRules,
			fmt.Sprintf("Failed to load rules: %s", cfg.Rules.File), err)
	}
	ruleStore := rules.NewStore(table, cfg.Rules.File, logger)
	ruleStore.OnReload(func(ok bool) {
		metrics.RecordRulesReload(context.Background(), ok)
	})
	logger.Debug("Rules loaded", "version", table.Version, "file", cfg.Rules.File)

	lemmatizer := nlp.NewPipeline()
	if err := lemmatizer.Load(); err != nil {
		logger.Warn("Lemmatizer unavailable, keyword matching disabled", "error", err)
	}

	summaries, err := ai.NewSummaryService(cfg.Summarizer, logger)
	if err != nil {
		lemmatizer.Close()
		return nil, err
	}
	summaries.OnResult(func(success bool, usage *ai.TokenUsage) {
		metrics.RecordSummary(context.Background(), success, (*observability.TokenUsage)(usage))
	})

	extractor := newExtractor(cfg.Extract, logger)
	extractor.OnOCRFallback(func() {
		metrics.RecordOCRFallback(context.Background())
	})

	a := analyzer.New(extractor, lemmatizer, summaries, ruleStore, logger).WithMetrics(metrics)

	return &Runtime{
		Config:     cfg,
		Rules:      ruleStore,
		Lemmatizer: lemmatizer,
		Summaries:  summaries,
		Extractor:  extractor,
		Analyzer:   a,
		logger:     logger,
	}, nil
}

// newExtractor builds the extractor; the OCR tools are only attached when
// OCR is enabled so a disabled engine stays a nil interface.
func newExtractor(cfg config.ExtractConfig, logger *errors.Logger) *extract.Extractor {
	var (
		engine     extract.OCREngine
		rasterizer extract.Rasterizer
	)
	if cfg.OCR.Enabled {
		engine = extract.NewTesseract(cfg.OCR.Binary, cfg.OCR.Language)
		rasterizer = extract.NewPdftoppm(cfg.OCR.RasterizerBinary)
	}

	return extract.New(store.NewLocalStore(""), engine, rasterizer, extract.Config{
		MinTextChars: cfg.MinTextChars,
		OCREnabled:   cfg.OCR.Enabled,
		DPI:          cfg.OCR.DPI,
	}, logger)
}

// StartRulesWatcher enables hot reload of the rules file. It is a no-op
// when no rules file is configured or watching is off.
func (rt *Runtime) StartRulesWatcher() error {
	if !rt.Config.Rules.Watch || rt.Config.Rules.File == "" {
		return nil
	}

	watcher, err := rules.NewWatcher(rt.Rules, rt.Config.Rules.DebounceDelay, rt.logger)
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start rules watcher: %w", err)
	}
	rt.RulesWatcher = watcher
	return nil
}

// Close stops the watcher and releases models.
func (rt *Runtime) Close() {
	if rt.RulesWatcher != nil {
		if err := rt.RulesWatcher.Stop(); err != nil {
			rt.logger.Warn("Failed to stop rules watcher", "error", err)
		}
	}
	if err := rt.Summaries.Close(); err != nil {
		rt.logger.Warn("Failed to close summarizer", "error", err)
	}
	rt.Lemmatizer.Close()
}

// AnalyzeOptions are the per-invocation settings of the analyze command.
type AnalyzeOptions struct {
	Output             CommandConfig
	JobDescriptionFile string
	Workers            int
}

// RunAnalyzeCommand analyzes one resume into a Report, or several into a
// BatchReport, and writes the formatted result.
func RunAnalyzeCommand(ctx context.Context, rt *Runtime, opts AnalyzeOptions, args []string) error {
	fileProcessor := NewFileProcessor(rt.logger)
	outputHandler := NewOutputHandler(rt.logger)

	if err := fileProcessor.ValidateResumeFiles(args...); err != nil {
		return err
	}
	jobDescription := fileProcessor.ReadJobDescription(opts.JobDescriptionFile)

	rt.logger.Info("Starting resume analysis",
		"resumes", len(args),
		"job_description_chars", len(jobDescription),
		"rules_version", rt.Analyzer.RulesVersion(),
		"format", opts.Output.OutputFormat)

	if len(args) == 1 {
		report, err := rt.Analyzer.Analyze(ctx, analyzer.Request{Path: args[0], JobDescription: jobDescription})
		if err != nil {
			return err
		}
		return outputHandler.HandleOutput(report, opts.Output)
	}

	batch := rt.Analyzer.AnalyzeBatch(ctx, args, jobDescription, opts.Workers)
	if err := outputHandler.HandleOutput(batch, opts.Output); err != nil {
		return err
	}
	return batchError(batch)
}

// batchError reports a failure only when no item of the batch succeeded.
func batchError(batch types.BatchReport) error {
	failed := 0
	for _, item := range batch.Items {
		if item.Error != "" {
			failed++
		}
	}
	if failed > 0 && failed == len(batch.Items) {
		return errors.NewExtractionError(errors.ErrCodeExtractionFailed,
			fmt.Sprintf("All %d resumes failed to analyze", failed), nil)
	}
	return nil
}
