// Package extract reads resume documents and returns their normalized text.
// PDFs with little or no text layer fall back to OCR.
package extract

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"resumescan/internal/errors"
	"resumescan/internal/store"
	"resumescan/internal/types"
)

// Config controls extraction thresholds.
type Config struct {
	// MinTextChars is the stripped text-layer length below which a PDF is
	// treated as image based.
	MinTextChars int
	// OCREnabled turns the image fallback on.
	OCREnabled bool
	// DPI is the rasterization resolution handed to the OCR engine.
	DPI int
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{MinTextChars: 150, OCREnabled: true, DPI: 300}
}

// Extractor turns documents into RawText.
type Extractor struct {
	store      store.DocumentStore
	ocr        OCREngine
	rasterizer Rasterizer
	cfg        Config
	logger     *errors.Logger

	textLayer     func(data []byte) (string, int, error)
	onOCRFallback func()
}

// New creates an extractor. ocr and rasterizer may be nil when OCR is
// disabled.
func New(st store.DocumentStore, ocr OCREngine, rasterizer Rasterizer, cfg Config, logger *errors.Logger) *Extractor {
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	return &Extractor{
		store:      st,
		ocr:        ocr,
		rasterizer: rasterizer,
		cfg:        cfg,
		logger:     logger,
		textLayer:  readPDFTextLayer,
	}
}

// OnOCRFallback registers a hook run every time a PDF is sent to OCR.
func (e *Extractor) OnOCRFallback(fn func()) {
	e.onOCRFallback = fn
}

// DetectFormat maps a file extension to a supported format.
func DetectFormat(path string) (types.Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return types.FormatPDF, nil
	case ".docx":
		return types.FormatDOCX, nil
	default:
		return "", errors.NewExtractionError(errors.ErrCodeUnsupportedFormat, "unsupported file extension", nil).
			WithContext("file", path)
	}
}

// Extract returns the normalized text of doc. On failure the returned
// RawText is empty.
func (e *Extractor) Extract(ctx context.Context, doc types.Document) (types.RawText, error) {
	format := doc.Format
	if format == "" {
		detected, err := DetectFormat(doc.Path)
		if err != nil {
			return types.RawText{}, err
		}
		format = detected
	}

	data, err := e.read(ctx, doc.Path)
	if err != nil {
		return types.RawText{}, err
	}

	switch format {
	case types.FormatPDF:
		return e.extractPDF(ctx, doc.Path, data)
	case types.FormatDOCX:
		text, err := readDocxText(data)
		if err != nil {
			return types.RawText{}, extractionFailed(doc.Path, err)
		}
		return types.RawText{Text: Normalize(text)}, nil
	default:
		return types.RawText{}, errors.NewExtractionError(errors.ErrCodeUnsupportedFormat,
			fmt.Sprintf("unsupported format %q", format), nil).WithContext("file", doc.Path)
	}
}

func (e *Extractor) read(ctx context.Context, path string) ([]byte, error) {
	rc, err := e.store.Open(ctx, path)
	if err != nil {
		return nil, extractionFailed(path, err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, extractionFailed(path, err)
	}
	return data, nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string, data []byte) (types.RawText, error) {
	text, pages, err := e.textLayer(data)
	if err != nil {
		return types.RawText{}, extractionFailed(path, err)
	}

	chars := utf8.RuneCountInString(strings.TrimSpace(text))
	if chars >= e.cfg.MinTextChars {
		return types.RawText{Text: Normalize(text)}, nil
	}

	e.logger.Info("Low text content detected, attempting OCR",
		"file", path, "text_chars", chars, "pages", pages)
	if e.onOCRFallback != nil {
		e.onOCRFallback()
	}

	if !e.cfg.OCREnabled || e.ocr == nil || e.rasterizer == nil {
		e.logger.Warn("OCR disabled, keeping text layer output", "file", path)
		return types.RawText{Text: Normalize(text), GraphicsHeavy: true}, nil
	}

	ocrText, err := e.ocrDocument(ctx, data, pages)
	if err != nil {
		if errors.Is(err, errors.ErrOCREngineMissing) {
			return types.RawText{}, err
		}
		return types.RawText{}, extractionFailed(path, err)
	}

	e.logger.Info("OCR processing complete", "file", path)
	return types.RawText{Text: Normalize(ocrText), GraphicsHeavy: true}, nil
}

func extractionFailed(path string, cause error) error {
	return errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to extract text", cause).
		WithContext("file", path)
}
