package extract

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"resumescan/internal/errors"
)

// ErrEngineNotFound is returned by an OCREngine whose backing program is
// not installed.
var ErrEngineNotFound = stderrors.New("ocr engine not found")

// OCREngine recognizes the text in a rendered page image.
type OCREngine interface {
	Recognize(ctx context.Context, image []byte) (string, error)
}

// Checker is implemented by engines that can report availability up
// front, before any page is rendered.
type Checker interface {
	Check() error
}

// Rasterizer renders one page of a PDF file to an image.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error)
}

// ocrDocument renders every page and joins the recognized text with
// newlines. pagesHint is used when pdfcpu cannot count the pages.
func (e *Extractor) ocrDocument(ctx context.Context, data []byte, pagesHint int) (string, error) {
	if checker, ok := e.ocr.(Checker); ok {
		if err := checker.Check(); err != nil {
			return "", ocrError(err)
		}
	}

	dir, err := os.MkdirTemp("", "resumescan-ocr-*")
	if err != nil {
		return "", fmt.Errorf("failed to create ocr workspace: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	pdfPath := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(pdfPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to stage pdf for ocr: %w", err)
	}

	pages, err := pageCount(pdfPath)
	if err != nil {
		e.logger.Debug("pdfcpu page count failed, using text layer count", "error", err, "pages", pagesHint)
		pages = pagesHint
	}

	var sb strings.Builder
	for page := 1; page <= pages; page++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		image, err := e.rasterizer.Rasterize(ctx, pdfPath, page, e.cfg.DPI)
		if err != nil {
			return "", fmt.Errorf("failed to rasterize page %d: %w", page, err)
		}
		text, err := e.ocr.Recognize(ctx, image)
		if err != nil {
			return "", ocrError(err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String()), nil
}

func ocrError(err error) error {
	if stderrors.Is(err, ErrEngineNotFound) {
		return errors.NewExtractionError(errors.ErrCodeOCREngineMissing, "ocr engine is not installed", err)
	}
	return fmt.Errorf("ocr failed: %w", err)
}
