package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Tesseract runs the tesseract command line engine.
type Tesseract struct {
	Binary   string
	Language string
}

// NewTesseract returns an engine using binary (default "tesseract") and
// language (default "eng").
func NewTesseract(binary, language string) *Tesseract {
	if binary == "" {
		binary = "tesseract"
	}
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Binary: binary, Language: language}
}

// Check reports ErrEngineNotFound when the binary is not on PATH.
func (t *Tesseract) Check() error {
	if _, err := exec.LookPath(t.Binary); err != nil {
		return fmt.Errorf("%w: %s", ErrEngineNotFound, t.Binary)
	}
	return nil
}

// Recognize pipes image through tesseract and returns the recognized text.
func (t *Tesseract) Recognize(ctx context.Context, image []byte) (string, error) {
	if err := t.Check(); err != nil {
		return "", err
	}

	// #nosec G204 -- binary and language come from operator configuration
	cmd := exec.CommandContext(ctx, t.Binary, "stdin", "stdout", "-l", t.Language)
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tesseract failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
