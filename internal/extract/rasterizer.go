package extract

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Pdftoppm renders pages with poppler's pdftoppm.
type Pdftoppm struct {
	Binary string
}

// NewPdftoppm returns a rasterizer using binary (default "pdftoppm").
func NewPdftoppm(binary string) *Pdftoppm {
	if binary == "" {
		binary = "pdftoppm"
	}
	return &Pdftoppm{Binary: binary}
}

// Rasterize renders page of pdfPath as PNG at dpi.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath string, page, dpi int) ([]byte, error) {
	if _, err := exec.LookPath(p.Binary); err != nil {
		return nil, fmt.Errorf("rasterizer %s not found: %w", p.Binary, err)
	}

	pageArg := fmt.Sprintf("%d", page)
	// #nosec G204 -- arguments are numbers and a path we created
	cmd := exec.CommandContext(ctx, p.Binary,
		"-png", "-r", fmt.Sprintf("%d", dpi),
		"-f", pageArg, "-l", pageArg, "-singlefile",
		pdfPath, "-")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("pdftoppm failed on page %d: %w: %s", page, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
