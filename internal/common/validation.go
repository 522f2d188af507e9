package common

import (
	"fmt"
	"runtime"
	"slices"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 {
		return nil // No restrictions configured
	}

	if slices.Contains(supportedFormats, format) {
		return nil
	}

	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ResolveWorkers returns the batch concurrency to use. A non-positive flag
// falls back to the configured value, then to the CPU count. The result
// never exceeds the number of files.
func ResolveWorkers(flag, configured, files int) int {
	workers := flag
	if workers <= 0 {
		workers = configured
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if files > 0 && workers > files {
		workers = files
	}
	return workers
}
