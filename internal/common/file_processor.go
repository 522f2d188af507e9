package common

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"resumescan/internal/errors"
	"resumescan/internal/utils"
)

// FileProcessor handles common file operations
type FileProcessor struct {
	logger *errors.Logger
}

// NewFileProcessor creates a new file processor instance
func NewFileProcessor(logger *errors.Logger) *FileProcessor {
	if logger == nil {
		logger = errors.Discard()
	}
	return &FileProcessor{logger: logger}
}

// ReadFile reads content from a file with proper error handling
func (fp *FileProcessor) ReadFile(filename string) (string, error) {
	file, err := os.Open(filename) // #nosec G304 -- user supplied input path
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fp.logger.Warn("Failed to close file", "filename", filename, "error", err)
		}
	}()

	content, err := io.ReadAll(file)
	if err != nil {
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Failed to read file content: %s", filename), err)
	}

	return string(content), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	dir := filepath.Dir(filename)
	if dir != "." {
		err := os.MkdirAll(dir, 0750)
		if err != nil {
			return errors.NewIOError("DIRECTORY_CREATE_FAILED",
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	err := os.WriteFile(filename, []byte(content), 0600)
	if err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED",
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}

	return nil
}

// ValidateResumeFiles checks that every path exists and carries a
// supported resume extension.
func (fp *FileProcessor) ValidateResumeFiles(filenames ...string) error {
	if len(filenames) == 0 {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "At least one resume file is required", nil)
	}

	for _, filename := range filenames {
		if err := utils.ValidateInputFile(filename); err != nil {
			return errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err)
		}
		if !utils.IsResumeFile(filename) {
			return errors.NewExtractionError(errors.ErrCodeUnsupportedFormat,
				fmt.Sprintf("Unsupported resume format: %s (expected %s)",
					filename, strings.Join(utils.ResumeExtensions, ", ")), nil)
		}
	}
	return nil
}

// ReadJobDescription returns the job description text. A missing or
// unreadable file is not fatal: the analysis then runs against an inferred
// domain profile.
func (fp *FileProcessor) ReadJobDescription(filename string) string {
	if filename == "" {
		return ""
	}
	if !utils.IsTextFile(filename) {
		fp.logger.Warn("Job description may not be a text file", "filename", filename)
	}

	content, err := fp.ReadFile(filename)
	if err != nil {
		fp.logger.Warn("Job description not readable, falling back to domain inference",
			"filename", filename, "error", err)
		return ""
	}
	return content
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout is valid
	}

	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}

	return nil
}
