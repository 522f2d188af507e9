package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsResumeFile(t *testing.T) {
	tests := map[string]bool{
		"cv.pdf":          true,
		"CV.PDF":          true,
		"jane doe.docx":   true,
		"resume.doc":      false,
		"resume.txt":      false,
		"resume":          false,
		"archive.pdf.zip": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsResumeFile(name), name)
	}
}

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "cv.pdf")
	require.NoError(t, os.WriteFile(file, []byte("%PDF"), 0600))

	assert.NoError(t, ValidateInputFile(file))
	assert.Error(t, ValidateInputFile(""))
	assert.Error(t, ValidateInputFile(dir))
	assert.ErrorContains(t, ValidateInputFile(filepath.Join(dir, "absent.pdf")), "does not exist")
}

func TestValidateOutputFileCreatesDirectory(t *testing.T) {
	target := filepath.Join(t.TempDir(), "reports", "nested", "out.json")
	require.NoError(t, ValidateOutputFile(target))

	info, err := os.Stat(filepath.Dir(target))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.NoError(t, ValidateOutputFile(""))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "16.0 MB", FormatFileSize(16<<20))
}
