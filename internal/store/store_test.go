package store

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"resumescan/internal/errors"
)

func TestLocalStoreOpen(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cv.docx"), []byte("payload"), 0600))

	tests := []struct {
		name     string
		root     string
		path     string
		wantCode string
	}{
		{name: "absolute path", path: filepath.Join(dir, "cv.docx")},
		{name: "relative to root", root: dir, path: "cv.docx"},
		{name: "missing file", root: dir, path: "nope.pdf", wantCode: errors.ErrCodeFileNotFound},
		{name: "directory", path: dir, wantCode: errors.ErrCodeFileNotReadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, err := NewLocalStore(tt.root).Open(context.Background(), tt.path)
			if tt.wantCode != "" {
				require.Error(t, err)
				var appErr *errors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, tt.wantCode, appErr.Code)
				return
			}
			require.NoError(t, err)
			defer func() { _ = rc.Close() }()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "payload", string(data))
		})
	}
}

func TestLocalStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLocalStore("").Open(ctx, "whatever.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
