// Package store gives the extractor read access to resume documents.
package store

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"resumescan/internal/errors"
)

// DocumentStore opens resume documents by path.
type DocumentStore interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// LocalStore reads documents from the local filesystem. When Root is set,
// relative paths resolve against it.
type LocalStore struct {
	Root string
}

// NewLocalStore creates a filesystem store.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

// Open returns a reader for path. The caller closes it.
func (s *LocalStore) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved := s.resolve(path)
	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewIOError(errors.ErrCodeFileNotFound, "document not found", err).
				WithContext("file", path)
		}
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot stat document", err).
			WithContext("file", path)
	}
	if info.IsDir() {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "path is a directory", nil).
			WithContext("file", path)
	}

	f, err := os.Open(resolved) // #nosec G304 -- path is chosen by the operator or a server temp file
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "cannot open document", err).
			WithContext("file", path)
	}
	return f, nil
}

func (s *LocalStore) resolve(path string) string {
	if s.Root == "" || filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(s.Root, path)
}
