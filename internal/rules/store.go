package rules

import (
	"sync/atomic"

	"resumescan/internal/errors"
)

// Source hands out the rule table an analysis should use. Callers take one
// snapshot per analysis so a reload never changes rules mid-run.
type Source interface {
	Current() *Table
}

type staticSource struct{ table *Table }

func (s staticSource) Current() *Table { return s.table }

// Static returns a Source that always yields t.
func Static(t *Table) Source {
	return staticSource{table: t}
}

// Store holds the active rule table and swaps it atomically on reload.
type Store struct {
	current  atomic.Pointer[Table]
	path     string
	logger   *errors.Logger
	onReload func(ok bool)
}

// NewStore creates a store serving initial. path is the file Reload reads.
func NewStore(initial *Table, path string, logger *errors.Logger) *Store {
	s := &Store{path: path, logger: logger}
	s.current.Store(initial)
	return s
}

// OnReload registers a hook called after every reload attempt.
func (s *Store) OnReload(fn func(ok bool)) {
	s.onReload = fn
}

// Current returns the active table. Tables are never mutated after they are
// published.
func (s *Store) Current() *Table {
	return s.current.Load()
}

// Swap publishes t as the active table.
func (s *Store) Swap(t *Table) {
	s.current.Store(t)
}

// Path returns the rules file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Reload re-reads the rules file. On failure the previous table stays
// active.
func (s *Store) Reload() error {
	table, err := Load(s.path)
	if err != nil {
		if s.logger != nil {
			s.logger.LogError(err, "Rules reload failed, keeping previous table",
				"active_version", s.Current().Version)
		}
		s.notify(false)
		return err
	}

	previous := s.Current().Version
	s.Swap(table)
	if s.logger != nil {
		s.logger.Info("Rules reloaded", "previous_version", previous, "version", table.Version)
	}
	s.notify(true)
	return nil
}

func (s *Store) notify(ok bool) {
	if s.onReload != nil {
		s.onReload(ok)
	}
}
