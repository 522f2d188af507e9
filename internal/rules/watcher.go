package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumescan/internal/errors"
)

// Watcher reloads a Store whenever its rules file changes on disk.
type Watcher struct {
	mu sync.RWMutex

	store       *Store
	file        string
	lastModTime time.Time

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan   chan struct{}
	reloadChan chan struct{}

	logger  *errors.Logger
	running bool
}

// NewWatcher creates a watcher for the file backing store.
func NewWatcher(store *Store, debounceDelay time.Duration, logger *errors.Logger) (*Watcher, error) {
	if store.Path() == "" {
		return nil, fmt.Errorf("rules store has no backing file to watch")
	}
	if debounceDelay <= 0 {
		debounceDelay = time.Second
	}

	return &Watcher{
		store:         store,
		file:          store.Path(),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}, nil
}

// Start begins watching the rules file.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("rules watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	w.fsWatcher = fsWatcher

	if stat, err := os.Stat(w.file); err == nil {
		w.lastModTime = stat.ModTime()
	}

	// Editors and config management replace files by rename, so the
	// directory is watched too.
	dir := filepath.Dir(w.file)
	if err := w.fsWatcher.Add(dir); err != nil {
		_ = w.fsWatcher.Close()
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w.running = true
	go w.watchLoop()

	w.logger.Info("Rules file watcher started", "file", w.file, "debounce_delay", w.debounceDelay)
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}

	w.running = false
	if err := w.fsWatcher.Close(); err != nil {
		w.logger.LogError(err, "Failed to close rules file watcher")
		return err
	}

	w.logger.Info("Rules file watcher stopped")
	return nil
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.LogError(err, "Rules file watcher error")

		case <-w.reloadChan:
			if w.hasFileChanged() {
				w.logger.Info("Rules file changed, reloading", "file", w.file)
				_ = w.store.Reload()
			}

		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != filepath.Base(w.file) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func (w *Watcher) hasFileChanged() bool {
	stat, err := os.Stat(w.file)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !stat.ModTime().Equal(w.lastModTime) {
		w.lastModTime = stat.ModTime()
		return true
	}
	return false
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}
