package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// PrefsWatcher reloads Prefs when the preferences file is edited externally,
// for example by the floatify CLI.
type PrefsWatcher struct {
	watcher  *fsnotify.Watcher
	prefs    *Prefs
	onChange func(*Preferences)
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewPrefsWatcher creates a watcher for prefs. onChange is called from the
// watcher goroutine with a snapshot whenever a reload changed user-edited fields.
func NewPrefsWatcher(prefs *Prefs, onChange func(*Preferences), logger *slog.Logger) (*PrefsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PrefsWatcher{
		watcher:  watcher,
		prefs:    prefs,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the preferences file. The directory is created if
// missing so edits on a fresh install are seen. On failure the watcher is
// closed and cannot be restarted.
func (pw *PrefsWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return nil
	}

	// Watch the directory: atomic saves replace the file via rename
	dir := filepath.Dir(pw.prefs.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		pw.watcher.Close()
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}
	if err := pw.watcher.Add(dir); err != nil {
		pw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	pw.running = true
	go pw.watch()
	return nil
}

func (pw *PrefsWatcher) watch() {
	filename := filepath.Base(pw.prefs.Path())

	for {
		select {
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filename {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pw.reload()
			}

		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			pw.logger.Warn("preferences watcher error", "error", err)

		case <-pw.done:
			return
		}
	}
}

func (pw *PrefsWatcher) reload() {
	changed, err := pw.prefs.Reload()
	if err != nil {
		pw.logger.Warn("failed to reload preferences", "error", err)
		return
	}
	if !changed {
		return
	}
	pw.logger.Debug("preferences changed on disk", "file", pw.prefs.Path())
	if pw.onChange != nil {
		pw.onChange(pw.prefs.Snapshot())
	}
}

// Stop stops the watcher.
func (pw *PrefsWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	pw.running = false
	close(pw.done)
	return pw.watcher.Close()
}
