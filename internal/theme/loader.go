package theme

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/floatify/internal/bus"
)

// Loader resolves themes and keeps a GTK CSS provider up to date with the
// selected one. LoadTheme and Apply must run on the GTK thread; hot-reloaded
// CSS is posted to the loop given to NewLoader.
type Loader struct {
	mu        sync.Mutex
	logger    *slog.Logger
	loop      bus.Loop
	provider  *gtk.CSSProvider
	themesDir string
	theme     *Theme
	watcher   *Watcher
}

// NewLoader creates a loader reading user themes from ThemesDir.
func NewLoader(loop bus.Loop, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:    logger,
		loop:      loop,
		provider:  gtk.NewCSSProvider(),
		themesDir: ThemesDir(),
	}
}

// resolve finds a theme by name: the user themes directory first, then the
// bundled themes, then the bundled default.
func (l *Loader) resolve(name string) *Theme {
	if name == "" {
		name = DefaultThemeName
	}

	if l.themesDir != "" {
		path := filepath.Join(l.themesDir, name+".css")
		if _, err := os.Stat(path); err == nil {
			t, err := NewTheme(name, path)
			if err == nil {
				return t
			}
			l.logger.Warn("failed to load user theme, trying bundled", "theme", name, "error", err)
		}
	}

	if t, found := NewBundledTheme(name); found {
		return t
	}

	l.logger.Warn("theme not found, using default", "theme", name)
	t, _ := NewBundledTheme(DefaultThemeName)
	return t
}

// LoadTheme resolves name and loads it into the provider.
func (l *Loader) LoadTheme(name string) {
	t := l.resolve(name)

	l.mu.Lock()
	l.theme = t
	l.mu.Unlock()

	if l.provider != nil {
		l.provider.LoadFromString(t.CSS)
	}
	l.logger.Info("loaded theme", "name", t.Name, "bundled", t.Bundled, "path", t.Path)
}

// Theme returns the currently loaded theme.
func (l *Loader) Theme() *Theme {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.theme
}

// Apply attaches the provider to display, or to the default display when nil.
func (l *Loader) Apply(display *gdk.Display) error {
	if display == nil {
		display = gdk.DisplayGetDefault()
	}
	if display == nil {
		return fmt.Errorf("no display available")
	}
	gtk.StyleContextAddProviderForDisplay(display, l.provider, gtk.STYLE_PROVIDER_PRIORITY_APPLICATION)
	return nil
}

// StartHotReload watches the current theme when it is a user file. Bundled
// themes cannot change at runtime and are not watched.
func (l *Loader) StartHotReload(ctx context.Context) error {
	l.StopHotReload()

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.theme == nil || l.theme.Bundled {
		return nil
	}

	w, err := NewWatcher(l.theme, l.logger)
	if err != nil {
		return err
	}
	w.SetChangeCallback(func(css string) {
		l.loop.Post(func() {
			l.provider.LoadFromString(css)
		})
	})
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	l.watcher = w
	return nil
}

// StopHotReload stops watching the current theme.
func (l *Loader) StopHotReload() {
	l.mu.Lock()
	w := l.watcher
	l.watcher = nil
	l.mu.Unlock()

	if w != nil {
		w.Stop()
	}
}

// ListThemes returns the names of bundled and user themes without duplicates.
func (l *Loader) ListThemes() []string {
	infos, err := ListAvailableThemes(l.themesDir)
	if err != nil {
		l.logger.Debug("failed to list user themes", "error", err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names
}
