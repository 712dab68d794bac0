// Package apps resolves and launches desktop applications from XDG desktop entries.
package apps

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/adrg/xdg"

	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
)

// DefaultLaunchCommand starts a desktop entry by id.
const DefaultLaunchCommand = "gtk-launch"

// LookupFailure reports an application id that could not be resolved.
type LookupFailure struct {
	ID string
}

func (e *LookupFailure) Error() string {
	return fmt.Sprintf("application %q not found", e.ID)
}

// Registry is an in-memory index of installed desktop entries.
// Resolve and Launch never read from disk; Reload rebuilds the index.
type Registry struct {
	dirs          []string
	launchCommand string
	logger        *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	byName  map[string]string // lowercased name -> id
}

type entry struct {
	info    model.AppInfo
	visible bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithDirs overrides the directories searched for desktop entries.
// Earlier directories take precedence.
func WithDirs(dirs ...string) Option {
	return func(r *Registry) { r.dirs = dirs }
}

// WithLaunchCommand overrides the launcher executable. Empty keeps the default.
func WithLaunchCommand(cmd string) Option {
	return func(r *Registry) {
		if cmd != "" {
			r.launchCommand = cmd
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry. Call Reload to index entries.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		dirs:          xdg.ApplicationDirs,
		launchCommand: DefaultLaunchCommand,
		entries:       make(map[string]entry),
		byName:        make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Reload rescans all directories.
func (r *Registry) Reload() error {
	entries := make(map[string]entry)
	byName := make(map[string]string)

	for _, dir := range r.dirs {
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if path == dir {
					return fs.SkipDir
				}
				r.logger.Debug("skipping unreadable path", "path", path, "error", err)
				return nil
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), ".desktop") {
				return nil
			}

			id := desktopID(dir, path)
			if _, exists := entries[id]; exists {
				return nil
			}

			de, err := parseDesktopFile(path)
			if err != nil {
				r.logger.Debug("skipping desktop entry", "path", path, "error", err)
				return nil
			}
			if de.Type != "Application" {
				return nil
			}

			entries[id] = entry{
				info:    model.AppInfo{ID: id, Name: de.Name, Icon: de.Icon, Exec: de.Exec},
				visible: de.visible(),
			}
			if de.visible() && de.Name != "" {
				name := strings.ToLower(de.Name)
				if _, taken := byName[name]; !taken {
					byName[name] = id
				}
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", dir, err)
		}
	}

	r.mu.Lock()
	r.entries = entries
	r.byName = byName
	r.mu.Unlock()

	r.logger.Debug("application registry loaded", "entries", len(entries), "dirs", len(r.dirs))
	return nil
}

// Resolve looks up id as a desktop id (with or without the .desktop suffix),
// falling back to a case-insensitive match on the application name.
func (r *Registry) Resolve(id string) (model.AppInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.TrimSuffix(id, ".desktop")
	if e, ok := r.entries[key]; ok {
		return e.info, nil
	}
	if byID, ok := r.byName[strings.ToLower(key)]; ok {
		return r.entries[byID].info, nil
	}
	return model.AppInfo{}, &LookupFailure{ID: id}
}

// ResolveOrPlaceholder resolves id, substituting a placeholder on failure.
func (r *Registry) ResolveOrPlaceholder(id string) model.AppInfo {
	info, err := r.Resolve(id)
	if err != nil {
		return model.Placeholder(id)
	}
	if info.Icon == "" {
		info.Icon = model.PlaceholderIcon
	}
	return info
}

// Installed returns visible applications sorted by name.
func (r *Registry) Installed() []model.AppInfo {
	r.mu.RLock()
	out := make([]model.AppInfo, 0, len(r.entries))
	for _, e := range r.entries {
		if e.visible {
			out = append(out, e.info)
		}
	}
	r.mu.RUnlock()

	core.SortApps(out)
	return out
}

// Launch starts the application without waiting for it. Unresolvable ids are
// not launched and return a *LookupFailure.
func (r *Registry) Launch(id string) error {
	info, err := r.Resolve(id)
	if err != nil {
		return err
	}

	cmd := exec.Command(r.launchCommand, info.ID)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to launch %s: %w", info.ID, err)
	}
	r.logger.Info("launched app", "app", info.ID, "pid", cmd.Process.Pid)

	// Reap the launcher so it does not linger as a zombie
	go func() {
		if err := cmd.Wait(); err != nil {
			r.logger.Debug("launcher exited with error", "app", info.ID, "error", err)
		}
	}()
	return nil
}

// desktopID converts a path below dir into a desktop file id:
// subdirectories are joined with "-" and the .desktop suffix is dropped.
func desktopID(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	rel = strings.TrimSuffix(rel, ".desktop")
	return strings.ReplaceAll(filepath.ToSlash(rel), "/", "-")
}
