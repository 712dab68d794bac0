package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/adrg/xdg"

	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
)

// CurrentSchemaVersion is the current version of the preferences schema.
const CurrentSchemaVersion = 1

// ConfigDir returns the floatify configuration directory.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "floatify")
}

// PrefsPath returns the path to the preferences file.
func PrefsPath() string {
	return filepath.Join(ConfigDir(), "prefs.json")
}

// Preferences is the persisted user state shared by floatify and floatifyd.
// floatifyd owns BubbleActive and the bubble position; the CLI edits the app sets.
type Preferences struct {
	SelectedApps      []string `json:"selected_apps"`
	MonitoredApps     []string `json:"monitored_apps"`
	BubbleActive      bool     `json:"bubble_active"`
	BubbleX           *int     `json:"bubble_x,omitempty"`
	BubbleY           *int     `json:"bubble_y,omitempty"`
	ShowNotifications bool     `json:"show_notifications"`

	SchemaVersion int `json:"schema_version"`
}

// DefaultPreferences returns preferences with default values.
func DefaultPreferences() *Preferences {
	return &Preferences{
		SelectedApps:      []string{},
		MonitoredApps:     []string{},
		ShowNotifications: true,
		SchemaVersion:     CurrentSchemaVersion,
	}
}

// Position returns the persisted bubble position, if any.
func (p *Preferences) Position() (model.Point, bool) {
	if p.BubbleX == nil || p.BubbleY == nil {
		return model.Point{}, false
	}
	return model.Point{X: *p.BubbleX, Y: *p.BubbleY}, true
}

// Clone returns a deep copy.
func (p *Preferences) Clone() *Preferences {
	c := *p
	c.SelectedApps = slices.Clone(p.SelectedApps)
	c.MonitoredApps = slices.Clone(p.MonitoredApps)
	if p.BubbleX != nil {
		x := *p.BubbleX
		c.BubbleX = &x
	}
	if p.BubbleY != nil {
		y := *p.BubbleY
		c.BubbleY = &y
	}
	return &c
}

// prefsFileMutex protects concurrent access to the preferences file within a process.
var prefsFileMutex sync.RWMutex

// LoadPreferences loads preferences from path.
// A missing file yields defaults; a corrupted file is reported.
func LoadPreferences(path string) (*Preferences, error) {
	prefsFileMutex.RLock()
	defer prefsFileMutex.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPreferences(), nil
		}
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal(data, prefs); err != nil {
		return nil, fmt.Errorf("failed to parse preferences %s: %w", path, err)
	}

	if prefs.SchemaVersion == 0 {
		prefs.SchemaVersion = CurrentSchemaVersion
	}
	prefs.SelectedApps = core.NormalizeIDs(prefs.SelectedApps)
	prefs.MonitoredApps = core.NormalizeIDs(prefs.MonitoredApps)

	return prefs, nil
}

// SavePreferences writes preferences to path atomically.
func SavePreferences(path string, prefs *Preferences) error {
	prefsFileMutex.Lock()
	defer prefsFileMutex.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create preferences directory: %w", err)
	}

	if prefs.SchemaVersion == 0 {
		prefs.SchemaVersion = CurrentSchemaVersion
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}

// UpdatePreferences loads path, applies fn and saves the result. The CLI
// uses it so fields owned by floatifyd survive an edit of the app sets.
func UpdatePreferences(path string, fn func(*Preferences)) (*Preferences, error) {
	prefs, err := LoadPreferences(path)
	if err != nil {
		return nil, err
	}
	fn(prefs)
	if err := SavePreferences(path, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// Prefs is the live, in-memory view of the preferences file used by the daemon.
// Reads never touch disk. Writes update memory immediately and are flushed by
// a background saver, so callers on the UI loop never block on I/O.
type Prefs struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	data   *Preferences
	closed bool

	saveCh chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup

	errMu   sync.Mutex
	lastErr error
}

// OpenPrefs loads path and starts the background saver.
func OpenPrefs(path string, logger *slog.Logger) (*Prefs, error) {
	if logger == nil {
		logger = slog.Default()
	}

	data, err := LoadPreferences(path)
	if err != nil {
		return nil, err
	}

	p := &Prefs{
		path:   path,
		logger: logger,
		data:   data,
		saveCh: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	p.wg.Add(1)
	go p.saveLoop()

	return p, nil
}

// Path returns the backing file path.
func (p *Prefs) Path() string {
	return p.path
}

// Snapshot returns a copy of the current preferences.
func (p *Prefs) Snapshot() *Preferences {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Clone()
}

// SelectedApps returns the selected application ids.
func (p *Prefs) SelectedApps() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.data.SelectedApps)
}

// MonitoredApps returns the notification allowlist.
func (p *Prefs) MonitoredApps() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.data.MonitoredApps)
}

// ShowNotifications reports whether the Notifications tab lists content.
func (p *Prefs) ShowNotifications() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.ShowNotifications
}

// Active reports whether the bubble should be running.
func (p *Prefs) Active() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.BubbleActive
}

// SetActive records whether the bubble is running.
func (p *Prefs) SetActive(active bool) {
	p.update(func(d *Preferences) bool {
		if d.BubbleActive == active {
			return false
		}
		d.BubbleActive = active
		return true
	})
}

// Position returns the persisted bubble position.
func (p *Prefs) Position() (model.Point, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.data.Position()
}

// SetPosition records the bubble position.
func (p *Prefs) SetPosition(pt model.Point) {
	p.update(func(d *Preferences) bool {
		if cur, ok := d.Position(); ok && cur == pt {
			return false
		}
		x, y := pt.X, pt.Y
		d.BubbleX, d.BubbleY = &x, &y
		return true
	})
}

// SetSelectedApps replaces the selected application ids.
func (p *Prefs) SetSelectedApps(ids []string) {
	ids = core.NormalizeIDs(ids)
	p.update(func(d *Preferences) bool {
		if slices.Equal(d.SelectedApps, ids) {
			return false
		}
		d.SelectedApps = ids
		return true
	})
}

// SetMonitoredApps replaces the notification allowlist.
func (p *Prefs) SetMonitoredApps(ids []string) {
	ids = core.NormalizeIDs(ids)
	p.update(func(d *Preferences) bool {
		if slices.Equal(d.MonitoredApps, ids) {
			return false
		}
		d.MonitoredApps = ids
		return true
	})
}

// Reload re-reads the user-edited fields (app sets and notification toggle)
// from disk. The active flag is owned by the daemon and kept from memory. The
// bubble position is also kept, unless the file no longer has one: that is a
// reset from the CLI and clears the remembered position.
// Returns true if a user-edited field changed.
func (p *Prefs) Reload() (bool, error) {
	disk, err := LoadPreferences(p.path)
	if err != nil {
		return false, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	changed := !slices.Equal(p.data.SelectedApps, disk.SelectedApps) ||
		!slices.Equal(p.data.MonitoredApps, disk.MonitoredApps) ||
		p.data.ShowNotifications != disk.ShowNotifications

	p.data.SelectedApps = disk.SelectedApps
	p.data.MonitoredApps = disk.MonitoredApps
	p.data.ShowNotifications = disk.ShowNotifications

	if _, onDisk := disk.Position(); !onDisk && p.data.BubbleX != nil {
		p.logger.Debug("bubble position reset on disk")
		p.data.BubbleX = nil
		p.data.BubbleY = nil
	}
	return changed, nil
}

// Err returns the last save error, if any.
func (p *Prefs) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.lastErr
}

// Close flushes pending changes and stops the saver.
func (p *Prefs) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()
	return p.Err()
}

func (p *Prefs) update(fn func(*Preferences) bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.logger.Warn("preferences update after close ignored")
		return
	}
	changed := fn(p.data)
	p.mu.Unlock()

	if !changed {
		return
	}
	select {
	case p.saveCh <- struct{}{}:
	default:
		// Save already pending
	}
}

func (p *Prefs) saveLoop() {
	defer p.wg.Done()
	for {
		select {
		case <-p.saveCh:
			p.save()
		case <-p.done:
			select {
			case <-p.saveCh:
				p.save()
			default:
			}
			return
		}
	}
}

func (p *Prefs) save() {
	snapshot := p.Snapshot()
	err := SavePreferences(p.path, snapshot)

	p.errMu.Lock()
	p.lastErr = err
	p.errMu.Unlock()

	if err != nil {
		p.logger.Error("failed to save preferences", "path", p.path, "error", err)
		return
	}
	p.logger.Debug("preferences saved", "path", p.path)
}
