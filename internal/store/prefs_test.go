package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/floatify/internal/model"
)

func TestLoadPreferences_Missing(t *testing.T) {
	prefs, err := LoadPreferences(filepath.Join(t.TempDir(), "prefs.json"))
	require.NoError(t, err)

	assert.Empty(t, prefs.SelectedApps)
	assert.Empty(t, prefs.MonitoredApps)
	assert.False(t, prefs.BubbleActive)
	assert.True(t, prefs.ShowNotifications)
	assert.Equal(t, CurrentSchemaVersion, prefs.SchemaVersion)

	_, ok := prefs.Position()
	assert.False(t, ok)
}

func TestLoadPreferences_Corrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := LoadPreferences(path)
	assert.Error(t, err)
}

func TestLoadPreferences_KeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"selected_apps":["b"," a ","b"]}`), 0600))

	prefs, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, prefs.SelectedApps)
	assert.True(t, prefs.ShowNotifications)
}

func TestSavePreferences_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")
	x, y := 10, 20
	in := &Preferences{
		SelectedApps:  []string{"firefox"},
		MonitoredApps: []string{"slack"},
		BubbleActive:  true,
		BubbleX:       &x,
		BubbleY:       &y,
	}

	require.NoError(t, SavePreferences(path, in))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	out, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, in.SelectedApps, out.SelectedApps)
	assert.True(t, out.BubbleActive)
	pos, ok := out.Position()
	assert.True(t, ok)
	assert.Equal(t, model.Point{X: 10, Y: 20}, pos)
}

func TestPrefs_WritesAreFlushedOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)

	p.SetActive(true)
	p.SetPosition(model.Point{X: 50, Y: 300})
	p.SetSelectedApps([]string{"b", "a", "a"})
	p.SetMonitoredApps([]string{"slack"})

	assert.True(t, p.Active())
	assert.Equal(t, []string{"b", "a"}, p.SelectedApps())

	require.NoError(t, p.Close())

	disk, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.True(t, disk.BubbleActive)
	assert.Equal(t, []string{"b", "a"}, disk.SelectedApps)
	assert.Equal(t, []string{"slack"}, disk.MonitoredApps)
	pos, ok := disk.Position()
	require.True(t, ok)
	assert.Equal(t, model.Point{X: 50, Y: 300}, pos)
}

func TestPrefs_SaverRunsInBackground(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)
	defer p.Close()

	p.SetActive(true)

	assert.Eventually(t, func() bool {
		disk, err := LoadPreferences(path)
		return err == nil && disk.BubbleActive
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPrefs_UpdateAfterCloseIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	p.SetActive(true)
	assert.False(t, p.Active())
}

func TestPrefs_ReloadKeepsDaemonOwnedFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	x, y := 5, 6
	initial := DefaultPreferences()
	initial.BubbleActive = true
	initial.BubbleX, initial.BubbleY = &x, &y
	require.NoError(t, SavePreferences(path, initial))

	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)
	defer p.Close()

	_, err = UpdatePreferences(path, func(external *Preferences) {
		external.SelectedApps = []string{"firefox"}
		external.ShowNotifications = false
		external.BubbleActive = false
	})
	require.NoError(t, err)

	changed, err := p.Reload()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, []string{"firefox"}, p.SelectedApps())
	assert.False(t, p.ShowNotifications())
	assert.True(t, p.Active())
	pos, ok := p.Position()
	assert.True(t, ok)
	assert.Equal(t, model.Point{X: 5, Y: 6}, pos)

	changed, err = p.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestPrefs_ReloadClearsResetPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)

	p.SetPosition(model.Point{X: 400, Y: 500})
	require.Eventually(t, func() bool {
		disk, err := LoadPreferences(path)
		if err != nil {
			return false
		}
		_, ok := disk.Position()
		return ok
	}, 3*time.Second, 10*time.Millisecond)

	// floatify prefs reset-position
	_, err = UpdatePreferences(path, func(external *Preferences) {
		external.BubbleX = nil
		external.BubbleY = nil
	})
	require.NoError(t, err)

	changed, err := p.Reload()
	require.NoError(t, err)
	assert.False(t, changed)
	_, ok := p.Position()
	assert.False(t, ok)

	// A later daemon save must not bring the old position back
	p.SetActive(true)
	require.NoError(t, p.Close())

	disk, err := LoadPreferences(path)
	require.NoError(t, err)
	_, ok = disk.Position()
	assert.False(t, ok)
}

func TestPreferences_Clone(t *testing.T) {
	x := 1
	p := &Preferences{SelectedApps: []string{"a"}, BubbleX: &x}
	c := p.Clone()

	c.SelectedApps[0] = "z"
	*c.BubbleX = 99

	assert.Equal(t, "a", p.SelectedApps[0])
	assert.Equal(t, 1, *p.BubbleX)
}

func TestPrefsWatcher_ReloadsOnExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, SavePreferences(path, DefaultPreferences()))

	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)
	defer p.Close()

	changes := make(chan *Preferences, 4)
	w, err := NewPrefsWatcher(p, func(prefs *Preferences) { changes <- prefs }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	external := DefaultPreferences()
	external.SelectedApps = []string{"org.mozilla.firefox"}
	require.NoError(t, SavePreferences(path, external))

	select {
	case got := <-changes:
		assert.Equal(t, []string{"org.mozilla.firefox"}, got.SelectedApps)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestPrefsWatcher_CreatesMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floatify", "prefs.json")

	p, err := OpenPrefs(path, nil)
	require.NoError(t, err)
	defer p.Close()

	changes := make(chan *Preferences, 4)
	w, err := NewPrefsWatcher(p, func(prefs *Preferences) { changes <- prefs }, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Stop()

	_, err = UpdatePreferences(path, func(external *Preferences) {
		external.MonitoredApps = []string{"firefox"}
	})
	require.NoError(t, err)

	select {
	case got := <-changes:
		assert.Equal(t, []string{"firefox"}, got.MonitoredApps)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not report the change")
	}
}

func TestPrefsWatcher_StartFailureLeavesStopped(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "floatify")
	require.NoError(t, os.WriteFile(blocker, []byte("not a directory"), 0600))

	p := &Prefs{path: filepath.Join(blocker, "prefs.json")}

	w, err := NewPrefsWatcher(p, nil, nil)
	require.NoError(t, err)
	require.Error(t, w.Start())

	w.mu.Lock()
	running := w.running
	w.mu.Unlock()
	assert.False(t, running)
	assert.NoError(t, w.Stop())
}

func TestUpdatePreferences(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")

	x, y := 10, 20
	initial := DefaultPreferences()
	initial.BubbleActive = true
	initial.BubbleX, initial.BubbleY = &x, &y
	require.NoError(t, SavePreferences(path, initial))

	updated, err := UpdatePreferences(path, func(p *Preferences) {
		p.SelectedApps = append(p.SelectedApps, "firefox")
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox"}, updated.SelectedApps)

	loaded, err := LoadPreferences(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox"}, loaded.SelectedApps)
	assert.True(t, loaded.BubbleActive, "daemon-owned fields survive")
	pos, ok := loaded.Position()
	require.True(t, ok)
	assert.Equal(t, 10, pos.X)
}

func TestUpdatePreferences_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	_, err := UpdatePreferences(path, func(*Preferences) {})
	assert.Error(t, err)
}
