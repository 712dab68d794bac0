package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/floatify/internal/apps"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/output"
	"github.com/jmylchreest/floatify/internal/store"
)

type fakeRegistry struct {
	installed []model.AppInfo
}

func (f *fakeRegistry) Resolve(id string) (model.AppInfo, error) {
	for _, info := range f.installed {
		if info.ID == id || info.Name == id {
			return info, nil
		}
	}
	return model.AppInfo{}, &apps.LookupFailure{ID: id}
}

func (f *fakeRegistry) Installed() []model.AppInfo {
	return f.installed
}

func testRegistry() *fakeRegistry {
	return &fakeRegistry{installed: []model.AppInfo{
		{ID: "org.gnome.Calculator", Name: "Calculator"},
		{ID: "org.gnome.Nautilus", Name: "Files"},
		{ID: "firefox", Name: "Firefox"},
	}}
}

func TestBuildAppRows(t *testing.T) {
	prefs := store.DefaultPreferences()
	prefs.SelectedApps = []string{"firefox", "gone.app"}
	prefs.MonitoredApps = []string{"org.gnome.Nautilus", "firefox"}

	t.Run("chosen only", func(t *testing.T) {
		rows := buildAppRows(testRegistry(), prefs, false, "")
		assert.Equal(t, []output.AppRow{
			{ID: "firefox", Name: "Firefox", Selected: true, Monitored: true, Installed: true},
			{ID: "gone.app", Name: "gone.app", Selected: true},
			{ID: "org.gnome.Nautilus", Name: "Files", Monitored: true, Installed: true},
		}, rows)
	})

	t.Run("all", func(t *testing.T) {
		rows := buildAppRows(testRegistry(), prefs, true, "")
		require.Len(t, rows, 4)
		assert.Equal(t, "org.gnome.Calculator", rows[0].ID)
		assert.False(t, rows[0].Selected)
		assert.Equal(t, "gone.app", rows[3].ID)
		assert.False(t, rows[3].Installed)
	})

	t.Run("search", func(t *testing.T) {
		rows := buildAppRows(testRegistry(), prefs, false, "FIRE")
		require.Len(t, rows, 1)
		assert.Equal(t, "firefox", rows[0].ID)
		assert.True(t, rows[0].Selected)
	})
}

func TestResolveIDs(t *testing.T) {
	ids, err := resolveIDs(testRegistry(), []string{"Files", "firefox", "org.gnome.Nautilus"}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"org.gnome.Nautilus", "firefox"}, ids)

	_, err = resolveIDs(testRegistry(), []string{"nope"}, false)
	assert.ErrorContains(t, err, "--force")

	ids, err = resolveIDs(testRegistry(), []string{"nope"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"nope"}, ids)
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{"OFF", false, false},
		{"show", true, false},
		{"true", true, false},
		{"0", false, false},
		{"maybe", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseToggle(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWritePrefs(t *testing.T) {
	x, y := 10, 20
	prefs := store.DefaultPreferences()
	prefs.BubbleActive = true
	prefs.BubbleX, prefs.BubbleY = &x, &y
	prefs.SelectedApps = []string{"firefox", "org.gnome.Nautilus"}

	var buf bytes.Buffer
	require.NoError(t, writePrefs(&buf, prefs))

	out := buf.String()
	assert.Contains(t, out, "bubble active:      on")
	assert.Contains(t, out, "bubble position:    10,20")
	assert.Contains(t, out, "bubble apps:        firefox, org.gnome.Nautilus")
	assert.Contains(t, out, "mirrored apps:      (none)")
}
