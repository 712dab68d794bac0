package theme

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_RequiresFile(t *testing.T) {
	th, _ := NewBundledTheme(DefaultThemeName)
	_, err := NewWatcher(th, nil)
	assert.Error(t, err)

	_, err = NewWatcher(nil, nil)
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnPartialChange(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeCSS(t, tmpDir, "mine.css", `@import "_colors.css";`)
	writeCSS(t, tmpDir, "_colors.css", `.floatify-bubble { color: red; }`)

	th, err := NewTheme("mine", path)
	require.NoError(t, err)

	w, err := NewWatcher(th, nil)
	require.NoError(t, err)
	w.SetDebounce(10 * time.Millisecond)

	var (
		mu  sync.Mutex
		got []string
	)
	w.SetChangeCallback(func(css string) {
		mu.Lock()
		got = append(got, css)
		mu.Unlock()
	})

	require.NoError(t, w.Start(context.Background()))
	defer w.Stop()
	assert.True(t, w.IsRunning())

	// Non-CSS files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "notes.txt"), []byte("x"), 0644))
	writeCSS(t, tmpDir, "_colors.css", `.floatify-bubble { color: green; }`)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) > 0
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Contains(t, got[len(got)-1], "color: green")
	mu.Unlock()
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	path := writeCSS(t, t.TempDir(), "mine.css", `.floatify-menu {}`)
	th, err := NewTheme("mine", path)
	require.NoError(t, err)

	w, err := NewWatcher(th, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))

	w.Stop()
	w.Stop()
	assert.False(t, w.IsRunning())
}
