package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/floatify/internal/config"
)

func writeConfig(t *testing.T, path, content string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func TestConfigWatcher_ReloadAndReject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floatifyd.toml")
	base := time.Now().Add(-time.Hour)
	writeConfig(t, path, "[bubble]\nsize = 56\n", base)

	initial, err := config.LoadDaemonConfig(path)
	require.NoError(t, err)

	w := NewConfigWatcher(path, nil)
	w.SetPollInterval(10 * time.Millisecond)

	var (
		mu       sync.Mutex
		reloaded []*config.DaemonConfig
		errs     []error
	)
	w.SetReloadCallback(func(cfg *config.DaemonConfig) {
		mu.Lock()
		reloaded = append(reloaded, cfg)
		mu.Unlock()
	})
	w.SetErrorCallback(func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	})

	w.Start(context.Background(), initial)
	defer w.Stop()

	writeConfig(t, path, "[bubble]\nsize = 80\n", base.Add(time.Minute))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(reloaded) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 80, w.Current().Bubble.Size)

	// Out of range: rejected, current config kept
	writeConfig(t, path, "[bubble]\nsize = 2\n", base.Add(2*time.Minute))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(errs) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 80, w.Current().Bubble.Size)

	mu.Lock()
	assert.Len(t, reloaded, 1)
	mu.Unlock()
}

func TestConfigWatcher_UnchangedFileIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floatifyd.toml")
	writeConfig(t, path, "[menu]\nwidth = 300\n", time.Now().Add(-time.Hour))

	w := NewConfigWatcher(path, nil)
	called := false
	w.SetReloadCallback(func(*config.DaemonConfig) { called = true })

	w.Start(context.Background(), config.DefaultDaemonConfig())
	w.check()
	w.Stop()

	assert.False(t, called)
}

func TestConfigWatcher_MissingFile(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "absent.toml"), nil)
	initial := config.DefaultDaemonConfig()
	w.Start(context.Background(), initial)
	w.check()
	w.Stop()
	w.Stop()

	assert.Same(t, initial, w.Current())
}
