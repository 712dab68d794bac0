package daemon

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/overlay"
)

func TestService_StartStop(t *testing.T) {
	ov := &fakeOverlay{}
	s := NewService(goLoop{}, ov, &fakeApps{}, fakeCounter{}, fakeSelection{}, nil, nil)

	require.NoError(t, s.StartOverlay())
	assert.Equal(t, overlay.BubbleShown, ov.State())

	require.NoError(t, s.StopOverlay())
	assert.Equal(t, overlay.Hidden, ov.State())
}

func TestService_StartPermissionDenied(t *testing.T) {
	ov := &fakeOverlay{startErr: overlay.ErrPermissionDenied}
	sent := &sentNotices{}
	notifier := NewNotifier("floatify", sent.send, nil)
	s := NewService(goLoop{}, ov, &fakeApps{}, fakeCounter{}, fakeSelection{}, notifier, nil)

	err := s.StartOverlay()
	require.Error(t, err)
	assert.True(t, overlay.IsPermissionDenied(err))
	assert.Equal(t, dbus.ErrorPermissionDenied, ClassifyError(err))
	require.Eventually(t, func() bool { return sent.count() == 1 }, time.Second, time.Millisecond)
}

func TestService_RefreshApps(t *testing.T) {
	ov := &fakeOverlay{}
	apps := &fakeApps{}
	s := NewService(goLoop{}, ov, apps, fakeCounter{}, fakeSelection{}, nil, nil)

	require.NoError(t, s.RefreshApps())
	assert.Equal(t, 1, apps.reloads)
	assert.Equal(t, 1, ov.refreshes)

	apps.err = errors.New("unreadable")
	require.Error(t, s.RefreshApps())
	assert.Equal(t, 1, ov.refreshes)
}

func TestService_Status(t *testing.T) {
	ov := &fakeOverlay{state: overlay.MenuShown, badge: core.Badge{Visible: true, Value: 4}}
	s := NewService(goLoop{}, ov, &fakeApps{}, fakeCounter{count: 4, connected: true}, fakeSelection{"a", "b"}, nil, nil)

	st := s.Status()
	assert.Equal(t, dbus.Status{State: "menu", Badge: "4", Notifications: 4, Connected: true, Apps: 2}, st)
}

func TestService_LoopTimeout(t *testing.T) {
	s := NewService(deadLoop{}, &fakeOverlay{}, &fakeApps{}, fakeCounter{}, fakeSelection{}, nil, nil)
	s.timeout = 10 * time.Millisecond

	assert.ErrorIs(t, s.StartOverlay(), ErrLoopTimeout)
	assert.Equal(t, "unknown", s.Status().State)
	assert.Equal(t, dbus.ErrorFailed, ClassifyError(ErrLoopTimeout))
}
