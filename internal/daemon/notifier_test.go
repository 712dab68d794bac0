package daemon

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/floatify/internal/dbus"
)

type sentNotices struct {
	mu   sync.Mutex
	sent []*dbus.DBusNotification
}

func (s *sentNotices) send(n *dbus.DBusNotification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, n)
	return nil
}

func (s *sentNotices) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func TestNotifier_RateLimits(t *testing.T) {
	sent := &sentNotices{}
	n := NewNotifier("floatify", sent.send, nil)
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return clock }

	n.NotifyPermissionDenied()
	n.NotifyPermissionDenied()
	require.Eventually(t, func() bool { return sent.count() == 1 }, time.Second, time.Millisecond)

	clock = clock.Add(6 * time.Second)
	n.NotifyPermissionDenied()
	require.Eventually(t, func() bool { return sent.count() == 2 }, time.Second, time.Millisecond)
}

func TestNotifier_DistinctKeys(t *testing.T) {
	sent := &sentNotices{}
	n := NewNotifier("floatify", sent.send, nil)

	n.NotifyPermissionDenied()
	n.NotifyOverlayLost()
	n.NotifyBubbleFailed(errors.New("surface gone"))
	n.NotifyConfigError(errors.New("bad toml"))
	require.Eventually(t, func() bool { return sent.count() == 4 }, time.Second, time.Millisecond)
}

func TestNotifier_Disabled(t *testing.T) {
	sent := &sentNotices{}
	n := NewNotifier("floatify", sent.send, nil)
	n.SetEnabled(false)

	n.NotifyOverlayLost()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, sent.count())
}

func TestNotifier_Build(t *testing.T) {
	n := NewNotifier("floatify", nil, nil)

	notice := n.build("Summary", "Body", NotificationLevelError)
	assert.Equal(t, "floatify", notice.AppName)
	assert.Equal(t, "dialog-error", notice.AppIcon)
	assert.Equal(t, dbus.UrgencyCritical, notice.Urgency())
	assert.True(t, notice.Transient())
	assert.Equal(t, "floatify", notice.DesktopEntry())

	notice = n.build("Summary", "Body", NotificationLevelInfo)
	assert.Equal(t, dbus.UrgencyLow, notice.Urgency())
	assert.Equal(t, "dialog-information", notice.AppIcon)
}
