package daemon

import (
	"log/slog"
	"sync"
	"time"

	godbus "github.com/godbus/dbus/v5"

	"github.com/jmylchreest/floatify/internal/dbus"
)

// NotificationLevel indicates the urgency/severity of a notice.
type NotificationLevel int

const (
	// NotificationLevelInfo is for informational messages (low urgency).
	NotificationLevelInfo NotificationLevel = iota
	// NotificationLevelWarning is for warning messages (normal urgency).
	NotificationLevelWarning
	// NotificationLevelError is for error messages (critical urgency).
	NotificationLevelError
)

// NoticeSender delivers a notification to the desktop's notification server.
type NoticeSender func(notification *dbus.DBusNotification) error

// Notifier tells the user about floatify's own events (a refused start, a
// lost overlay) through the desktop notification server. These carry the
// daemon's own app name, so the mirror never shows them.
type Notifier struct {
	mu      sync.Mutex
	logger  *slog.Logger
	appName string

	send NoticeSender
	now  func() time.Time

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications

	enabled bool
}

// NewNotifier creates a Notifier that sends as appName.
func NewNotifier(appName string, send NoticeSender, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		appName:        appName,
		send:           send,
		now:            time.Now,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second, // Don't repeat same notification within 5 seconds
		enabled:        true,
	}
}

// SetEnabled enables or disables notices.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notices.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify sends a notice if not rate-limited. Notices with the same key are
// suppressed within minInterval. Sending happens off the caller's goroutine.
func (n *Notifier) Notify(key, summary, body string, level NotificationLevel) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.enabled || n.send == nil {
		return
	}

	now := n.now()
	if lastTime, ok := n.lastNotifyTime[key]; ok {
		if now.Sub(lastTime) < n.minInterval {
			n.logger.Debug("notice rate-limited", "key", key, "summary", summary)
			return
		}
	}
	n.lastNotifyTime[key] = now

	notification := n.build(summary, body, level)
	send := n.send
	go func() {
		if err := send(notification); err != nil {
			n.logger.Warn("failed to send notice", "key", key, "error", err)
		}
	}()
}

func (n *Notifier) build(summary, body string, level NotificationLevel) *dbus.DBusNotification {
	urgency := byte(dbus.UrgencyNormal)
	icon := "dialog-warning"
	switch level {
	case NotificationLevelInfo:
		urgency = dbus.UrgencyLow
		icon = "dialog-information"
	case NotificationLevelError:
		urgency = dbus.UrgencyCritical
		icon = "dialog-error"
	}

	return &dbus.DBusNotification{
		AppName: n.appName,
		AppIcon: icon,
		Summary: summary,
		Body:    body,
		Hints: map[string]godbus.Variant{
			"urgency":       godbus.MakeVariant(urgency),
			"transient":     godbus.MakeVariant(true),
			"desktop-entry": godbus.MakeVariant(n.appName),
		},
		ExpireTimeout: 5000,
	}
}

// NotifyPermissionDenied tells the user the bubble cannot be shown.
func (n *Notifier) NotifyPermissionDenied() {
	n.Notify(
		"permission-denied",
		"Floating bubble unavailable",
		"The compositor does not support layer-shell overlays.",
		NotificationLevelWarning,
	)
}

// NotifyOverlayLost tells the user the bubble was closed because overlays went away.
func (n *Notifier) NotifyOverlayLost() {
	n.Notify(
		"overlay-lost",
		"Floating bubble closed",
		"Overlay support was lost. Run 'floatify start' once it is back.",
		NotificationLevelWarning,
	)
}

// NotifyBubbleFailed tells the user the bubble window failed.
func (n *Notifier) NotifyBubbleFailed(err error) {
	n.Notify(
		"bubble-failed",
		"Floating bubble closed",
		"The bubble window failed: "+err.Error(),
		NotificationLevelError,
	)
}

// NotifyConfigError tells the user a config reload was rejected.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify(
		"config-error",
		"Configuration Error",
		"Failed to reload configuration: "+err.Error(),
		NotificationLevelWarning,
	)
}
