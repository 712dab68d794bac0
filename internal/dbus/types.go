package dbus

import (
	"strconv"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/jmylchreest/floatify/internal/model"
)

// Urgency levels matching the freedesktop spec.
const (
	UrgencyLow      = 0
	UrgencyNormal   = 1
	UrgencyCritical = 2
)

// CloseReason represents the reason for closing a notification.
// These values are defined by the freedesktop.org notification specification.
type CloseReason uint32

const (
	// CloseReasonExpired indicates the notification expired (timeout reached).
	CloseReasonExpired CloseReason = 1
	// CloseReasonDismissed indicates the user dismissed the notification.
	CloseReasonDismissed CloseReason = 2
	// CloseReasonClosed indicates the notification was closed via CloseNotification.
	CloseReasonClosed CloseReason = 3
	// CloseReasonUndefined is reserved/undefined per the spec.
	CloseReasonUndefined CloseReason = 4
)

// String returns the string representation of the close reason.
func (r CloseReason) String() string {
	switch r {
	case CloseReasonExpired:
		return "expired"
	case CloseReasonDismissed:
		return "dismissed"
	case CloseReasonClosed:
		return "closed"
	case CloseReasonUndefined:
		return "undefined"
	default:
		return "unknown"
	}
}

// DBusNotification represents an observed D-Bus Notify call.
// It contains the raw parameters from the org.freedesktop.Notifications.Notify method.
type DBusNotification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string // Alternating key, label pairs
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // -1 = server default, 0 = never expire
}

// Key returns the mirror key for a notification id.
func Key(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Native converts the call into a feed notification under the id the server assigned.
func (n *DBusNotification) Native(id uint32, postedAt time.Time) model.Native {
	source := n.DesktopEntry()
	if source == "" {
		source = n.AppName
	}
	return model.Native{
		Key:               Key(id),
		SourceApp:         source,
		AppName:           n.AppName,
		Icon:              n.Icon(),
		Title:             n.Summary,
		Body:              n.Body,
		PostedAt:          postedAt,
		Clearable:         !n.Resident(),
		ForegroundService: n.Transient(),
		Ongoing:           n.Progress() >= 0,
	}
}

// Icon returns the best icon reference: app_icon, then image-path, then the desktop entry.
func (n *DBusNotification) Icon() string {
	if n.AppIcon != "" {
		return n.AppIcon
	}
	if p := n.ImagePath(); p != "" {
		return p
	}
	return n.DesktopEntry()
}

// Urgency extracts the urgency hint from the notification.
// Returns UrgencyNormal if not specified.
func (n *DBusNotification) Urgency() int {
	if v, ok := n.Hints["urgency"]; ok {
		if b, ok := v.Value().(byte); ok {
			return int(b)
		}
	}
	return UrgencyNormal
}

// Category extracts the category hint from the notification.
func (n *DBusNotification) Category() string {
	return n.stringHint("category")
}

// DesktopEntry extracts the desktop-entry hint.
func (n *DBusNotification) DesktopEntry() string {
	return n.stringHint("desktop-entry")
}

// ImagePath extracts the image-path hint.
func (n *DBusNotification) ImagePath() string {
	if p := n.stringHint("image-path"); p != "" {
		return p
	}
	// Pre-1.2 spelling
	return n.stringHint("image_path")
}

// Transient returns true if the transient hint is set.
// Transient notifications are system status messages that bypass persistence.
func (n *DBusNotification) Transient() bool {
	return n.boolHint("transient")
}

// Resident returns true if the resident hint is set.
// Resident notifications stay until explicitly closed by their app.
func (n *DBusNotification) Resident() bool {
	return n.boolHint("resident")
}

// Progress extracts the progress value hint.
// Returns -1 if not present, 0-100 for valid progress values.
func (n *DBusNotification) Progress() int {
	if v, ok := n.Hints["value"]; ok {
		switch val := v.Value().(type) {
		case int32:
			return int(val)
		case uint32:
			return int(val)
		case int:
			return val
		case byte:
			return int(val)
		}
	}
	return -1
}

func (n *DBusNotification) stringHint(name string) string {
	if v, ok := n.Hints[name]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

func (n *DBusNotification) boolHint(name string) bool {
	if v, ok := n.Hints[name]; ok {
		if b, ok := v.Value().(bool); ok {
			return b
		}
	}
	return false
}
