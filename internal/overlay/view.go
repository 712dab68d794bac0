package overlay

import (
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/rows"
)

// bodyPreviewLen is the number of runes of a notification body shown in the menu.
const bodyPreviewLen = 80

// Placeholder is what a tab shows instead of a list.
type Placeholder int

const (
	PlaceholderNone Placeholder = iota
	PlaceholderNoApps
	PlaceholderNoNotifications
	PlaceholderNeedsAccess
	PlaceholderNotificationsHidden
)

// Text returns the message shown for the placeholder.
func (p Placeholder) Text() string {
	switch p {
	case PlaceholderNoApps:
		return "No apps selected. Add some with \"floatify apps add\"."
	case PlaceholderNoNotifications:
		return "No notifications"
	case PlaceholderNeedsAccess:
		return "Notification access is unavailable"
	case PlaceholderNotificationsHidden:
		return "Notifications are hidden in the bubble"
	default:
		return ""
	}
}

// MenuView is the complete, immutable content of the menu window.
type MenuView struct {
	Tab         Tab
	Rows        []rows.Row
	Placeholder Placeholder
}

// NeedsAccess reports whether the view should offer the notification settings affordance.
func (v MenuView) NeedsAccess() bool {
	return v.Placeholder == PlaceholderNeedsAccess
}

// Empty reports whether the view shows a placeholder instead of rows.
func (v MenuView) Empty() bool {
	return v.Placeholder != PlaceholderNone
}

// ShortcutRows renders app shortcuts.
func ShortcutRows(shortcuts []model.AppShortcut) []rows.Row {
	out := make([]rows.Row, 0, len(shortcuts))
	for _, s := range shortcuts {
		out = append(out, rows.Row{
			Key:   s.PackageName,
			Title: s.DisplayName,
			Icon:  s.Icon,
		})
	}
	return out
}

// NotificationRows renders mirrored notifications in the order given.
func NotificationRows(records []model.NotificationRecord) []rows.Row {
	out := make([]rows.Row, 0, len(records))
	for _, r := range records {
		title := r.Title
		if title == "" {
			title = r.AppName
		}
		icon := r.Icon
		if icon == "" {
			icon = model.PlaceholderIcon
		}
		out = append(out, rows.Row{
			Key:      r.Key,
			Title:    title,
			Subtitle: r.BodyTruncated(bodyPreviewLen),
			Detail:   r.DisplayTime,
			Icon:     icon,
		})
	}
	return out
}

// BuildShortcuts projects the selected ids through the registry, sorted by
// display name. Lookup failures become placeholder entries.
func BuildShortcuts(selected []string, resolve func(string) model.AppInfo) []model.AppShortcut {
	shortcuts := make([]model.AppShortcut, 0, len(selected))
	for _, id := range selected {
		info := resolve(id)
		shortcuts = append(shortcuts, model.AppShortcut{
			PackageName: id,
			DisplayName: info.Name,
			Icon:        info.Icon,
			Selected:    true,
		})
	}
	core.SortShortcuts(shortcuts)
	return shortcuts
}
