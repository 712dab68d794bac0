package core

import "strconv"

// Badge is the counter shown on the bubble.
type Badge struct {
	Visible bool
	Value   int
}

// Text returns the badge label, or "" when hidden.
func (b Badge) Text() string {
	if !b.Visible {
		return ""
	}
	return strconv.Itoa(b.Value)
}

// ComputeBadge derives the bubble badge. Notification count wins over the
// selected-app count; the badge hides when both are zero. Notifications only
// count while the feed is accessible.
func ComputeBadge(selectedCount, notificationCount int, hasAccess bool) Badge {
	if !hasAccess {
		notificationCount = 0
	}
	if notificationCount == 0 && selectedCount == 0 {
		return Badge{}
	}
	if notificationCount > 0 {
		return Badge{Visible: true, Value: notificationCount}
	}
	return Badge{Visible: true, Value: selectedCount}
}
