package overlay

import (
	"fmt"
	"strings"
)

// State is the overlay session state.
type State int

const (
	Hidden State = iota
	BubbleShown
	MenuShown
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case BubbleShown:
		return "bubble"
	case MenuShown:
		return "menu"
	default:
		return "unknown"
	}
}

// Tab is a menu tab.
type Tab int

const (
	TabApps Tab = iota
	TabNotifications
)

func (t Tab) String() string {
	switch t {
	case TabApps:
		return "apps"
	case TabNotifications:
		return "notifications"
	default:
		return "unknown"
	}
}

// ParseTab parses a tab name.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "apps", "a":
		return TabApps, nil
	case "notifications", "notifs", "n":
		return TabNotifications, nil
	default:
		return TabApps, fmt.Errorf("unknown tab %q", s)
	}
}
