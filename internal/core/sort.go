package core

import (
	"slices"
	"strings"

	"github.com/jmylchreest/floatify/internal/model"
)

// SortNativesNewestFirst sorts natives in place by post time, most recent first.
func SortNativesNewestFirst(natives []model.Native) {
	slices.SortStableFunc(natives, func(a, b model.Native) int {
		return b.PostedAt.Compare(a.PostedAt)
	})
}

// SortShortcuts sorts shortcuts in place by display name, case-insensitively.
func SortShortcuts(shortcuts []model.AppShortcut) {
	slices.SortStableFunc(shortcuts, func(a, b model.AppShortcut) int {
		return strings.Compare(strings.ToLower(a.DisplayName), strings.ToLower(b.DisplayName))
	})
}

// SortApps sorts registry entries in place by name, case-insensitively.
func SortApps(apps []model.AppInfo) {
	slices.SortStableFunc(apps, func(a, b model.AppInfo) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
