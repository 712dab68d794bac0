package core

import (
	"strings"

	"github.com/jmylchreest/floatify/internal/model"
)

// LookupByKey finds a record by its key.
// Returns nil if not found.
func LookupByKey(records []model.NotificationRecord, key string) *model.NotificationRecord {
	for i := range records {
		if records[i].Key == key {
			return &records[i]
		}
	}
	return nil
}

// SearchApps finds applications whose name or id contains term.
// Case-insensitive substring match.
func SearchApps(apps []model.AppInfo, term string) []model.AppInfo {
	if term == "" {
		return apps
	}

	term = strings.ToLower(term)
	var result []model.AppInfo

	for _, a := range apps {
		if strings.Contains(strings.ToLower(a.Name), term) ||
			strings.Contains(strings.ToLower(a.ID), term) {
			result = append(result, a)
		}
	}

	return result
}

// NormalizeIDs trims, drops empties and de-duplicates app ids, keeping first occurrence order.
func NormalizeIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
