// Package model defines the core data structures for floatify.
package model

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/oklog/ulid/v2"
)

// DisplayTimeLayout is the clock format shown next to mirrored notifications.
const DisplayTimeLayout = "15:04"

// Native is a notification as observed on the system feed, before filtering.
type Native struct {
	Key       string    `json:"key"`
	SourceApp string    `json:"source_app"` // desktop entry id, or app name when absent
	AppName   string    `json:"app_name"`
	Icon      string    `json:"icon,omitempty"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	PostedAt  time.Time `json:"posted_at"`

	// Clearable is false for notifications the user cannot dismiss (resident).
	Clearable bool `json:"clearable"`
	// ForegroundService marks system-owned status notifications (transient hint).
	ForegroundService bool `json:"foreground_service,omitempty"`
	// Ongoing marks progress-style notifications that are still running.
	Ongoing bool `json:"ongoing,omitempty"`
}

// HasContent reports whether the notification carries a title or a body.
func (n Native) HasContent() bool {
	return strings.TrimSpace(n.Title) != "" || strings.TrimSpace(n.Body) != ""
}

// NotificationRecord is the mirrored, immutable form of a notification.
// Records are exclusively owned by the mirror; consumers receive copies.
type NotificationRecord struct {
	Key         string    `json:"key"`
	SourceApp   string    `json:"source_app"`
	AppName     string    `json:"app_name"`
	Icon        string    `json:"icon,omitempty"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	PostedAt    time.Time `json:"posted_at"`
	DisplayTime string    `json:"display_time"`
}

// NewRecord builds a record from a native notification.
// appName is the resolved display name; an empty value falls back to the
// notification's own app name and then to the source app id.
func NewRecord(n Native, appName string) NotificationRecord {
	if appName == "" {
		appName = n.AppName
	}
	if appName == "" {
		appName = n.SourceApp
	}
	posted := n.PostedAt
	if posted.IsZero() {
		posted = time.Now()
	}
	return NotificationRecord{
		Key:         n.Key,
		SourceApp:   n.SourceApp,
		AppName:     appName,
		Icon:        n.Icon,
		Title:       n.Title,
		Body:        n.Body,
		PostedAt:    posted,
		DisplayTime: posted.Format(DisplayTimeLayout),
	}
}

// Equal reports whether two records carry identical content.
func (r NotificationRecord) Equal(o NotificationRecord) bool {
	return r.Key == o.Key &&
		r.SourceApp == o.SourceApp &&
		r.AppName == o.AppName &&
		r.Icon == o.Icon &&
		r.Title == o.Title &&
		r.Body == o.Body &&
		r.PostedAt.Equal(o.PostedAt)
}

// RelativeTime returns a human-readable age such as "3 minutes ago".
func (r NotificationRecord) RelativeTime() string {
	return humanize.Time(r.PostedAt)
}

// BodyTruncated returns the body collapsed to one line and cut to maxLen runes.
func (r NotificationRecord) BodyTruncated(maxLen int) string {
	if maxLen <= 0 {
		return ""
	}

	body := []rune(strings.Join(strings.Fields(r.Body), " "))
	if len(body) <= maxLen {
		return string(body)
	}
	if maxLen <= 3 {
		return string(body[:maxLen])
	}
	return string(body[:maxLen-3]) + "..."
}

// NewSessionID returns a sortable identifier used to correlate overlay session logs.
func NewSessionID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate ULID: %w", err)
	}
	return id.String(), nil
}
