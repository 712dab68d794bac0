package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNative_HasContent(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  bool
	}{
		{"title only", "Hello", "", true},
		{"body only", "", "World", true},
		{"both", "Hello", "World", true},
		{"empty", "", "", false},
		{"whitespace", "  ", "\n\t", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := Native{Title: tt.title, Body: tt.body}
			assert.Equal(t, tt.want, n.HasContent())
		})
	}
}

func TestNewRecord(t *testing.T) {
	posted := time.Date(2024, 3, 1, 9, 5, 0, 0, time.Local)
	n := Native{
		Key:       "42",
		SourceApp: "org.gnome.Evolution",
		AppName:   "evolution",
		Title:     "New mail",
		Body:      "From Alice",
		PostedAt:  posted,
	}

	t.Run("resolved name", func(t *testing.T) {
		r := NewRecord(n, "Evolution")
		assert.Equal(t, "42", r.Key)
		assert.Equal(t, "Evolution", r.AppName)
		assert.Equal(t, "09:05", r.DisplayTime)
		assert.True(t, r.PostedAt.Equal(posted))
	})

	t.Run("falls back to app name", func(t *testing.T) {
		r := NewRecord(n, "")
		assert.Equal(t, "evolution", r.AppName)
	})

	t.Run("falls back to source app", func(t *testing.T) {
		m := n
		m.AppName = ""
		r := NewRecord(m, "")
		assert.Equal(t, "org.gnome.Evolution", r.AppName)
	})

	t.Run("zero posted time uses now", func(t *testing.T) {
		m := n
		m.PostedAt = time.Time{}
		r := NewRecord(m, "")
		assert.WithinDuration(t, time.Now(), r.PostedAt, time.Second)
	})
}

func TestNotificationRecord_Equal(t *testing.T) {
	now := time.Now()
	a := NotificationRecord{Key: "1", Title: "t", Body: "b", PostedAt: now}
	b := a
	assert.True(t, a.Equal(b))

	b.Body = "changed"
	assert.False(t, a.Equal(b))
}

func TestNotificationRecord_BodyTruncated(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		maxLen int
		want   string
	}{
		{"short", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"truncated", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero", "hello", 0, ""},
		{"collapses whitespace", "a\n\nb   c", 10, "a b c"},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NotificationRecord{Body: tt.body}
			assert.Equal(t, tt.want, r.BodyTruncated(tt.maxLen))
		})
	}
}

func TestNotificationRecord_RelativeTime(t *testing.T) {
	r := NotificationRecord{PostedAt: time.Now().Add(-3 * time.Minute)}
	assert.Equal(t, "3 minutes ago", r.RelativeTime())
}

func TestNewSessionID(t *testing.T) {
	a, err := NewSessionID()
	require.NoError(t, err)
	b, err := NewSessionID()
	require.NoError(t, err)

	assert.Len(t, a, 26)
	assert.NotEqual(t, a, b)
}

func TestPlaceholder(t *testing.T) {
	p := Placeholder("missing.app")
	assert.Equal(t, "missing.app", p.ID)
	assert.Equal(t, "missing.app", p.Name)
	assert.Equal(t, PlaceholderIcon, p.Icon)
}
