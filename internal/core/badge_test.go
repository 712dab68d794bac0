package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBadge(t *testing.T) {
	tests := []struct {
		name          string
		selected      int
		notifications int
		access        bool
		wantVisible   bool
		wantText      string
	}{
		{"apps only", 3, 0, true, true, "3"},
		{"notifications win", 3, 5, true, true, "5"},
		{"nothing", 0, 0, true, false, ""},
		{"notifications without apps", 0, 2, true, true, "2"},
		{"no access ignores notifications", 3, 5, false, true, "3"},
		{"no access and no apps", 0, 5, false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeBadge(tt.selected, tt.notifications, tt.access)
			assert.Equal(t, tt.wantVisible, b.Visible)
			assert.Equal(t, tt.wantText, b.Text())
		})
	}
}
