package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/floatify/internal/dbus"
)

func TestWaybarStatus(t *testing.T) {
	tests := []struct {
		name    string
		status  dbus.Status
		want    WaybarStatus
		tooltip []string
	}{
		{
			name:    "bubble with notifications",
			status:  dbus.Status{State: "bubble", Badge: "3", Notifications: 3, Connected: true, Apps: 2},
			want:    WaybarStatus{Text: "3", Alt: "bubble", Class: "bubble"},
			tooltip: []string{"Bubble shown", "3 notifications", "2 apps in bubble"},
		},
		{
			name:    "hidden",
			status:  dbus.Status{State: "hidden", Apps: 1},
			want:    WaybarStatus{Alt: "hidden", Class: "hidden"},
			tooltip: []string{"Bubble hidden", "No notifications", "1 app in bubble"},
		},
		{
			name:    "feed down",
			status:  dbus.Status{State: "menu", Badge: "50", Notifications: 50},
			want:    WaybarStatus{Text: "50", Alt: "menu", Class: "disconnected"},
			tooltip: []string{"Menu open", "50 notifications", "Notification feed disconnected"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := waybarStatus(tt.status)
			assert.Equal(t, tt.want.Text, got.Text)
			assert.Equal(t, tt.want.Alt, got.Alt)
			assert.Equal(t, tt.want.Class, got.Class)
			for _, line := range tt.tooltip {
				assert.Contains(t, got.Tooltip, line)
			}
		})
	}
}

func TestStoppedStatus(t *testing.T) {
	st := stoppedStatus(errDaemonNotRunning)
	assert.Equal(t, "stopped", st.Class)
	assert.Empty(t, st.Text)
	assert.Equal(t, "floatifyd is not running", st.Tooltip)

	st = stoppedStatus(errors.New("no session bus"))
	assert.Contains(t, st.Tooltip, "no session bus")
}
