package display

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmylchreest/floatify/internal/model"
)

func TestClampBubble(t *testing.T) {
	area := Area{Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		pos      model.Point
		area     Area
		expected model.Point
	}{
		{"inside", model.Point{X: 50, Y: 300}, area, model.Point{X: 50, Y: 300}},
		{"negative", model.Point{X: -20, Y: -5}, area, model.Point{X: 0, Y: 0}},
		{"past right edge", model.Point{X: 1900, Y: 300}, area, model.Point{X: 1864, Y: 300}},
		{"past bottom edge", model.Point{X: 10, Y: 2000}, area, model.Point{X: 10, Y: 1024}},
		{"unknown area only floors", model.Point{X: 5000, Y: -1}, Area{}, model.Point{X: 5000, Y: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClampBubble(tt.pos, 56, tt.area))
		})
	}
}

func TestMenuOrigin(t *testing.T) {
	area := Area{Width: 1920, Height: 1080}

	tests := []struct {
		name     string
		bubble   model.Point
		area     Area
		expected model.Point
	}{
		{"right of bubble", model.Point{X: 50, Y: 300}, area, model.Point{X: 114, Y: 300}},
		{"flips left near right edge", model.Point{X: 1800, Y: 300}, area, model.Point{X: 1472, Y: 300}},
		{"pulled up near bottom", model.Point{X: 50, Y: 900}, area, model.Point{X: 114, Y: 600}},
		{"unknown area", model.Point{X: 1800, Y: 900}, Area{}, model.Point{X: 1864, Y: 900}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MenuOrigin(tt.bubble, 56, 320, 480, 8, tt.area))
		})
	}
}

func TestClamp_NarrowRange(t *testing.T) {
	assert.Equal(t, 0, clamp(10, 0, -5))
}

func TestSanitizeClassName(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"firefox.desktop", "firefox-desktop"},
		{"org.gnome.Nautilus", "org-gnome-nautilus"},
		{"My App", "my-app"},
		{"--weird__name--", "weird-name"},
		{"42", "42"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeClassName(tt.in))
		})
	}
}

func TestSettingsOpener_NoCommand(t *testing.T) {
	o := NewSettingsOpener("  ", nil)
	assert.ErrorIs(t, o.OpenNotificationSettings(), ErrNoSettingsCommand)
}
