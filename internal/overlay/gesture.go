package overlay

import (
	"math"
	"time"

	"github.com/jmylchreest/floatify/internal/model"
)

const (
	// TapSlop is the movement, in pixels per axis, below which a touch can be a tap.
	TapSlop = 15
	// TapTimeout is the press duration below which a touch can be a tap.
	TapTimeout = 300 * time.Millisecond
)

// TouchAction is the phase of a touch sequence.
type TouchAction int

const (
	TouchPress TouchAction = iota
	TouchMove
	TouchRelease
	TouchCancel
)

func (a TouchAction) String() string {
	switch a {
	case TouchPress:
		return "press"
	case TouchMove:
		return "move"
	case TouchRelease:
		return "release"
	case TouchCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// TouchEvent is a pointer or touch event on the bubble, in screen coordinates.
type TouchEvent struct {
	Action TouchAction
	X, Y   float64
	At     time.Time // zero means now
}

// Gesture is the classification of a completed touch sequence.
type Gesture int

const (
	GestureTap Gesture = iota
	GestureDrag
)

func (g Gesture) String() string {
	if g == GestureTap {
		return "tap"
	}
	return "drag"
}

// GestureSession captures the state at press time. It lives from press to
// release and is never persisted.
type GestureSession struct {
	StartWindow model.Point
	StartTouchX float64
	StartTouchY float64
	StartTime   time.Time
}

// NewGestureSession starts a session for a press at (x, y) on a window at window.
func NewGestureSession(window model.Point, x, y float64, at time.Time) *GestureSession {
	return &GestureSession{
		StartWindow: window,
		StartTouchX: x,
		StartTouchY: y,
		StartTime:   at,
	}
}

// WindowAt returns the window position that tracks the touch at (x, y) 1:1.
func (g *GestureSession) WindowAt(x, y float64) model.Point {
	dx := int(math.Round(x - g.StartTouchX))
	dy := int(math.Round(y - g.StartTouchY))
	return g.StartWindow.Add(dx, dy)
}

// Classify decides whether a release at (x, y) at time at ends a tap or a drag.
// A tap moved less than TapSlop on both axes and lasted less than TapTimeout.
func (g *GestureSession) Classify(x, y float64, at time.Time) Gesture {
	dx := math.Abs(x - g.StartTouchX)
	dy := math.Abs(y - g.StartTouchY)
	dt := at.Sub(g.StartTime)
	if dx < TapSlop && dy < TapSlop && dt < TapTimeout {
		return GestureTap
	}
	return GestureDrag
}
