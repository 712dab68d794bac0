package display

import (
	"log/slog"
	"unsafe"

	"github.com/diamondburned/gotk4/pkg/core/glib"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"

	"github.com/jmylchreest/floatify/internal/model"
)

// Area is a monitor's usable rectangle in layer-shell margin space.
// A zero Area disables clamping.
type Area struct {
	Width  int
	Height int
}

// IsZero reports whether the area is unknown.
func (a Area) IsZero() bool {
	return a.Width <= 0 || a.Height <= 0
}

// ClampBubble keeps a bubble of the given size fully inside area.
func ClampBubble(pos model.Point, size int, area Area) model.Point {
	if area.IsZero() {
		return model.Point{X: max(pos.X, 0), Y: max(pos.Y, 0)}
	}
	return model.Point{
		X: clamp(pos.X, 0, area.Width-size),
		Y: clamp(pos.Y, 0, area.Height-size),
	}
}

// MenuOrigin places the menu beside the bubble: to the right when it fits,
// otherwise to the left, aligned with the bubble's top and kept on screen.
func MenuOrigin(bubble model.Point, bubbleSize, width, height, gap int, area Area) model.Point {
	origin := model.Point{X: bubble.X + bubbleSize + gap, Y: bubble.Y}
	if area.IsZero() {
		return origin
	}
	if origin.X+width > area.Width {
		origin.X = bubble.X - gap - width
	}
	origin.X = clamp(origin.X, 0, area.Width-width)
	origin.Y = clamp(origin.Y, 0, area.Height-height)
	return origin
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// Placement resolves the configured monitor and its area.
type Placement struct {
	monitor int
	display *gdk.Display
	logger  *slog.Logger
}

// NewPlacement creates a Placement. monitor is 1-indexed; 0 lets the compositor choose.
func NewPlacement(monitor int, logger *slog.Logger) *Placement {
	if logger == nil {
		logger = slog.Default()
	}
	return &Placement{
		monitor: monitor,
		display: gdk.DisplayGetDefault(),
		logger:  logger,
	}
}

// Monitor returns the configured monitor, or nil for the compositor's choice.
// Returns the first monitor if the configured one is not available.
func (p *Placement) Monitor() *gdk.Monitor {
	if p.display == nil || p.monitor == 0 {
		return nil
	}

	monitors := p.display.Monitors()
	if monitors == nil {
		p.logger.Warn("no monitors list available")
		return nil
	}

	index := uint(p.monitor - 1)
	if index >= monitors.NItems() {
		p.logger.Warn("configured monitor not available, using first",
			"configured", p.monitor,
			"available", monitors.NItems(),
		)
		return firstMonitor(p.display)
	}
	return wrapMonitor(monitors.Item(index))
}

// Area returns the usable area of the monitor windows will land on.
func (p *Placement) Area() Area {
	m := p.Monitor()
	if m == nil && p.display != nil {
		m = firstMonitor(p.display)
	}
	if m == nil {
		return Area{}
	}
	geo := m.Geometry()
	return Area{Width: geo.Width(), Height: geo.Height()}
}

// Refresh re-reads the default display after a monitor change.
func (p *Placement) Refresh() {
	p.display = gdk.DisplayGetDefault()
	if p.display == nil {
		p.logger.Warn("no display available after monitor change")
		return
	}
	if monitors := p.display.Monitors(); monitors != nil {
		p.logger.Info("monitor configuration changed", "count", monitors.NItems())
	}
}

// firstMonitor returns the first available monitor.
// GTK4 has no primary monitor concept.
func firstMonitor(display *gdk.Display) *gdk.Monitor {
	monitors := display.Monitors()
	if monitors == nil || monitors.NItems() == 0 {
		return nil
	}
	return wrapMonitor(monitors.Item(0))
}

// wrapMonitor wraps a glib.Object as a gdk.Monitor.
// gotk4 doesn't expose its own wrapMonitor, so the native pointer is re-cast
// the same way the bindings do internally.
func wrapMonitor(obj *glib.Object) *gdk.Monitor {
	if obj == nil {
		return nil
	}
	type monitor struct {
		_ [0]func()
		*glib.Object
	}
	m := &monitor{Object: obj}
	return (*gdk.Monitor)(unsafe.Pointer(m))
}
