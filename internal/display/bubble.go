package display

import (
	"errors"
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/overlay"
)

var (
	errNoDisplay    = errors.New("no display available")
	errNoLayerShell = errors.New("compositor does not support layer-shell")
	errNotLayered   = errors.New("window could not become a layer surface")
	errClosed       = errors.New("window already closed")
)

// BubbleWindow is the draggable layer-shell bubble.
type BubbleWindow struct {
	window *gtk.Window
	badge  *gtk.Label
	logger *slog.Logger

	size   int
	area   Area
	pos    model.Point
	closed bool

	// pointer position inside the window when the drag began
	startX, startY float64
}

// newBubbleWindow creates and presents the bubble at pos.
func newBubbleWindow(app *gtk.Application, s *Surface, pos model.Point) (*BubbleWindow, error) {
	if gdk.DisplayGetDefault() == nil {
		return nil, overlay.NewWindowError(overlay.KindInvalidToken, "create", errNoDisplay)
	}
	if !layershell.IsSupported() {
		return nil, overlay.NewWindowError(overlay.KindSecurityRejection, "create", errNoLayerShell)
	}

	b := &BubbleWindow{
		logger: s.logger,
		size:   s.config.Bubble.Size,
		area:   s.placement.Area(),
	}

	b.window = gtk.NewWindow()
	b.window.SetApplication(app)
	b.window.SetDecorated(false)
	b.window.SetResizable(false)
	b.window.SetDefaultSize(b.size, b.size)
	b.window.SetSizeRequest(b.size, b.size)

	layershell.InitForWindow(b.window)
	if !layershell.IsLayerWindow(b.window) {
		b.window.Destroy()
		return nil, overlay.NewWindowError(overlay.KindSecurityRejection, "create", errNotLayered)
	}
	layershell.SetLayer(b.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(b.window, -1) // Ignore other surfaces' exclusive zones
	layershell.SetKeyboardMode(b.window, layershell.LayerShellKeyboardModeNone)
	layershell.SetNamespace(b.window, "floatify-bubble")
	if m := s.placement.Monitor(); m != nil {
		layershell.SetMonitor(b.window, m)
	}
	layershell.SetAnchor(b.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(b.window, layershell.LayerShellEdgeLeft, true)

	b.buildUI(s.config.Theme.ColorScheme)
	b.connectSignals(s)
	b.place(pos)
	b.window.Present()
	return b, nil
}

func (b *BubbleWindow) buildUI(colorScheme string) {
	icon := gtk.NewImageFromIconName("view-app-grid-symbolic")
	icon.AddCSSClass("bubble-icon")
	icon.SetPixelSize(b.size / 2)

	b.badge = gtk.NewLabel("")
	b.badge.AddCSSClass("bubble-badge")
	b.badge.SetHAlign(gtk.AlignEnd)
	b.badge.SetVAlign(gtk.AlignStart)
	b.badge.SetVisible(false)

	stack := gtk.NewOverlay()
	stack.AddCSSClass("floatify-bubble")
	stack.AddCSSClass(colorSchemeClass(colorScheme))
	stack.SetChild(icon)
	stack.AddOverlay(b.badge)

	b.window.SetChild(stack)
}

// connectSignals translates the drag gesture into overlay touch events in
// screen space: window origin plus the pointer's offset inside the window.
func (b *BubbleWindow) connectSignals(s *Surface) {
	drag := gtk.NewGestureDrag()
	drag.SetButton(1)
	drag.ConnectDragBegin(func(startX, startY float64) {
		b.startX, b.startY = startX, startY
		x, y := b.screenPoint(0, 0)
		s.touch(overlay.TouchEvent{Action: overlay.TouchPress, X: x, Y: y})
	})
	drag.ConnectDragUpdate(func(offsetX, offsetY float64) {
		x, y := b.screenPoint(offsetX, offsetY)
		s.touch(overlay.TouchEvent{Action: overlay.TouchMove, X: x, Y: y})
	})
	drag.ConnectDragEnd(func(offsetX, offsetY float64) {
		x, y := b.screenPoint(offsetX, offsetY)
		s.touch(overlay.TouchEvent{Action: overlay.TouchRelease, X: x, Y: y})
	})
	drag.ConnectCancel(func(_ *gdk.EventSequence) {
		s.touch(overlay.TouchEvent{Action: overlay.TouchCancel})
	})
	b.window.AddController(drag)

	b.window.ConnectCloseRequest(func() bool {
		if b.closed {
			return false
		}
		b.closed = true
		s.lost(overlay.ScopeBubble, errClosed)
		return false
	})
}

func (b *BubbleWindow) screenPoint(offsetX, offsetY float64) (float64, float64) {
	return float64(b.pos.X) + b.startX + offsetX, float64(b.pos.Y) + b.startY + offsetY
}

func (b *BubbleWindow) place(pos model.Point) {
	b.pos = ClampBubble(pos, b.size, b.area)
	layershell.SetMargin(b.window, layershell.LayerShellEdgeLeft, b.pos.X)
	layershell.SetMargin(b.window, layershell.LayerShellEdgeTop, b.pos.Y)
}

// Move repositions the bubble, clamped to the work area, and returns the
// position applied.
func (b *BubbleWindow) Move(pos model.Point) (model.Point, error) {
	if b.closed {
		return model.Point{}, overlay.NewWindowError(overlay.KindInvalidToken, "move", errClosed)
	}
	b.place(pos)
	return b.pos, nil
}

// SetBadge shows or hides the count badge.
func (b *BubbleWindow) SetBadge(badge core.Badge) error {
	if b.closed {
		return overlay.NewWindowError(overlay.KindInvalidToken, "badge", errClosed)
	}
	b.badge.SetText(badge.Text())
	b.badge.SetVisible(badge.Visible)
	return nil
}

// Destroy closes the bubble window.
func (b *BubbleWindow) Destroy() {
	if b.closed {
		return
	}
	b.closed = true
	b.window.Destroy()
}
