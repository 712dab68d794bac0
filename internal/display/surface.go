package display

import (
	"log/slog"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/floatify/internal/config"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/overlay"
)

// Interactor receives user input from the windows. *overlay.Controller implements it.
type Interactor interface {
	HandleTouch(ev overlay.TouchEvent)
	SelectTab(tab overlay.Tab)
	SelectApp(id string)
	SelectNotification(key string)
	OpenNotificationSettings()
	CloseMenu()
	WindowLost(scope overlay.WindowScope, err error)
}

// OverlaySupported reports whether the compositor offers layer-shell
// surfaces. It must be called on the GTK main loop.
func OverlaySupported() bool {
	return layershell.IsSupported()
}

// Surface creates bubble and menu windows. All methods run on the GTK main loop.
type Surface struct {
	app       *gtk.Application
	config    *config.DaemonConfig
	placement *Placement
	logger    *slog.Logger

	interactor Interactor
}

// NewSurface creates a Surface for app.
func NewSurface(app *gtk.Application, cfg *config.DaemonConfig, logger *slog.Logger) *Surface {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg == nil {
		cfg = config.DefaultDaemonConfig()
	}
	return &Surface{
		app:       app,
		config:    cfg,
		placement: NewPlacement(cfg.Bubble.Monitor, logger),
		logger:    logger,
	}
}

// Bind routes window input to i. Call before the first CreateBubble.
func (s *Surface) Bind(i Interactor) {
	s.interactor = i
}

// UpdateConfig applies a reloaded config to windows created afterwards.
func (s *Surface) UpdateConfig(cfg *config.DaemonConfig) {
	s.config = cfg
	s.placement = NewPlacement(cfg.Bubble.Monitor, s.logger)
}

// CreateBubble implements overlay.Surface.
func (s *Surface) CreateBubble(pos model.Point) (overlay.Bubble, error) {
	b, err := newBubbleWindow(s.app, s, pos)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("bubble window created", "x", b.pos.X, "y", b.pos.Y, "size", b.size)
	return b, nil
}

// CreateMenu implements overlay.Surface.
func (s *Surface) CreateMenu(anchor model.Point) (overlay.Menu, error) {
	m, err := newMenuWindow(s.app, s, anchor)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("menu window created", "anchor_x", anchor.X, "anchor_y", anchor.Y)
	return m, nil
}

func (s *Surface) touch(ev overlay.TouchEvent) {
	s.interact(func(i Interactor) { i.HandleTouch(ev) })
}

func (s *Surface) lost(scope overlay.WindowScope, err error) {
	s.interact(func(i Interactor) { i.WindowLost(scope, err) })
}

// interact runs fn against the bound interactor. GTK signal handlers are
// already on the main loop, so there is no extra hop.
func (s *Surface) interact(fn func(Interactor)) {
	if s.interactor == nil {
		s.logger.Debug("window input dropped, no interactor bound")
		return
	}
	fn(s.interactor)
}
