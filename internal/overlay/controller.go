package overlay

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jmylchreest/floatify/internal/bus"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
)

// Surface creates overlay windows.
type Surface interface {
	CreateBubble(pos model.Point) (Bubble, error)
	CreateMenu(anchor model.Point) (Menu, error)
}

// Bubble is the floating bubble window.
type Bubble interface {
	// Move repositions the bubble and returns where it ended up, which may
	// differ from pos when the surface keeps the bubble on screen.
	Move(pos model.Point) (model.Point, error)
	SetBadge(b core.Badge) error
	Destroy()
}

// Menu is the floating menu window.
type Menu interface {
	Render(view MenuView) error
	Destroy()
}

// Prefs is the persisted configuration the controller reads and writes.
type Prefs interface {
	SelectedApps() []string
	ShowNotifications() bool
	Active() bool
	SetActive(active bool)
	Position() (model.Point, bool)
	SetPosition(pt model.Point)
}

// Registry resolves and launches applications.
type Registry interface {
	Resolve(id string) (model.AppInfo, error)
	Launch(id string) error
}

// Mirror is the read side of the notification mirror.
type Mirror interface {
	All() []model.NotificationRecord
	Count() int
}

// Capabilities answers environment permission queries.
type Capabilities interface {
	HasOverlayPermission() bool
	HasNotificationAccess() bool
}

// Feed attaches the notification feed. Both calls must return without blocking.
type Feed interface {
	Connect()
	Disconnect()
}

// Subscriber is the consumer side of the event bus.
type Subscriber interface {
	Subscribe(fn func(bus.Event)) (unsubscribe func())
}

// SettingsOpener opens the system surface that grants notification access.
type SettingsOpener interface {
	OpenNotificationSettings() error
}

// Options holds the controller's collaborators.
type Options struct {
	Surface      Surface
	Prefs        Prefs
	Registry     Registry
	Mirror       Mirror
	Capabilities Capabilities
	Feed         Feed
	Bus          Subscriber
	Settings     SettingsOpener

	// DefaultPosition is used when no bubble position is persisted.
	DefaultPosition model.Point

	Logger *slog.Logger
	Now    func() time.Time
}

// Controller owns one overlay session at a time.
type Controller struct {
	opts   Options
	logger *slog.Logger
	now    func() time.Time

	state     State
	sessionID string
	bubble    Bubble
	menu      Menu
	tab       Tab
	pos       model.Point
	badge     core.Badge
	gesture   *GestureSession

	unsubscribe    func()
	listeners      []func(State)
	badgeListeners []func(core.Badge)
}

// New creates a controller in the Hidden state.
func New(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		opts:   opts,
		logger: logger,
		now:    now,
		state:  Hidden,
	}
}

// State returns the current session state.
func (c *Controller) State() State { return c.state }

// Tab returns the selected menu tab.
func (c *Controller) Tab() Tab { return c.tab }

// Badge returns the last computed badge.
func (c *Controller) Badge() core.Badge { return c.badge }

// Position returns the bubble's current position.
func (c *Controller) Position() model.Point { return c.pos }

// SessionID returns the id of the running session, or "".
func (c *Controller) SessionID() string { return c.sessionID }

// OnStateChange registers fn to be called after every state transition.
func (c *Controller) OnStateChange(fn func(State)) {
	c.listeners = append(c.listeners, fn)
}

// OnBadgeChange registers fn to be called whenever the bubble badge changes.
func (c *Controller) OnBadgeChange(fn func(core.Badge)) {
	c.badgeListeners = append(c.badgeListeners, fn)
}

// Start shows the bubble. It returns ErrPermissionDenied when overlays are not
// permitted, or a *WindowError when the bubble could not be created; in both
// cases the session ends Hidden and the inactive flag is persisted.
func (c *Controller) Start() error {
	if c.state != Hidden {
		return nil
	}

	if !c.opts.Capabilities.HasOverlayPermission() {
		c.logger.Warn("overlay permission not granted, not starting bubble")
		c.opts.Prefs.SetActive(false)
		return ErrPermissionDenied
	}

	id, err := model.NewSessionID()
	if err != nil {
		c.logger.Warn("failed to create session id", "error", err)
	}
	c.sessionID = id
	c.logger = c.baseLogger().With("session", id)

	pos := c.opts.DefaultPosition
	if saved, ok := c.opts.Prefs.Position(); ok {
		pos = saved
	}

	bubble, err := c.opts.Surface.CreateBubble(pos)
	if err != nil {
		werr := asWindowError(ScopeBubble, "create", err)
		c.sessionFailed(werr)
		return werr
	}

	c.bubble = bubble
	c.pos = pos
	c.tab = TabApps
	c.opts.Prefs.SetActive(true)
	c.unsubscribe = c.opts.Bus.Subscribe(c.handleEvent)
	c.opts.Feed.Connect()
	c.setState(BubbleShown)
	c.logger.Info("bubble started", "x", pos.X, "y", pos.Y)

	c.updateBadge()
	return nil
}

// Stop ends the session and persists the inactive flag.
func (c *Controller) Stop() {
	if c.state == Hidden {
		return
	}
	c.logger.Info("bubble stopped")
	c.teardown(true)
}

// Shutdown releases the session without touching the persisted active flag,
// so the bubble returns the next time the daemon starts.
func (c *Controller) Shutdown() {
	if c.state == Hidden {
		return
	}
	c.logger.Info("bubble shut down")
	c.teardown(false)
}

// PermissionRevoked ends the session after the overlay capability was lost.
func (c *Controller) PermissionRevoked() {
	if c.state == Hidden {
		return
	}
	c.logger.Warn("overlay permission revoked")
	c.teardown(true)
}

// RefreshApps re-reads the selected apps and updates the badge and menu.
func (c *Controller) RefreshApps() {
	if c.state == Hidden {
		return
	}
	if c.state == MenuShown && c.tab == TabApps {
		c.render()
	}
	c.updateBadge()
}

// HandleTouch feeds one touch event on the bubble through the gesture machine.
func (c *Controller) HandleTouch(ev TouchEvent) {
	if c.state == Hidden || c.bubble == nil {
		return
	}
	at := ev.At
	if at.IsZero() {
		at = c.now()
	}

	switch ev.Action {
	case TouchPress:
		c.gesture = NewGestureSession(c.pos, ev.X, ev.Y, at)

	case TouchMove:
		if c.gesture == nil {
			return
		}
		pos := c.gesture.WindowAt(ev.X, ev.Y)
		if pos == c.pos {
			return
		}
		applied, err := c.bubble.Move(pos)
		if err != nil {
			c.sessionFailed(asWindowError(ScopeBubble, "move", err))
			return
		}
		c.pos = applied

	case TouchRelease:
		g := c.gesture
		c.gesture = nil
		if g == nil {
			return
		}
		gesture := g.Classify(ev.X, ev.Y, at)
		c.logger.Debug("gesture", "kind", gesture, "x", c.pos.X, "y", c.pos.Y)
		if gesture == GestureTap {
			c.toggleMenu()
			return
		}
		if c.pos != g.StartWindow {
			c.opts.Prefs.SetPosition(c.pos)
		}

	case TouchCancel:
		c.gesture = nil
	}
}

// SelectTab switches the menu tab. The Notifications tab pulls a fresh snapshot.
func (c *Controller) SelectTab(tab Tab) {
	if c.state != MenuShown {
		return
	}
	c.tab = tab
	c.render()
}

// SelectApp launches the app id and closes the menu.
func (c *Controller) SelectApp(id string) {
	if c.state != MenuShown {
		return
	}
	c.launch(id)
	c.CloseMenu()
}

// SelectNotification launches the source app of the notification and closes the menu.
func (c *Controller) SelectNotification(key string) {
	if c.state != MenuShown {
		return
	}
	if rec := core.LookupByKey(c.opts.Mirror.All(), key); rec != nil {
		c.launch(rec.SourceApp)
	} else {
		c.logger.Debug("selected notification no longer mirrored", "key", key)
	}
	c.CloseMenu()
}

// OpenNotificationSettings opens the notification access settings and closes the menu.
func (c *Controller) OpenNotificationSettings() {
	if c.state != MenuShown {
		return
	}
	if c.opts.Settings != nil {
		if err := c.opts.Settings.OpenNotificationSettings(); err != nil {
			c.logger.Warn("failed to open notification settings", "error", err)
		}
	}
	c.CloseMenu()
}

// CloseMenu closes the menu, keeping the bubble.
func (c *Controller) CloseMenu() {
	if c.state != MenuShown {
		return
	}
	c.destroyMenu()
	c.setState(BubbleShown)
}

// WindowLost reports a window that went away outside a controller call, such
// as a compositor closing the surface. Losing the bubble ends the session.
func (c *Controller) WindowLost(scope WindowScope, err error) {
	switch scope {
	case ScopeBubble:
		if c.bubble == nil {
			return
		}
		c.sessionFailed(asWindowError(ScopeBubble, "lost", err))
	case ScopeMenu:
		if c.menu == nil {
			return
		}
		c.menuFailed(asWindowError(ScopeMenu, "lost", err))
	}
}

// View builds the menu content for the current tab.
func (c *Controller) View() MenuView {
	view := MenuView{Tab: c.tab}

	switch c.tab {
	case TabNotifications:
		switch {
		case !c.opts.Capabilities.HasNotificationAccess():
			view.Placeholder = PlaceholderNeedsAccess
		case !c.opts.Prefs.ShowNotifications():
			view.Placeholder = PlaceholderNotificationsHidden
		default:
			view.Rows = NotificationRows(c.opts.Mirror.All())
			if len(view.Rows) == 0 {
				view.Placeholder = PlaceholderNoNotifications
			}
		}
	default:
		view.Rows = ShortcutRows(BuildShortcuts(c.opts.Prefs.SelectedApps(), c.resolve))
		if len(view.Rows) == 0 {
			view.Placeholder = PlaceholderNoApps
		}
	}
	return view
}

func (c *Controller) handleEvent(ev bus.Event) {
	if c.state == Hidden {
		return
	}
	switch ev.Kind {
	case bus.NotificationChanged:
		if c.state == MenuShown && c.tab == TabNotifications {
			c.render()
		}
	case bus.AppsChanged:
		if c.state == MenuShown && c.tab == TabApps {
			c.render()
		}
	}
	c.updateBadge()
}

func (c *Controller) toggleMenu() {
	if c.state == MenuShown {
		c.CloseMenu()
		return
	}

	menu, err := c.opts.Surface.CreateMenu(c.pos)
	if err != nil {
		c.menuFailed(asWindowError(ScopeMenu, "create", err))
		return
	}
	c.menu = menu
	c.tab = TabApps
	c.setState(MenuShown)
	c.render()
}

func (c *Controller) render() {
	if c.menu == nil {
		return
	}
	if err := c.menu.Render(c.View()); err != nil {
		c.menuFailed(asWindowError(ScopeMenu, "render", err))
	}
}

func (c *Controller) updateBadge() {
	if c.bubble == nil {
		return
	}
	badge := core.ComputeBadge(
		len(c.opts.Prefs.SelectedApps()),
		c.opts.Mirror.Count(),
		c.opts.Capabilities.HasNotificationAccess(),
	)
	if err := c.bubble.SetBadge(badge); err != nil {
		c.sessionFailed(asWindowError(ScopeBubble, "badge", err))
		return
	}
	c.setBadge(badge)
}

func (c *Controller) setBadge(b core.Badge) {
	if c.badge == b {
		return
	}
	c.badge = b
	for _, fn := range c.badgeListeners {
		fn(b)
	}
}

func (c *Controller) launch(id string) {
	if id == "" {
		return
	}
	if err := c.opts.Registry.Launch(id); err != nil {
		c.logger.Warn("failed to launch app", "app", id, "error", err)
	}
}

func (c *Controller) resolve(id string) model.AppInfo {
	info, err := c.opts.Registry.Resolve(id)
	if err != nil {
		c.logger.Debug("app lookup failed, using placeholder", "app", id, "error", err)
		return model.Placeholder(id)
	}
	if info.Name == "" {
		info.Name = id
	}
	if info.Icon == "" {
		info.Icon = model.PlaceholderIcon
	}
	return info
}

// menuFailed drops the menu and keeps the bubble.
func (c *Controller) menuFailed(err *WindowError) {
	c.logger.Error("menu window failed", "op", err.Op, "kind", err.Kind, "error", err)
	c.destroyMenu()
	if c.state == MenuShown {
		c.setState(BubbleShown)
	}
}

// sessionFailed ends the whole session after a bubble failure.
func (c *Controller) sessionFailed(err *WindowError) {
	c.logger.Error("bubble window failed, ending session", "op", err.Op, "kind", err.Kind, "error", err)
	if c.state == Hidden {
		c.opts.Prefs.SetActive(false)
		c.resetSession()
		return
	}
	c.teardown(true)
}

// teardown releases every resource the session acquired.
func (c *Controller) teardown(persistInactive bool) {
	c.gesture = nil
	c.destroyMenu()
	if c.bubble != nil {
		c.bubble.Destroy()
		c.bubble = nil
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.opts.Feed.Disconnect()
	if persistInactive {
		c.opts.Prefs.SetActive(false)
	}
	c.setBadge(core.Badge{})
	c.setState(Hidden)
	c.resetSession()
}

func (c *Controller) destroyMenu() {
	if c.menu != nil {
		c.menu.Destroy()
		c.menu = nil
	}
}

func (c *Controller) resetSession() {
	c.sessionID = ""
	c.logger = c.baseLogger()
}

func (c *Controller) baseLogger() *slog.Logger {
	if c.opts.Logger != nil {
		return c.opts.Logger
	}
	return slog.Default()
}

func (c *Controller) setState(s State) {
	if c.state == s {
		return
	}
	c.logger.Debug("overlay state", "from", c.state, "to", s)
	c.state = s
	for _, fn := range c.listeners {
		fn(s)
	}
}

// IsPermissionDenied reports whether err came from a denied overlay permission.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
