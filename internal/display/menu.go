package display

import (
	"log/slog"
	"strings"

	layershell "github.com/diamondburned/gotk4-layer-shell/pkg/gtk4layershell"
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"

	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/overlay"
	"github.com/jmylchreest/floatify/internal/rows"
)

// MenuWindow is the tabbed menu shown next to the bubble.
type MenuWindow struct {
	window *gtk.Window
	logger *slog.Logger
	surf   *Surface

	appsTab   *gtk.Button
	notifsTab *gtk.Button
	list      *gtk.Box
	scroller  *gtk.ScrolledWindow
	empty     *gtk.Label
	settings  *gtk.Button

	tab     overlay.Tab
	current []rows.Row
	widgets map[string]*rowWidget
	closed  bool
}

type rowWidget struct {
	button   *gtk.Button
	icon     *gtk.Image
	title    *gtk.Label
	subtitle *gtk.Label
	detail   *gtk.Label
}

func newMenuWindow(app *gtk.Application, s *Surface, anchor model.Point) (*MenuWindow, error) {
	if gdk.DisplayGetDefault() == nil {
		return nil, overlay.NewWindowError(overlay.KindInvalidToken, "create", errNoDisplay)
	}
	if !layershell.IsSupported() {
		return nil, overlay.NewWindowError(overlay.KindSecurityRejection, "create", errNoLayerShell)
	}

	cfg := s.config.Menu
	m := &MenuWindow{
		logger:  s.logger,
		surf:    s,
		widgets: make(map[string]*rowWidget),
	}

	m.window = gtk.NewWindow()
	m.window.SetApplication(app)
	m.window.SetDecorated(false)
	m.window.SetResizable(false)
	m.window.SetDefaultSize(cfg.Width, -1)

	layershell.InitForWindow(m.window)
	if !layershell.IsLayerWindow(m.window) {
		m.window.Destroy()
		return nil, overlay.NewWindowError(overlay.KindSecurityRejection, "create", errNotLayered)
	}
	layershell.SetLayer(m.window, layershell.LayerShellLayerOverlay)
	layershell.SetExclusiveZone(m.window, -1)
	layershell.SetKeyboardMode(m.window, layershell.LayerShellKeyboardModeOnDemand)
	layershell.SetNamespace(m.window, "floatify-menu")
	if mon := s.placement.Monitor(); mon != nil {
		layershell.SetMonitor(m.window, mon)
	}

	origin := MenuOrigin(anchor, s.config.Bubble.Size, cfg.Width, cfg.MaxHeight, cfg.Gap, s.placement.Area())
	layershell.SetAnchor(m.window, layershell.LayerShellEdgeTop, true)
	layershell.SetAnchor(m.window, layershell.LayerShellEdgeLeft, true)
	layershell.SetMargin(m.window, layershell.LayerShellEdgeLeft, origin.X)
	layershell.SetMargin(m.window, layershell.LayerShellEdgeTop, origin.Y)

	m.buildUI(cfg.MaxHeight, s.config.Theme.ColorScheme)
	m.connectSignals()
	m.window.Present()
	return m, nil
}

func (m *MenuWindow) buildUI(maxHeight int, colorScheme string) {
	root := gtk.NewBox(gtk.OrientationVertical, 6)
	root.AddCSSClass("floatify-menu")
	root.AddCSSClass(colorSchemeClass(colorScheme))

	tabs := gtk.NewBox(gtk.OrientationHorizontal, 0)
	tabs.AddCSSClass("menu-tabs")
	tabs.SetHomogeneous(true)
	m.appsTab = gtk.NewButtonWithLabel("Apps")
	m.appsTab.AddCSSClass("menu-tab")
	m.appsTab.ConnectClicked(func() { m.surf.interact(func(i Interactor) { i.SelectTab(overlay.TabApps) }) })
	m.notifsTab = gtk.NewButtonWithLabel("Notifications")
	m.notifsTab.AddCSSClass("menu-tab")
	m.notifsTab.ConnectClicked(func() { m.surf.interact(func(i Interactor) { i.SelectTab(overlay.TabNotifications) }) })
	tabs.Append(m.appsTab)
	tabs.Append(m.notifsTab)
	root.Append(tabs)

	m.list = gtk.NewBox(gtk.OrientationVertical, 2)
	m.list.AddCSSClass("menu-list")

	m.scroller = gtk.NewScrolledWindow()
	m.scroller.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	m.scroller.SetPropagateNaturalHeight(true)
	m.scroller.SetMaxContentHeight(maxHeight)
	m.scroller.SetChild(m.list)
	root.Append(m.scroller)

	m.empty = gtk.NewLabel("")
	m.empty.AddCSSClass("menu-placeholder")
	m.empty.SetWrap(true)
	m.empty.SetVisible(false)
	root.Append(m.empty)

	m.settings = gtk.NewButtonWithLabel("Open notification settings")
	m.settings.AddCSSClass("menu-settings")
	m.settings.SetVisible(false)
	m.settings.ConnectClicked(func() { m.surf.interact(func(i Interactor) { i.OpenNotificationSettings() }) })
	root.Append(m.settings)

	m.window.SetChild(root)
}

func (m *MenuWindow) connectSignals() {
	keys := gtk.NewEventControllerKey()
	keys.ConnectKeyPressed(func(keyval, _ uint, _ gdk.ModifierType) bool {
		if keyval == gdk.KEY_Escape {
			m.surf.interact(func(i Interactor) { i.CloseMenu() })
			return true
		}
		return false
	})
	m.window.AddController(keys)

	m.window.ConnectCloseRequest(func() bool {
		if m.closed {
			return false
		}
		m.closed = true
		m.surf.lost(overlay.ScopeMenu, errClosed)
		return false
	})
}

// Render patches the window to show view.
func (m *MenuWindow) Render(view overlay.MenuView) error {
	if m.closed {
		return overlay.NewWindowError(overlay.KindInvalidToken, "render", errClosed)
	}

	if view.Tab != m.tab {
		m.clearRows()
		m.tab = view.Tab
	}
	setTabActive(m.appsTab, view.Tab == overlay.TabApps)
	setTabActive(m.notifsTab, view.Tab == overlay.TabNotifications)

	m.patch(view.Rows)

	m.scroller.SetVisible(!view.Empty())
	m.empty.SetText(view.Placeholder.Text())
	m.empty.SetVisible(view.Empty())
	m.settings.SetVisible(view.NeedsAccess())
	return nil
}

func setTabActive(b *gtk.Button, active bool) {
	if active {
		b.AddCSSClass("active")
	} else {
		b.RemoveCSSClass("active")
	}
}

// patch moves the row widgets from m.current to next with the fewest changes.
func (m *MenuWindow) patch(next []rows.Row) {
	ops := rows.Diff(m.current, next)
	if !rows.Changed(m.current, ops) {
		return
	}

	for _, op := range ops {
		switch op.Kind {
		case rows.OpRemove:
			if w, ok := m.widgets[op.Key]; ok {
				m.list.Remove(w.button)
				delete(m.widgets, op.Key)
			}
		case rows.OpInsert:
			w := m.newRow(op.Row)
			m.widgets[op.Key] = w
			m.list.InsertChildAfter(w.button, m.sibling(op.After))
		case rows.OpUpdate:
			w := m.widgets[op.Key]
			w.update(op.Row)
			m.list.ReorderChildAfter(w.button, m.sibling(op.After))
		case rows.OpKeep:
			m.list.ReorderChildAfter(m.widgets[op.Key].button, m.sibling(op.After))
		}
	}
	m.current = next
	m.logger.Debug("menu rows patched", "tab", m.tab, "ops", len(ops), "rows", len(next))
}

func (m *MenuWindow) sibling(key string) gtk.Widgetter {
	if key == "" {
		return nil
	}
	if w, ok := m.widgets[key]; ok {
		return w.button
	}
	return nil
}

func (m *MenuWindow) clearRows() {
	for key, w := range m.widgets {
		m.list.Remove(w.button)
		delete(m.widgets, key)
	}
	m.current = nil
}

func (m *MenuWindow) newRow(r rows.Row) *rowWidget {
	w := &rowWidget{
		button:   gtk.NewButton(),
		icon:     gtk.NewImage(),
		title:    gtk.NewLabel(""),
		subtitle: gtk.NewLabel(""),
		detail:   gtk.NewLabel(""),
	}
	w.button.AddCSSClass("menu-row")
	w.button.AddCSSClass("flat")
	if class := sanitizeClassName(r.Key); class != "" {
		w.button.AddCSSClass("row-" + class)
	}
	w.icon.AddCSSClass("menu-row-icon")
	w.icon.SetPixelSize(32)
	w.title.AddCSSClass("menu-row-title")
	w.title.SetXAlign(0)
	w.title.SetEllipsize(3) // PANGO_ELLIPSIZE_END
	w.subtitle.AddCSSClass("menu-row-subtitle")
	w.subtitle.SetXAlign(0)
	w.subtitle.SetEllipsize(3)
	w.detail.AddCSSClass("menu-row-detail")
	w.detail.SetVAlign(gtk.AlignStart)

	text := gtk.NewBox(gtk.OrientationVertical, 0)
	text.SetHExpand(true)
	text.Append(w.title)
	text.Append(w.subtitle)

	content := gtk.NewBox(gtk.OrientationHorizontal, 8)
	content.Append(w.icon)
	content.Append(text)
	content.Append(w.detail)
	w.button.SetChild(content)

	key := r.Key
	w.button.ConnectClicked(func() {
		tab := m.tab
		m.surf.interact(func(i Interactor) {
			if tab == overlay.TabNotifications {
				i.SelectNotification(key)
			} else {
				i.SelectApp(key)
			}
		})
	})

	w.update(r)
	return w
}

func (w *rowWidget) update(r rows.Row) {
	if strings.HasPrefix(r.Icon, "/") {
		w.icon.SetFromFile(r.Icon)
	} else {
		w.icon.SetFromIconName(r.Icon)
	}
	w.title.SetText(r.Title)
	w.subtitle.SetText(r.Subtitle)
	w.subtitle.SetVisible(r.Subtitle != "")
	w.detail.SetText(r.Detail)
	w.detail.SetVisible(r.Detail != "")
}

// Destroy closes the menu window.
func (m *MenuWindow) Destroy() {
	if m.closed {
		return
	}
	m.closed = true
	m.window.Destroy()
}
