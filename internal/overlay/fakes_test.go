package overlay

import (
	"errors"
	"time"

	"github.com/jmylchreest/floatify/internal/bus"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/store"
)

type fakeBubble struct {
	surface   *fakeSurface
	moves     []model.Point
	badges    []core.Badge
	destroyed bool
}

func (b *fakeBubble) Move(pos model.Point) (model.Point, error) {
	if b.surface.failBubbleMove != nil {
		return model.Point{}, b.surface.failBubbleMove
	}
	if b.surface.clamp != nil {
		pos = b.surface.clamp(pos)
	}
	b.moves = append(b.moves, pos)
	return pos, nil
}

func (b *fakeBubble) SetBadge(badge core.Badge) error {
	if b.surface.failBadge != nil {
		return b.surface.failBadge
	}
	b.badges = append(b.badges, badge)
	return nil
}

func (b *fakeBubble) Destroy() { b.destroyed = true }

func (b *fakeBubble) lastBadge() core.Badge {
	if len(b.badges) == 0 {
		return core.Badge{}
	}
	return b.badges[len(b.badges)-1]
}

type fakeMenu struct {
	surface   *fakeSurface
	views     []MenuView
	destroyed bool
}

func (m *fakeMenu) Render(view MenuView) error {
	if m.surface.failRender != nil {
		return m.surface.failRender
	}
	m.views = append(m.views, view)
	return nil
}

func (m *fakeMenu) Destroy() { m.destroyed = true }

func (m *fakeMenu) lastView() MenuView {
	return m.views[len(m.views)-1]
}

type fakeSurface struct {
	bubbles []*fakeBubble
	menus   []*fakeMenu

	failCreateBubble error
	failCreateMenu   error
	failBubbleMove   error
	failBadge        error
	failRender       error

	clamp   func(model.Point) model.Point
	anchors []model.Point
}

func (s *fakeSurface) CreateBubble(pos model.Point) (Bubble, error) {
	if s.failCreateBubble != nil {
		return nil, s.failCreateBubble
	}
	b := &fakeBubble{surface: s, moves: []model.Point{pos}}
	s.bubbles = append(s.bubbles, b)
	return b, nil
}

func (s *fakeSurface) CreateMenu(anchor model.Point) (Menu, error) {
	if s.failCreateMenu != nil {
		return nil, s.failCreateMenu
	}
	m := &fakeMenu{surface: s}
	s.menus = append(s.menus, m)
	s.anchors = append(s.anchors, anchor)
	return m, nil
}

func (s *fakeSurface) bubble() *fakeBubble { return s.bubbles[len(s.bubbles)-1] }
func (s *fakeSurface) menu() *fakeMenu     { return s.menus[len(s.menus)-1] }

type fakePrefs struct {
	selected    []string
	show        bool
	active      bool
	activeCalls []bool
	pos         *model.Point
	positions   []model.Point
}

func newFakePrefs(selected ...string) *fakePrefs {
	return &fakePrefs{selected: selected, show: true}
}

func (p *fakePrefs) SelectedApps() []string  { return p.selected }
func (p *fakePrefs) ShowNotifications() bool { return p.show }
func (p *fakePrefs) Active() bool            { return p.active }

func (p *fakePrefs) SetActive(active bool) {
	p.active = active
	p.activeCalls = append(p.activeCalls, active)
}

func (p *fakePrefs) Position() (model.Point, bool) {
	if p.pos == nil {
		return model.Point{}, false
	}
	return *p.pos, true
}

func (p *fakePrefs) SetPosition(pt model.Point) {
	p.pos = &pt
	p.positions = append(p.positions, pt)
}

type fakeRegistry struct {
	apps     map[string]model.AppInfo
	launched []string
}

func (r *fakeRegistry) Resolve(id string) (model.AppInfo, error) {
	info, ok := r.apps[id]
	if !ok {
		return model.AppInfo{}, errors.New("no such app")
	}
	return info, nil
}

func (r *fakeRegistry) Launch(id string) error {
	r.launched = append(r.launched, id)
	if _, ok := r.apps[id]; !ok {
		return errors.New("no such app")
	}
	return nil
}

type fakeCaps struct {
	overlay bool
	mirror  *store.Mirror
}

func (c *fakeCaps) HasOverlayPermission() bool  { return c.overlay }
func (c *fakeCaps) HasNotificationAccess() bool { return c.mirror.Connected() }

type fakeFeed struct {
	mirror       *store.Mirror
	connects     int
	disconnects  int
	connectState bool
}

func (f *fakeFeed) Connect() {
	f.connects++
	f.mirror.SetConnected(f.connectState)
}

func (f *fakeFeed) Disconnect() {
	f.disconnects++
	f.mirror.SetConnected(false)
}

type fakeSettings struct{ opened int }

func (s *fakeSettings) OpenNotificationSettings() error {
	s.opened++
	return nil
}

type harness struct {
	loop     *bus.QueueLoop
	bus      *bus.Bus
	mirror   *store.Mirror
	surface  *fakeSurface
	prefs    *fakePrefs
	registry *fakeRegistry
	caps     *fakeCaps
	feed     *fakeFeed
	settings *fakeSettings
	ctl      *Controller
	clock    time.Time
}

func newHarness(selected ...string) *harness {
	h := &harness{
		loop:    &bus.QueueLoop{},
		surface: &fakeSurface{},
		prefs:   newFakePrefs(selected...),
		registry: &fakeRegistry{apps: map[string]model.AppInfo{
			"firefox.desktop":   {ID: "firefox.desktop", Name: "Firefox", Icon: "firefox"},
			"alacritty.desktop": {ID: "alacritty.desktop", Name: "alacritty", Icon: "Alacritty"},
			"slack.desktop":     {ID: "slack.desktop", Name: "Slack", Icon: "slack"},
		}},
		settings: &fakeSettings{},
		clock:    time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.bus = bus.New(h.loop, nil)
	h.mirror = store.NewMirror(core.NewPolicy(core.DefaultOwnApp, nil), store.WithPublisher(h.bus))
	h.caps = &fakeCaps{overlay: true, mirror: h.mirror}
	h.feed = &fakeFeed{mirror: h.mirror, connectState: true}
	h.ctl = New(Options{
		Surface:         h.surface,
		Prefs:           h.prefs,
		Registry:        h.registry,
		Mirror:          h.mirror,
		Capabilities:    h.caps,
		Feed:            h.feed,
		Bus:             h.bus,
		Settings:        h.settings,
		DefaultPosition: model.Point{X: 50, Y: 300},
		Now:             func() time.Time { return h.clock },
	})
	return h
}

func (h *harness) post(key, source string) {
	h.mirror.OnPosted(model.Native{
		Key:       key,
		SourceApp: source,
		AppName:   source,
		Title:     "title " + key,
		Body:      "body " + key,
		PostedAt:  h.clock,
		Clearable: true,
	})
}

func (h *harness) touch(action TouchAction, x, y float64, after time.Duration) {
	h.ctl.HandleTouch(TouchEvent{Action: action, X: x, Y: y, At: h.clock.Add(after)})
}

func (h *harness) tap() {
	h.touch(TouchPress, 10, 10, 0)
	h.touch(TouchRelease, 10, 10, 50*time.Millisecond)
}
