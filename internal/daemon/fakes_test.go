package daemon

import (
	"errors"
	"sync"

	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/overlay"
)

type fakeMonitor struct {
	mu       sync.Mutex
	startErr error
	actives  []model.Native
	posted   dbus.PostedHandler
	closed   dbus.ClosedHandler
	done     chan struct{}
	stopped  bool
	doneOnce sync.Once
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{done: make(chan struct{})}
}

func (m *fakeMonitor) SetPostedHandler(h dbus.PostedHandler) { m.posted = h }
func (m *fakeMonitor) SetClosedHandler(h dbus.ClosedHandler) { m.closed = h }
func (m *fakeMonitor) Start() error                          { return m.startErr }
func (m *fakeMonitor) Active() []model.Native                { return m.actives }
func (m *fakeMonitor) Done() <-chan struct{}                 { return m.done }

func (m *fakeMonitor) Err() error {
	select {
	case <-m.done:
		return dbus.ErrFeedDisconnected
	default:
		return nil
	}
}

func (m *fakeMonitor) Stop() error {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
	m.drop()
	return nil
}

func (m *fakeMonitor) drop() {
	m.doneOnce.Do(func() { close(m.done) })
}

func (m *fakeMonitor) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// monitorQueue hands out prepared monitors in order.
type monitorQueue struct {
	mu       sync.Mutex
	monitors []*fakeMonitor
	created  chan *fakeMonitor
}

func newMonitorQueue(monitors ...*fakeMonitor) *monitorQueue {
	return &monitorQueue{monitors: monitors, created: make(chan *fakeMonitor, 16)}
}

func (q *monitorQueue) next() FeedMonitor {
	q.mu.Lock()
	defer q.mu.Unlock()
	var m *fakeMonitor
	if len(q.monitors) > 0 {
		m = q.monitors[0]
		q.monitors = q.monitors[1:]
	} else {
		m = newFakeMonitor()
		m.startErr = errors.New("bus unavailable")
	}
	q.created <- m
	return m
}

type fakeSink struct {
	mu        sync.Mutex
	posted    []string
	removed   []string
	snapshots [][]model.Native
	connected []bool
}

func (s *fakeSink) OnPosted(n model.Native) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posted = append(s.posted, n.Key)
	return true
}

func (s *fakeSink) OnRemoved(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, key)
	return true
}

func (s *fakeSink) LoadSnapshot(actives []model.Native) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots = append(s.snapshots, actives)
	return len(actives)
}

func (s *fakeSink) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = append(s.connected, connected)
}

func (s *fakeSink) lastConnected() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.connected) == 0 {
		return false, false
	}
	return s.connected[len(s.connected)-1], true
}

func (s *fakeSink) snapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// goLoop runs every posted func on its own goroutine.
type goLoop struct{}

func (goLoop) Post(fn func()) { go fn() }

// deadLoop never runs posted funcs.
type deadLoop struct{}

func (deadLoop) Post(func()) {}

type fakeOverlay struct {
	mu        sync.Mutex
	startErr  error
	state     overlay.State
	badge     core.Badge
	starts    int
	stops     int
	refreshes int
}

func (o *fakeOverlay) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.starts++
	if o.startErr != nil {
		return o.startErr
	}
	o.state = overlay.BubbleShown
	return nil
}

func (o *fakeOverlay) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stops++
	o.state = overlay.Hidden
}

func (o *fakeOverlay) RefreshApps() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.refreshes++
}

func (o *fakeOverlay) State() overlay.State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *fakeOverlay) Badge() core.Badge {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.badge
}

type fakeApps struct {
	err     error
	reloads int
}

func (a *fakeApps) Reload() error {
	a.reloads++
	return a.err
}

type fakeCounter struct {
	count     int
	connected bool
}

func (c fakeCounter) Count() int      { return c.count }
func (c fakeCounter) Connected() bool { return c.connected }

type fakeSelection []string

func (f fakeSelection) SelectedApps() []string { return f }
