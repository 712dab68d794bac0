package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/model"
)

// FeedMonitor is one connection to the notification feed.
type FeedMonitor interface {
	SetPostedHandler(handler dbus.PostedHandler)
	SetClosedHandler(handler dbus.ClosedHandler)
	Start() error
	Stop() error
	Active() []model.Native
	Done() <-chan struct{}
	Err() error
}

// MonitorFactory creates a fresh, unstarted monitor.
type MonitorFactory func() FeedMonitor

// FeedSink receives feed events. *store.Mirror implements it.
type FeedSink interface {
	OnPosted(n model.Native) bool
	OnRemoved(key string) bool
	LoadSnapshot(actives []model.Native) int
	SetConnected(connected bool)
}

// FeedSupervisor keeps a monitor attached while the bubble is running,
// reconnecting with exponential backoff when the bus connection drops.
type FeedSupervisor struct {
	newMonitor MonitorFactory
	sink       FeedSink
	logger     *slog.Logger
	minDelay   time.Duration
	maxDelay   time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	group  *errgroup.Group
}

// NewFeedSupervisor creates a supervisor. Delays <= 0 fall back to 1s and 30s.
func NewFeedSupervisor(newMonitor MonitorFactory, sink FeedSink, minDelay, maxDelay time.Duration, logger *slog.Logger) *FeedSupervisor {
	if logger == nil {
		logger = slog.Default()
	}
	if minDelay <= 0 {
		minDelay = time.Second
	}
	if maxDelay < minDelay {
		maxDelay = 30 * time.Second
		if maxDelay < minDelay {
			maxDelay = minDelay
		}
	}
	return &FeedSupervisor{
		newMonitor: newMonitor,
		sink:       sink,
		logger:     logger,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
	}
}

// Connect starts the supervisor if it is not already running. It never blocks.
func (f *FeedSupervisor) Connect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return
	}

	f.gen++
	gen := f.gen
	ctx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(ctx)
	f.cancel = cancel
	f.group = g
	g.Go(func() error {
		f.run(ctx, gen)
		return nil
	})
	f.logger.Debug("feed supervisor started")
}

// Disconnect stops the supervisor without waiting for it to exit.
func (f *FeedSupervisor) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel == nil {
		return
	}
	f.cancel()
	f.cancel = nil
	f.gen++
	f.sink.SetConnected(false)
	f.logger.Debug("feed supervisor stopping")
}

// Close stops the supervisor and waits for the monitor to detach.
func (f *FeedSupervisor) Close() error {
	f.mu.Lock()
	g := f.group
	f.mu.Unlock()

	f.Disconnect()
	if g != nil {
		return g.Wait()
	}
	return nil
}

// Running reports whether Connect is in effect.
func (f *FeedSupervisor) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cancel != nil
}

func (f *FeedSupervisor) run(ctx context.Context, gen uint64) {
	delay := f.minDelay
	for {
		m := f.newMonitor()
		m.SetPostedHandler(func(n model.Native) {
			if f.current(gen) {
				f.sink.OnPosted(n)
			}
		})
		m.SetClosedHandler(func(key string, _ dbus.CloseReason) {
			if f.current(gen) {
				f.sink.OnRemoved(key)
			}
		})

		if err := m.Start(); err != nil {
			f.logger.Warn("failed to attach notification feed", "error", err, "retry_in", delay)
		} else {
			if !f.attach(gen, m.Active()) {
				_ = m.Stop()
				return
			}
			delay = f.minDelay

			select {
			case <-ctx.Done():
				_ = m.Stop()
				return
			case <-m.Done():
				f.logger.Warn("notification feed lost", "error", m.Err(), "retry_in", delay)
				f.detach(gen)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
		delay *= 2
		if delay > f.maxDelay {
			delay = f.maxDelay
		}
	}
}

func (f *FeedSupervisor) current(gen uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gen == gen
}

// attach loads the initial snapshot then marks the feed connected, unless
// the run was superseded meanwhile.
func (f *FeedSupervisor) attach(gen uint64, actives []model.Native) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen != gen {
		return false
	}
	n := f.sink.LoadSnapshot(actives)
	f.sink.SetConnected(true)
	f.logger.Info("notification feed connected", "snapshot", n)
	return true
}

func (f *FeedSupervisor) detach(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gen == gen {
		f.sink.SetConnected(false)
	}
}
