// Package bus marshals change notifications from producer goroutines onto
// the single context that owns the overlay surfaces.
package bus

import (
	"log/slog"
	"sync"
	"time"
)

// Kind identifies what changed.
type Kind int

const (
	// NotificationChanged signals the mirror content or feed capability changed.
	NotificationChanged Kind = iota
	// AppsChanged signals the selected application set changed.
	AppsChanged
)

func (k Kind) String() string {
	switch k {
	case NotificationChanged:
		return "notification_changed"
	case AppsChanged:
		return "apps_changed"
	default:
		return "unknown"
	}
}

// Event is a change notification. Consumers should re-read full state
// rather than apply the event as a delta; bursts may be coalesced or dropped.
type Event struct {
	Kind Kind
	Key  string // notification key, empty for bulk or app changes
	At   time.Time
}

// Loop runs functions on the surface-owning context.
// Post must not run fn synchronously.
type Loop interface {
	Post(fn func())
}

// Publisher is the producer side of the bus.
type Publisher interface {
	Publish(ev Event) bool
}

// Bus delivers events to at most one subscriber via a Loop.
// Events published with no subscriber are dropped; nothing is buffered or replayed.
type Bus struct {
	loop   Loop
	logger *slog.Logger

	mu  sync.Mutex
	sub func(Event)
	gen uint64
}

// New creates a bus that delivers on loop.
func New(loop Loop, logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{loop: loop, logger: logger}
}

// Subscribe installs fn as the only subscriber, replacing any previous one.
// The returned function unsubscribes; calling it more than once is safe.
// Deliveries already queued for a replaced subscriber are discarded.
func (b *Bus) Subscribe(fn func(Event)) (unsubscribe func()) {
	b.mu.Lock()
	b.gen++
	gen := b.gen
	b.sub = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.gen == gen {
				b.sub = nil
				b.gen++
			}
		})
	}
}

// HasSubscriber reports whether a subscriber is installed.
func (b *Bus) HasSubscriber() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sub != nil
}

// Publish posts ev to the subscriber's loop. It returns false when the
// event was dropped because nobody is subscribed.
func (b *Bus) Publish(ev Event) bool {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.Lock()
	fn, gen := b.sub, b.gen
	b.mu.Unlock()

	if fn == nil {
		return false
	}

	b.loop.Post(func() {
		b.mu.Lock()
		current := b.gen == gen
		b.mu.Unlock()
		if !current {
			return
		}
		b.deliver(fn, ev)
	})
	return true
}

// NotifyChanged publishes a NotificationChanged event for key.
func (b *Bus) NotifyChanged(key string) bool {
	return b.Publish(Event{Kind: NotificationChanged, Key: key})
}

// NotifyAppsChanged publishes an AppsChanged event.
func (b *Bus) NotifyAppsChanged() bool {
	return b.Publish(Event{Kind: AppsChanged})
}

func (b *Bus) deliver(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event subscriber panicked", "kind", ev.Kind, "key", ev.Key, "panic", r)
		}
	}()
	fn(ev)
}
