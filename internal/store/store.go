// Package store holds the notification mirror and the persisted preferences.
package store

import (
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/jmylchreest/floatify/internal/bus"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/model"
)

// Capacity is the maximum number of mirrored notifications.
const Capacity = 50

// AppResolver resolves a source app id to registry information.
type AppResolver interface {
	Resolve(id string) (model.AppInfo, error)
}

// Mirror is the bounded, de-duplicated copy of live notifications.
//
// Writers serialize on a mutex and publish a fresh immutable slice; readers
// load the current slice atomically and never wait on writers.
type Mirror struct {
	mu      sync.Mutex // serializes writers
	records atomic.Pointer[[]model.NotificationRecord]
	closed  bool

	connected atomic.Bool
	policy    atomic.Pointer[core.Policy]

	resolver  AppResolver
	publisher bus.Publisher
	logger    *slog.Logger
}

// MirrorOption configures a Mirror.
type MirrorOption func(*Mirror)

// WithResolver sets the resolver used for app display names.
func WithResolver(r AppResolver) MirrorOption {
	return func(m *Mirror) { m.resolver = r }
}

// WithPublisher sets where change events are published.
func WithPublisher(p bus.Publisher) MirrorOption {
	return func(m *Mirror) { m.publisher = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) MirrorOption {
	return func(m *Mirror) { m.logger = l }
}

// NewMirror creates an empty, disconnected mirror using policy.
func NewMirror(policy core.Policy, opts ...MirrorOption) *Mirror {
	m := &Mirror{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	empty := make([]model.NotificationRecord, 0)
	m.records.Store(&empty)
	m.policy.Store(&policy)
	return m
}

// SetPolicy replaces the filter policy. Already mirrored records are kept.
func (m *Mirror) SetPolicy(p core.Policy) {
	m.policy.Store(&p)
}

// ShouldProcess reports whether n passes the current filter policy.
func (m *Mirror) ShouldProcess(n model.Native) bool {
	return m.policy.Load().ShouldProcess(n)
}

// OnPosted mirrors n if it passes the policy and has content. A repost of an
// existing key replaces the old record and moves it to the head.
// Returns true if the store changed.
func (m *Mirror) OnPosted(n model.Native) bool {
	if reason := m.policy.Load().Check(n); reason != core.Accepted {
		m.logger.Debug("notification filtered", "key", n.Key, "app", n.SourceApp, "reason", reason)
		return false
	}
	if !n.HasContent() {
		m.logger.Debug("notification has no content", "key", n.Key, "app", n.SourceApp)
		return false
	}

	rec := model.NewRecord(n, m.displayName(n))

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	cur := *m.records.Load()
	next := make([]model.NotificationRecord, 0, min(len(cur)+1, Capacity))
	next = append(next, rec)
	for _, r := range cur {
		if r.Key == rec.Key {
			continue
		}
		if len(next) == Capacity {
			break
		}
		next = append(next, r)
	}
	m.records.Store(&next)
	m.mu.Unlock()

	m.publish(rec.Key)
	return true
}

// OnRemoved drops the record for key. Returns true if one was removed.
func (m *Mirror) OnRemoved(key string) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	cur := *m.records.Load()
	idx := slices.IndexFunc(cur, func(r model.NotificationRecord) bool { return r.Key == key })
	if idx < 0 {
		m.mu.Unlock()
		return false
	}
	next := make([]model.NotificationRecord, 0, len(cur)-1)
	next = append(next, cur[:idx]...)
	next = append(next, cur[idx+1:]...)
	m.records.Store(&next)
	m.mu.Unlock()

	m.publish(key)
	return true
}

// LoadSnapshot replaces the whole store with the qualifying entries of
// actives, newest first and capped at Capacity. Readers see either the old
// or the new contents, never a mix.
func (m *Mirror) LoadSnapshot(actives []model.Native) int {
	policy := m.policy.Load()

	candidates := make([]model.Native, 0, len(actives))
	for _, n := range actives {
		if policy.ShouldProcess(n) {
			candidates = append(candidates, n)
		}
	}
	core.SortNativesNewestFirst(candidates)
	if len(candidates) > Capacity {
		candidates = candidates[:Capacity]
	}

	// Content-less entries count against the cap and are dropped afterwards
	next := make([]model.NotificationRecord, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, n := range candidates {
		if !n.HasContent() || seen[n.Key] {
			continue
		}
		seen[n.Key] = true
		next = append(next, model.NewRecord(n, m.displayName(n)))
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return 0
	}
	m.records.Store(&next)
	m.mu.Unlock()

	m.logger.Debug("mirror snapshot loaded", "offered", len(actives), "kept", len(next))
	m.publish("")
	return len(next)
}

// All returns a point-in-time copy of the mirrored records, newest first.
// It is empty while the feed is disconnected.
func (m *Mirror) All() []model.NotificationRecord {
	if !m.connected.Load() {
		return []model.NotificationRecord{}
	}
	return slices.Clone(*m.records.Load())
}

// Count returns the number of mirrored records, 0 while disconnected.
func (m *Mirror) Count() int {
	if !m.connected.Load() {
		return 0
	}
	return len(*m.records.Load())
}

// Connected reports whether the notification feed is attached.
func (m *Mirror) Connected() bool {
	return m.connected.Load()
}

// SetConnected flips the feed capability and publishes a change when it differs.
func (m *Mirror) SetConnected(connected bool) {
	if m.connected.Swap(connected) != connected {
		m.logger.Info("notification feed", "connected", connected)
		m.publish("")
	}
}

// Close stops the mirror from accepting further mutations.
func (m *Mirror) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
}

func (m *Mirror) displayName(n model.Native) string {
	if m.resolver == nil || n.SourceApp == "" {
		return ""
	}
	info, err := m.resolver.Resolve(n.SourceApp)
	if err != nil {
		return ""
	}
	return info.Name
}

func (m *Mirror) publish(key string) {
	if m.publisher == nil {
		return
	}
	m.publisher.Publish(bus.Event{Kind: bus.NotificationChanged, Key: key})
}
