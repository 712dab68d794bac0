package daemon

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmylchreest/floatify/internal/bus"
)

// ConnectionState reports whether the notification feed is attached.
type ConnectionState interface {
	Connected() bool
}

// Capabilities answers the overlay's capability queries. The overlay probe
// runs on the UI loop, so its result is cached and refreshed by the poller.
type Capabilities struct {
	overlay atomic.Bool
	feed    ConnectionState
}

// NewCapabilities creates Capabilities with an initial overlay probe result.
func NewCapabilities(overlaySupported bool, feed ConnectionState) *Capabilities {
	c := &Capabilities{feed: feed}
	c.overlay.Store(overlaySupported)
	return c
}

// HasOverlayPermission reports whether layer-shell overlays are available.
func (c *Capabilities) HasOverlayPermission() bool {
	return c.overlay.Load()
}

// HasNotificationAccess reports whether the notification feed is attached.
func (c *Capabilities) HasNotificationAccess() bool {
	return c.feed != nil && c.feed.Connected()
}

// setOverlay records a probe result and reports whether it changed.
func (c *Capabilities) setOverlay(v bool) bool {
	return c.overlay.Swap(v) != v
}

// CapabilityPoller re-probes overlay support at a fixed interval. The probe
// and callbacks run on the UI loop.
type CapabilityPoller struct {
	mu     sync.Mutex
	logger *slog.Logger

	caps     *Capabilities
	loop     bus.Loop
	probe    func() bool
	interval time.Duration

	onRevoked func()
	onGranted func()

	stopCh chan struct{}
	doneCh chan struct{}

	running bool
}

// NewCapabilityPoller creates a poller. An interval <= 0 disables polling.
func NewCapabilityPoller(caps *Capabilities, loop bus.Loop, probe func() bool, interval time.Duration, logger *slog.Logger) *CapabilityPoller {
	if logger == nil {
		logger = slog.Default()
	}
	return &CapabilityPoller{
		logger:   logger,
		caps:     caps,
		loop:     loop,
		probe:    probe,
		interval: interval,
	}
}

// SetRevokedCallback sets the callback invoked when overlay support disappears.
func (p *CapabilityPoller) SetRevokedCallback(callback func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onRevoked = callback
}

// SetGrantedCallback sets the callback invoked when overlay support returns.
func (p *CapabilityPoller) SetGrantedCallback(callback func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onGranted = callback
}

// Start begins polling.
func (p *CapabilityPoller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running || p.interval <= 0 {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.pollLoop(ctx)

	p.logger.Debug("capability poller started", "interval", p.interval)
	return nil
}

// Stop stops polling and waits for the loop to exit.
func (p *CapabilityPoller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	close(p.stopCh)
	p.mu.Unlock()

	<-p.doneCh
	p.logger.Debug("capability poller stopped")
}

func (p *CapabilityPoller) pollLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.loop.Post(p.Check)
		}
	}
}

// Check probes once and fires the matching callback on a change.
// It must run on the UI loop.
func (p *CapabilityPoller) Check() {
	supported := p.probe()
	if !p.caps.setOverlay(supported) {
		return
	}

	p.mu.Lock()
	revoked, granted := p.onRevoked, p.onGranted
	p.mu.Unlock()

	if supported {
		p.logger.Info("overlay support available")
		if granted != nil {
			granted()
		}
		return
	}
	p.logger.Warn("overlay support lost")
	if revoked != nil {
		revoked()
	}
}
