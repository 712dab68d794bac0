package daemon

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/floatify/internal/bus"
	"github.com/jmylchreest/floatify/internal/core"
	"github.com/jmylchreest/floatify/internal/dbus"
	"github.com/jmylchreest/floatify/internal/overlay"
)

// ErrLoopTimeout is returned when the UI loop does not run a control call in time.
var ErrLoopTimeout = errors.New("timed out waiting for the UI loop")

// Overlay is the part of the overlay controller the control service drives.
type Overlay interface {
	Start() error
	Stop()
	RefreshApps()
	State() overlay.State
	Badge() core.Badge
}

// AppSource rescans installed applications.
type AppSource interface {
	Reload() error
}

// Counter reports mirror size and feed state.
type Counter interface {
	Count() int
	Connected() bool
}

// SelectedApps reports the user's shortcut selection.
type SelectedApps interface {
	SelectedApps() []string
}

// Service implements dbus.Controls by running each call on the UI loop.
type Service struct {
	loop     bus.Loop
	overlay  Overlay
	apps     AppSource
	mirror   Counter
	prefs    SelectedApps
	notifier *Notifier
	timeout  time.Duration
	logger   *slog.Logger
}

// NewService creates a Service. notifier may be nil.
func NewService(loop bus.Loop, ov Overlay, apps AppSource, mirror Counter, prefs SelectedApps, notifier *Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		loop:     loop,
		overlay:  ov,
		apps:     apps,
		mirror:   mirror,
		prefs:    prefs,
		notifier: notifier,
		timeout:  5 * time.Second,
		logger:   logger,
	}
}

// StartOverlay shows the bubble.
func (s *Service) StartOverlay() error {
	err := s.call(s.overlay.Start)
	if err != nil && s.notifier != nil {
		if overlay.IsPermissionDenied(err) {
			s.notifier.NotifyPermissionDenied()
		} else if !errors.Is(err, ErrLoopTimeout) {
			s.notifier.NotifyBubbleFailed(err)
		}
	}
	return err
}

// StopOverlay hides the overlay.
func (s *Service) StopOverlay() error {
	return s.call(func() error {
		s.overlay.Stop()
		return nil
	})
}

// RefreshApps rescans applications off the UI loop, then refreshes the overlay on it.
func (s *Service) RefreshApps() error {
	if err := s.apps.Reload(); err != nil {
		return fmt.Errorf("failed to reload applications: %w", err)
	}
	return s.call(func() error {
		s.overlay.RefreshApps()
		return nil
	})
}

// Status reports the current overlay state.
func (s *Service) Status() dbus.Status {
	type view struct{ state, badge string }
	ch := make(chan view, 1)
	s.loop.Post(func() {
		ch <- view{state: s.overlay.State().String(), badge: s.overlay.Badge().Text()}
	})

	st := dbus.Status{State: "unknown"}
	select {
	case v := <-ch:
		st.State = v.state
		st.Badge = v.badge
	case <-time.After(s.timeout):
		s.logger.Warn("status unavailable", "error", ErrLoopTimeout)
	}
	st.Notifications = uint32(s.mirror.Count())
	st.Connected = s.mirror.Connected()
	st.Apps = uint32(len(s.prefs.SelectedApps()))
	return st
}

func (s *Service) call(fn func() error) error {
	done := make(chan error, 1)
	s.loop.Post(func() { done <- fn() })
	select {
	case err := <-done:
		return err
	case <-time.After(s.timeout):
		return ErrLoopTimeout
	}
}

// ClassifyError maps control errors onto D-Bus error names.
func ClassifyError(err error) string {
	if overlay.IsPermissionDenied(err) {
		return dbus.ErrorPermissionDenied
	}
	return dbus.ErrorFailed
}
