package dbus

import (
	"fmt"
)

// EmitStateChanged emits the StateChanged signal.
// Waybar-style status scripts listen for it instead of polling Status.
func (s *ControlServer) EmitStateChanged(state string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(ControlPath, ControlInterface+".StateChanged", state)
	if err != nil {
		return fmt.Errorf("failed to emit StateChanged signal: %w", err)
	}

	s.logger.Debug("emitted StateChanged signal", "state", state)
	return nil
}

// EmitBadgeChanged emits the BadgeChanged signal. An empty badge means hidden.
func (s *ControlServer) EmitBadgeChanged(badge string) error {
	if s.conn == nil {
		return fmt.Errorf("not connected to D-Bus")
	}

	err := s.conn.Emit(ControlPath, ControlInterface+".BadgeChanged", badge)
	if err != nil {
		return fmt.Errorf("failed to emit BadgeChanged signal: %w", err)
	}

	s.logger.Debug("emitted BadgeChanged signal", "badge", badge)
	return nil
}
