package display

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrNoSettingsCommand is returned when no settings command is configured.
var ErrNoSettingsCommand = errors.New("no notification settings command configured")

// SettingsOpener runs the configured command that opens notification settings.
type SettingsOpener struct {
	command string
	logger  *slog.Logger
}

// NewSettingsOpener creates a SettingsOpener for command, split on whitespace.
func NewSettingsOpener(command string, logger *slog.Logger) *SettingsOpener {
	if logger == nil {
		logger = slog.Default()
	}
	return &SettingsOpener{command: command, logger: logger}
}

// SetCommand replaces the command after a config reload. Call on the GTK main loop.
func (o *SettingsOpener) SetCommand(command string) {
	o.command = command
}

// OpenNotificationSettings starts the command without waiting for it.
func (o *SettingsOpener) OpenNotificationSettings() error {
	args := strings.Fields(o.command)
	if len(args) == 0 {
		return ErrNoSettingsCommand
	}

	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to run settings command %q: %w", args[0], err)
	}
	o.logger.Debug("opened notification settings", "command", args[0], "pid", cmd.Process.Pid)
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}
