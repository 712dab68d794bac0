package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "5s", "1m", "1h30m", or integer milliseconds.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '5s', '1m', '1h30m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DaemonConfig is the configuration for floatifyd.
// Loaded from ~/.config/floatify/floatifyd.toml
type DaemonConfig struct {
	Bubble     BubbleConfig     `toml:"bubble"`
	Menu       MenuConfig       `toml:"menu"`
	Feed       FeedConfig       `toml:"feed"`
	Capability CapabilityConfig `toml:"capability"`
	Apps       AppsConfig       `toml:"apps"`
	Theme      ThemeConfig      `toml:"theme"`
	Log        LogConfig        `toml:"log"`
}

// BubbleConfig contains bubble window settings.
type BubbleConfig struct {
	DefaultX int `toml:"default_x"` // Initial position when none is saved
	DefaultY int `toml:"default_y"`
	Size     int `toml:"size"`    // Diameter in pixels
	Monitor  int `toml:"monitor"` // 0 = compositor's choice, 1+ = specific monitor
}

// MenuConfig contains menu window settings.
type MenuConfig struct {
	Width     int `toml:"width"`
	MaxHeight int `toml:"max_height"`
	Gap       int `toml:"gap"` // Distance between bubble and menu
}

// FeedConfig contains notification feed settings.
type FeedConfig struct {
	OwnApp          string   `toml:"own_app"`          // Notifications from this app are never mirrored
	ReconnectMin    Duration `toml:"reconnect_min"`    // First retry delay after losing the bus
	ReconnectMax    Duration `toml:"reconnect_max"`    // Retry delay cap
	SettingsCommand string   `toml:"settings_command"` // Opened from the "no access" affordance
}

// CapabilityConfig contains capability polling settings.
type CapabilityConfig struct {
	PollInterval Duration `toml:"poll_interval"` // 0 disables polling
}

// AppsConfig contains application launch settings.
type AppsConfig struct {
	LaunchCommand string `toml:"launch_command"`
}

// ThemeConfig contains theme settings.
type ThemeConfig struct {
	Name        string `toml:"name"`         // Theme name without .css extension
	ColorScheme string `toml:"color_scheme"` // "system", "light", or "dark"
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// ColorScheme represents the color scheme preference.
type ColorScheme string

const (
	ColorSchemeSystem ColorScheme = "system"
	ColorSchemeLight  ColorScheme = "light"
	ColorSchemeDark   ColorScheme = "dark"
)

// ValidColorSchemes returns all valid color scheme values.
func ValidColorSchemes() []ColorScheme {
	return []ColorScheme{ColorSchemeSystem, ColorSchemeLight, ColorSchemeDark}
}

// DefaultDaemonConfig returns a new DaemonConfig with default values.
func DefaultDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		Bubble: BubbleConfig{
			DefaultX: 50,
			DefaultY: 300,
			Size:     56,
		},
		Menu: MenuConfig{
			Width:     320,
			MaxHeight: 480,
			Gap:       8,
		},
		Feed: FeedConfig{
			OwnApp:       "floatify",
			ReconnectMin: Duration(time.Second),
			ReconnectMax: Duration(30 * time.Second),
		},
		Capability: CapabilityConfig{
			PollInterval: Duration(5 * time.Second),
		},
		Apps: AppsConfig{
			LaunchCommand: "gtk-launch",
		},
		Theme: ThemeConfig{
			Name:        "default",
			ColorScheme: string(ColorSchemeSystem),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DaemonConfigPath returns the path to the daemon config file.
func DaemonConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "floatify", "floatifyd.toml")
}

// LoadDaemonConfig loads the daemon configuration from path, or from the
// default location when path is empty. A missing file yields defaults.
func LoadDaemonConfig(path string) (*DaemonConfig, error) {
	if path == "" {
		path = DaemonConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultDaemonConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then overlay with file contents
	config := DefaultDaemonConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveDaemonConfig saves the daemon configuration to path, or to the default location.
func SaveDaemonConfig(path string, config *DaemonConfig) error {
	if path == "" {
		path = DaemonConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *DaemonConfig) Validate() error {
	if c.Bubble.Size < 24 || c.Bubble.Size > 256 {
		return fmt.Errorf("bubble size must be between 24 and 256, got %d", c.Bubble.Size)
	}
	if c.Bubble.DefaultX < 0 || c.Bubble.DefaultY < 0 {
		return fmt.Errorf("bubble default position must not be negative, got %d,%d", c.Bubble.DefaultX, c.Bubble.DefaultY)
	}
	if c.Bubble.Monitor < 0 {
		return fmt.Errorf("bubble monitor must not be negative, got %d", c.Bubble.Monitor)
	}

	if c.Menu.Width < 150 || c.Menu.Width > 1000 {
		return fmt.Errorf("menu width must be between 150 and 1000, got %d", c.Menu.Width)
	}
	if c.Menu.MaxHeight < 100 {
		return fmt.Errorf("menu max_height must be at least 100, got %d", c.Menu.MaxHeight)
	}

	if c.Feed.ReconnectMin <= 0 {
		return fmt.Errorf("feed reconnect_min must be positive")
	}
	if c.Feed.ReconnectMax < c.Feed.ReconnectMin {
		return fmt.Errorf("feed reconnect_max (%s) must not be below reconnect_min (%s)",
			c.Feed.ReconnectMax.Duration(), c.Feed.ReconnectMin.Duration())
	}

	if p := c.Capability.PollInterval.Duration(); p != 0 && p < 100*time.Millisecond {
		return fmt.Errorf("capability poll_interval must be 0 or at least 100ms, got %s", p)
	}

	if strings.TrimSpace(c.Apps.LaunchCommand) == "" {
		return fmt.Errorf("apps launch_command must not be empty")
	}

	if !slices.Contains(ValidColorSchemes(), ColorScheme(c.Theme.ColorScheme)) {
		return fmt.Errorf("invalid color scheme %q, must be one of: %v", c.Theme.ColorScheme, ValidColorSchemes())
	}

	if _, err := ParseLogLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// LogLevel returns the configured slog level, defaulting to info.
func (c *DaemonConfig) LogLevel() slog.Level {
	level, err := ParseLogLevel(c.Log.Level)
	if err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseLogLevel parses a level name.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
}
