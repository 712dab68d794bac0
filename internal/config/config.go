// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Output formats understood by the CLI.
const (
	FormatPlain = "plain"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config represents the floatify CLI configuration.
type Config struct {
	Output OutputConfig `toml:"output"`
	Picker PickerConfig `toml:"picker"`
}

// OutputConfig holds default output options.
type OutputConfig struct {
	Format string `toml:"format"` // plain, json, yaml
}

// PickerConfig holds app picker settings.
type PickerConfig struct {
	ShowHelp    bool `toml:"show_help"`
	SelectedTop bool `toml:"selected_top"` // List already selected apps first
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatPlain,
		},
		Picker: PickerConfig{
			ShowHelp:    true,
			SelectedTop: true,
		},
	}
}

// ConfigPath returns the path to the CLI config file.
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "floatify", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case FormatPlain, FormatJSON, FormatYAML:
		return nil
	default:
		return fmt.Errorf("invalid output format %q, must be one of: plain, json, yaml", c.Output.Format)
	}
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
