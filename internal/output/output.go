// Package output renders floatify CLI results as plain text, JSON or YAML.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is an output format name.
type Format string

const (
	FormatPlain Format = "plain"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatPlain, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatPlain, nil
	default:
		return "", fmt.Errorf("invalid output format %q, must be one of: plain, json, yaml", s)
	}
}

// AppRow is one application as listed by the CLI.
type AppRow struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Selected  bool   `json:"selected" yaml:"selected"`
	Monitored bool   `json:"monitored" yaml:"monitored"`
	Installed bool   `json:"installed" yaml:"installed"`
}

// Formatter formats application rows for output.
type Formatter interface {
	Format(w io.Writer, rows []AppRow) error
}

// Options configures formatter behavior.
type Options struct {
	Template  string // Custom text/template for plain format
	ShowIndex bool   // Show 1-based index prefix
	ShowFlags bool   // Show selected/monitored markers
	NameWidth int    // Pad names to this width (0 = no padding)
}

// DefaultOptions returns the options used by `floatify apps list`.
func DefaultOptions() Options {
	return Options{
		ShowFlags: true,
		NameWidth: 28,
	}
}

// NewFormatter creates a formatter for format.
func NewFormatter(format Format, opts Options) Formatter {
	switch format {
	case FormatJSON, FormatYAML:
		return &encodingFormatter{format: format}
	default:
		return NewPlainFormatter(opts)
	}
}

type encodingFormatter struct {
	format Format
}

func (f *encodingFormatter) Format(w io.Writer, rows []AppRow) error {
	if rows == nil {
		rows = []AppRow{}
	}
	return Encode(w, f.format, rows)
}

// Encode writes v as JSON or YAML. Plain is rejected since its layout
// depends on the value being rendered.
func Encode(w io.Writer, format Format, v any) error {
	switch format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("format %q cannot encode values", format)
	}
}
