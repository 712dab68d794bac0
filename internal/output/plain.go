package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
)

// PlainFormatter formats application rows as aligned text.
type PlainFormatter struct {
	opts     Options
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter. An invalid custom
// template falls back to the default layout.
func NewPlainFormatter(opts Options) *PlainFormatter {
	f := &PlainFormatter{opts: opts}

	if opts.Template != "" {
		tmpl, err := template.New("plain").Funcs(templateFuncs()).Parse(opts.Template)
		if err == nil {
			f.template = tmpl
		}
	}

	return f
}

// Format writes one line per row.
func (f *PlainFormatter) Format(w io.Writer, rows []AppRow) error {
	for i := range rows {
		if err := f.formatRow(w, i+1, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func (f *PlainFormatter) formatRow(w io.Writer, index int, row *AppRow) error {
	if f.template != nil {
		if err := f.template.Execute(w, templateData{Index: index, App: row}); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n")
		return err
	}

	var sb strings.Builder

	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("%3d  ", index))
	}

	if f.opts.ShowFlags {
		sb.WriteString(flags(row))
		sb.WriteString("  ")
	}

	name := row.Name
	if name == "" {
		name = row.ID
	}
	if f.opts.NameWidth > 0 {
		sb.WriteString(fmt.Sprintf("%-*s  ", f.opts.NameWidth, truncate(name, f.opts.NameWidth)))
	} else {
		sb.WriteString(name + "  ")
	}

	sb.WriteString(row.ID)
	if !row.Installed {
		sb.WriteString(" (not installed)")
	}
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// flags renders the selected and monitored markers, e.g. "b-" for an app
// that is in the bubble but not mirrored.
func flags(row *AppRow) string {
	b, m := "-", "-"
	if row.Selected {
		b = "b"
	}
	if row.Monitored {
		m = "m"
	}
	return b + m
}

// templateData provides data for custom templates.
type templateData struct {
	Index int
	App   *AppRow
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": truncate,
		"flags":    flags,
	}
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if maxLen <= 0 || len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
