package theme

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

// EmbeddedThemes contains all bundled theme CSS files.
//
//go:embed themes/*.css
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// BundledThemes lists all embedded theme names.
var BundledThemes = []string{"default", "minimal", "high-contrast"}

func readEmbedded(file string) (string, bool) {
	data, err := EmbeddedThemes.ReadFile(path.Join("themes", file))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// GetEmbeddedTheme returns the raw CSS of a bundled theme. @import statements
// are left as they are; ProcessImports resolves them.
func GetEmbeddedTheme(name string) (string, bool) {
	if name == "" || strings.HasPrefix(name, "_") {
		return "", false
	}
	return readEmbedded(name + ".css")
}

// GetEmbeddedPartial returns a bundled partial. The leading underscore and
// the .css extension are optional.
func GetEmbeddedPartial(name string) (string, bool) {
	if !strings.HasPrefix(name, "_") {
		name = "_" + name
	}
	if !strings.HasSuffix(name, ".css") {
		name += ".css"
	}
	return readEmbedded(name)
}

// ListEmbeddedThemes returns the names of all bundled themes, partials excluded.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return BundledThemes
	}

	var names []string
	for _, entry := range entries {
		if name, ok := themeName(entry); ok {
			names = append(names, name)
		}
	}
	return names
}

// IsEmbeddedTheme reports whether name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}

// themeName maps a directory entry to a theme name, rejecting directories,
// partials and non-CSS files.
func themeName(entry fs.DirEntry) (string, bool) {
	if entry.IsDir() {
		return "", false
	}
	name := entry.Name()
	if strings.HasPrefix(name, "_") || path.Ext(name) != ".css" {
		return "", false
	}
	return strings.TrimSuffix(name, ".css"), true
}
