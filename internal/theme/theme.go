package theme

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// importRegex matches @import "file.css"; @import 'file.css'; and @import url("file.css");
var importRegex = regexp.MustCompile(`@import\s+(?:url\s*\(\s*)?["']([^"']+)["']\s*\)?;?`)

// Theme is a resolved stylesheet.
type Theme struct {
	Name    string    // Theme name without the .css extension
	Path    string    // File on disk, empty for bundled themes
	CSS     string    // CSS with imports inlined
	ModTime time.Time // Modification time of Path when last read
	Bundled bool
}

// NewTheme reads a theme file and inlines its imports.
func NewTheme(name, path string) (*Theme, error) {
	t := &Theme{Name: name, Path: path}
	if _, err := t.Reload(); err != nil {
		return nil, err
	}
	return t, nil
}

// NewBundledTheme resolves a bundled theme by name.
func NewBundledTheme(name string) (*Theme, bool) {
	css, found := GetEmbeddedTheme(name)
	if !found {
		return nil, false
	}
	return &Theme{
		Name:    name,
		CSS:     ProcessImports(css, "", nil),
		Bundled: true,
	}, true
}

// Reload re-reads the theme from disk and reports whether the resolved CSS
// changed. Imports are resolved again, so an edited partial counts as a
// change even when the theme file itself is untouched.
func (t *Theme) Reload() (bool, error) {
	if t.Bundled || t.Path == "" {
		return false, nil
	}

	info, err := os.Stat(t.Path)
	if err != nil {
		return false, fmt.Errorf("failed to stat theme: %w", err)
	}
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return false, fmt.Errorf("failed to read theme: %w", err)
	}

	css := ProcessImports(string(data), filepath.Dir(t.Path), nil)
	changed := css != t.CSS
	t.CSS = css
	t.ModTime = info.ModTime()
	return changed, nil
}

// ProcessImports inlines @import statements in css. Relative imports resolve
// against baseDir; imports that are not on disk fall back to bundled partials
// and themes. seen guards against import cycles and may be nil.
func ProcessImports(css string, baseDir string, seen map[string]bool) string {
	if seen == nil {
		seen = make(map[string]bool)
	}
	r := importResolver{seen: seen}
	return r.expand(css, baseDir)
}

type importResolver struct {
	seen map[string]bool
}

func (r importResolver) expand(css, baseDir string) string {
	return importRegex.ReplaceAllStringFunc(css, func(stmt string) string {
		m := importRegex.FindStringSubmatch(stmt)
		if len(m) < 2 {
			return stmt
		}
		return r.include(m[1], baseDir)
	})
}

func (r importResolver) include(ref, baseDir string) string {
	target := ref
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseDir, ref)
	}

	if r.seen[target] {
		return "/* circular import prevented: " + ref + " */"
	}
	r.seen[target] = true

	data, err := os.ReadFile(target)
	if err == nil {
		return "/* imported: " + ref + " */\n" + r.expand(string(data), filepath.Dir(target))
	}

	base := filepath.Base(ref)
	if strings.HasPrefix(base, "_") {
		if css, found := GetEmbeddedPartial(base); found {
			return "/* imported (embedded): " + ref + " */\n" + css
		}
	}
	if css, found := GetEmbeddedTheme(strings.TrimSuffix(base, ".css")); found {
		return "/* imported (embedded): " + ref + " */\n" + r.expand(css, "")
	}
	return "/* import failed: " + ref + " - " + err.Error() + " */"
}

// ThemesDir returns the user themes directory.
func ThemesDir() string {
	return filepath.Join(xdg.ConfigHome, "floatify", "themes")
}

// CreateThemesDir creates the user themes directory if it doesn't exist.
func CreateThemesDir() error {
	return os.MkdirAll(ThemesDir(), 0755)
}

// ThemeInfo describes a theme for listing.
type ThemeInfo struct {
	Name      string `json:"name" yaml:"name"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
	IsDefault bool   `json:"default" yaml:"default"`
	IsBundled bool   `json:"bundled" yaml:"bundled"`
}

// ListAvailableThemes lists bundled themes followed by the themes in dir.
// A user file that overrides a bundled theme is reported with its path.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	index := make(map[string]int)
	var themes []ThemeInfo

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return themes, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		name, ok := themeName(entry)
		if !ok {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if i, exists := index[name]; exists {
			themes[i].Path = path
			continue
		}
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{Name: name, Path: path})
	}

	return themes, nil
}
