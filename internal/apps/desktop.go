package apps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// desktopEntry holds the [Desktop Entry] keys floatify uses.
type desktopEntry struct {
	Type      string
	Name      string
	Icon      string
	Exec      string
	NoDisplay bool
	Hidden    bool
}

func (e desktopEntry) visible() bool {
	return e.Type == "Application" && !e.NoDisplay && !e.Hidden
}

// parseDesktopFile reads the main group of a desktop entry file.
func parseDesktopFile(path string) (desktopEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return desktopEntry{}, err
	}
	defer f.Close()

	entry, err := parseDesktopEntry(f)
	if err != nil {
		return desktopEntry{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return entry, nil
}

func parseDesktopEntry(r io.Reader) (desktopEntry, error) {
	var entry desktopEntry
	inMain := false
	sawMain := false

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if inMain {
				break
			}
			inMain = line == "[Desktop Entry]"
			sawMain = sawMain || inMain
			continue
		}
		if !inMain {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Type":
			entry.Type = value
		case "Name":
			entry.Name = value
		case "Icon":
			entry.Icon = value
		case "Exec":
			entry.Exec = value
		case "NoDisplay":
			entry.NoDisplay, _ = strconv.ParseBool(value)
		case "Hidden":
			entry.Hidden, _ = strconv.ParseBool(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return desktopEntry{}, err
	}
	if !sawMain {
		return desktopEntry{}, fmt.Errorf("missing [Desktop Entry] group")
	}
	return entry, nil
}
