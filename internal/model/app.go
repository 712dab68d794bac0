package model

// PlaceholderIcon is used when an application's icon cannot be resolved.
const PlaceholderIcon = "application-x-executable"

// AppInfo is an application resolved from the registry.
type AppInfo struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Icon string `json:"icon,omitempty" yaml:"icon,omitempty"`
	Exec string `json:"exec,omitempty" yaml:"exec,omitempty"`
}

// AppShortcut is the projection of a registry entry shown in the Apps tab.
// It is recomputed whenever the menu renders and never cached.
type AppShortcut struct {
	PackageName string
	DisplayName string
	Icon        string
	Selected    bool
}

// Placeholder returns the fallback AppInfo for an unresolvable id.
func Placeholder(id string) AppInfo {
	return AppInfo{ID: id, Name: id, Icon: PlaceholderIcon}
}

// Point is a window position in surface coordinates.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}
