package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the key bindings for the app picker.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Actions
	ToggleSelected  key.Binding
	ToggleMonitored key.Binding
	ToggleFeed      key.Binding
	OnlySelected    key.Binding
	Save            key.Binding
	Search          key.Binding

	// Global
	Quit key.Binding
	Help key.Binding
}

// ShortHelp returns a short help message.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.ToggleSelected, k.ToggleMonitored, k.Save, k.Help, k.Quit}
}

// FullHelp returns a full help message.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Search},
		{k.ToggleSelected, k.ToggleMonitored, k.ToggleFeed, k.OnlySelected},
		{k.Save, k.Help, k.Quit},
	}
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		ToggleSelected: key.NewBinding(
			key.WithKeys(" ", "x"),
			key.WithHelp("space", "toggle in bubble"),
		),
		ToggleMonitored: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "toggle mirroring"),
		),
		ToggleFeed: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "toggle notifications tab"),
		),
		OnlySelected: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "toggle all apps"),
		),
		Save: key.NewBinding(
			key.WithKeys("enter", "w"),
			key.WithHelp("enter", "save"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}
