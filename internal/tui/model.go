// Package tui provides the BubbleTea-based app picker behind "floatify pick".
package tui

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jmylchreest/floatify/internal/config"
	"github.com/jmylchreest/floatify/internal/model"
	"github.com/jmylchreest/floatify/internal/store"
)

// Choices is the part of the preferences the picker edits.
type Choices struct {
	SelectedApps      []string
	MonitoredApps     []string
	ShowNotifications bool
}

// ChoicesFrom extracts the picker's fields from prefs.
func ChoicesFrom(prefs *store.Preferences) Choices {
	return Choices{
		SelectedApps:      slices.Clone(prefs.SelectedApps),
		MonitoredApps:     slices.Clone(prefs.MonitoredApps),
		ShowNotifications: prefs.ShowNotifications,
	}
}

// Apply writes the choices into prefs.
func (c Choices) Apply(prefs *store.Preferences) {
	prefs.SelectedApps = slices.Clone(c.SelectedApps)
	prefs.MonitoredApps = slices.Clone(c.MonitoredApps)
	prefs.ShowNotifications = c.ShowNotifications
}

// Options configures the picker.
type Options struct {
	Config  *config.Config
	Apps    []model.AppInfo // Installed applications, already sorted
	Choices Choices
	Save    func(Choices) error
}

// Model is the picker model.
type Model struct {
	cfg  *config.Config
	keys KeyMap

	list list.Model
	help help.Model

	apps         []model.AppInfo
	choices      Choices
	save         func(Choices) error
	onlySelected bool
	dirty        bool
	confirmQuit  bool

	width  int
	height int
	ready  bool

	statusMsg string
	statusErr bool
}

// appItem wraps an application for the list component.
type appItem struct {
	app       model.AppInfo
	selected  bool
	monitored bool
	installed bool
}

func (i appItem) Title() string {
	return i.app.Name
}

func (i appItem) Description() string {
	desc := i.app.ID
	if !i.installed {
		desc += " (not installed)"
	}
	return desc
}

func (i appItem) FilterValue() string {
	return i.app.Name + " " + i.app.ID
}

// appDelegate renders the selection markers in front of each item.
type appDelegate struct {
	list.DefaultDelegate
}

func newAppDelegate() appDelegate {
	return appDelegate{DefaultDelegate: list.NewDefaultDelegate()}
}

var (
	markOn    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	markOff   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	dimmed    = lipgloss.Color("8")
	statusOK  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	statusBad = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// Render renders an item as "[x] [m] Name" over its id.
func (d appDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ai, ok := item.(appItem)
	if !ok {
		d.DefaultDelegate.Render(w, m, index, item)
		return
	}

	titleStyle := d.Styles.NormalTitle
	descStyle := d.Styles.NormalDesc
	if index == m.Index() {
		titleStyle = d.Styles.SelectedTitle
		descStyle = d.Styles.SelectedDesc
	}
	if !ai.installed {
		titleStyle = titleStyle.Foreground(dimmed)
		descStyle = descStyle.Foreground(dimmed)
	}

	width := m.Width() - d.Styles.NormalTitle.GetHorizontalPadding() - 8
	title := truncate(ai.Title(), width)
	desc := truncate(ai.Description(), width)

	fmt.Fprint(w, marker(ai.selected, "x")+marker(ai.monitored, "m")+titleStyle.Render(title))
	fmt.Fprint(w, "\n")
	fmt.Fprint(w, "        "+descStyle.Render(desc))
}

func marker(on bool, glyph string) string {
	if on {
		return markOn.Render("["+glyph+"]") + " "
	}
	return markOff.Render("[ ]") + " "
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 1 || len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

// New creates a picker model.
func New(opts Options) Model {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	l := list.New(nil, newAppDelegate(), 0, 0)
	l.Title = "floatify apps"
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()

	h := help.New()
	h.ShowAll = false

	m := Model{
		cfg:     cfg,
		keys:    DefaultKeyMap(),
		list:    l,
		help:    h,
		apps:    opts.Apps,
		choices: opts.Choices,
		save:    opts.Save,
	}
	m.list.SetItems(m.buildItems())
	return m
}

// Choices returns the current, possibly unsaved, choices.
func (m Model) Choices() Choices {
	return m.choices
}

// Dirty reports whether there are unsaved changes.
func (m Model) Dirty() bool {
	return m.dirty
}

// Init initializes the picker.
func (m Model) Init() tea.Cmd {
	return nil
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type savedMsg struct {
	choices Choices
	err     error
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		m.list.SetSize(msg.Width, msg.Height-m.footerHeight())
		return m, nil

	case savedMsg:
		if msg.err != nil {
			return m, setStatus("Save failed: "+msg.err.Error(), true)
		}
		if slicesEqualChoices(msg.choices, m.choices) {
			m.dirty = false
		}
		return m, setStatus("Saved", false)

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// handleKey handles key presses. While the filter input is focused every key
// goes to the list.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if !key.Matches(msg, m.keys.Quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		if msg.String() == "esc" && m.list.FilterState() == list.FilterApplied {
			m.list.ResetFilter()
			return m, nil
		}
		if m.dirty && !m.confirmQuit && msg.String() != "ctrl+c" {
			m.confirmQuit = true
			return m, setStatus("Unsaved changes: press q again to discard, enter to save", true)
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.list.SetSize(m.width, m.height-m.footerHeight())
		return m, nil

	case key.Matches(msg, m.keys.ToggleSelected):
		return m.toggle(func(c *Choices, id string) {
			c.SelectedApps = toggleID(c.SelectedApps, id)
		})

	case key.Matches(msg, m.keys.ToggleMonitored):
		return m.toggle(func(c *Choices, id string) {
			c.MonitoredApps = toggleID(c.MonitoredApps, id)
		})

	case key.Matches(msg, m.keys.ToggleFeed):
		m.choices.ShowNotifications = !m.choices.ShowNotifications
		m.dirty = true
		return m, nil

	case key.Matches(msg, m.keys.OnlySelected):
		m.onlySelected = !m.onlySelected
		cmd := m.list.SetItems(m.buildItems())
		return m, cmd

	case key.Matches(msg, m.keys.Save):
		return m, m.saveCmd()
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// toggle applies fn to the item under the cursor and refreshes it in place,
// so the cursor does not jump when the list is ordered by selection.
func (m Model) toggle(fn func(*Choices, string)) (tea.Model, tea.Cmd) {
	item, ok := m.list.SelectedItem().(appItem)
	if !ok {
		return m, nil
	}

	fn(&m.choices, item.app.ID)
	m.dirty = true

	item.selected = slices.Contains(m.choices.SelectedApps, item.app.ID)
	item.monitored = slices.Contains(m.choices.MonitoredApps, item.app.ID)
	cmd := m.list.SetItem(m.list.GlobalIndex(), item)
	return m, cmd
}

func (m Model) saveCmd() tea.Cmd {
	if m.save == nil {
		return setStatus("Nothing to save to", true)
	}
	choices := Choices{
		SelectedApps:      slices.Clone(m.choices.SelectedApps),
		MonitoredApps:     slices.Clone(m.choices.MonitoredApps),
		ShowNotifications: m.choices.ShowNotifications,
	}
	save := m.save
	return func() tea.Msg {
		return savedMsg{choices: choices, err: save(choices)}
	}
}

// toggleID removes id from ids, or appends it when absent.
func toggleID(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(slices.Clone(ids), i, i+1)
	}
	return append(slices.Clone(ids), id)
}

func slicesEqualChoices(a, b Choices) bool {
	return slices.Equal(a.SelectedApps, b.SelectedApps) &&
		slices.Equal(a.MonitoredApps, b.MonitoredApps) &&
		a.ShowNotifications == b.ShowNotifications
}

// buildItems lists installed apps plus any chosen ids that are no longer
// installed, so they can still be removed.
func (m Model) buildItems() []list.Item {
	var items []appItem
	known := make(map[string]bool, len(m.apps))

	for _, app := range m.apps {
		known[app.ID] = true
		items = append(items, m.item(app, true))
	}
	for _, id := range slices.Concat(m.choices.SelectedApps, m.choices.MonitoredApps) {
		if known[id] {
			continue
		}
		known[id] = true
		items = append(items, m.item(model.Placeholder(id), false))
	}

	if m.onlySelected {
		items = slices.DeleteFunc(items, func(i appItem) bool {
			return !i.selected && !i.monitored
		})
	}
	if m.cfg.Picker.SelectedTop {
		slices.SortStableFunc(items, func(a, b appItem) int {
			return rank(a) - rank(b)
		})
	}

	out := make([]list.Item, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}

func (m Model) item(app model.AppInfo, installed bool) appItem {
	return appItem{
		app:       app,
		selected:  slices.Contains(m.choices.SelectedApps, app.ID),
		monitored: slices.Contains(m.choices.MonitoredApps, app.ID),
		installed: installed,
	}
}

func rank(i appItem) int {
	switch {
	case i.selected:
		return 0
	case i.monitored:
		return 1
	default:
		return 2
	}
}

func (m Model) footerHeight() int {
	if !m.cfg.Picker.ShowHelp {
		return 2
	}
	if m.help.ShowAll {
		return 6
	}
	return 3
}

// View renders the picker.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	s := m.list.View() + "\n"

	feed := "notifications tab: hidden"
	if m.choices.ShowNotifications {
		feed = "notifications tab: shown"
	}
	summary := fmt.Sprintf("%d in bubble, %d mirrored, %s",
		len(m.choices.SelectedApps), len(m.choices.MonitoredApps), feed)
	if m.dirty {
		summary += " (unsaved)"
	}

	switch {
	case m.statusMsg != "" && m.statusErr:
		s += statusBad.Render(m.statusMsg)
	case m.statusMsg != "":
		s += statusOK.Render(m.statusMsg)
	default:
		s += markOff.Render(summary)
	}

	if m.cfg.Picker.ShowHelp {
		s += "\n" + m.help.View(m.keys)
	}
	return s
}

// Run starts the picker and returns the model it exited with.
func Run(opts Options) (Model, error) {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Model{}, fmt.Errorf("failed to run picker: %w", err)
	}
	m, _ := final.(Model)
	return m, nil
}
