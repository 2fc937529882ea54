// Package controls provides the partner/brand filters, actions and quick
// insights tab.
package controls

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// selection is one multiselect list. Every option starts selected.
type selection struct {
	title    string
	options  []string
	selected map[string]bool
	cursor   int
}

func newSelection(title string) selection {
	return selection{title: title, selected: map[string]bool{}}
}

// reset replaces the options and selects those in active. A nil active
// selects everything.
func (s *selection) reset(options, active []string) {
	s.options = slices.Clone(options)
	s.selected = make(map[string]bool, len(options))
	for _, o := range options {
		s.selected[o] = active == nil || slices.Contains(active, o)
	}
	s.cursor = min(s.cursor, max(len(options)-1, 0))
}

func (s *selection) move(delta int) {
	if len(s.options) == 0 {
		return
	}
	s.cursor = (s.cursor + delta + len(s.options)) % len(s.options)
}

func (s *selection) toggle() {
	if len(s.options) == 0 {
		return
	}
	o := s.options[s.cursor]
	s.selected[o] = !s.selected[o]
}

func (s *selection) setAll(on bool) {
	for _, o := range s.options {
		s.selected[o] = on
	}
}

func (s *selection) count() int {
	return lo.CountBy(s.options, func(o string) bool { return s.selected[o] })
}

// values returns nil when everything is selected so the filter keeps
// matching values that only appear in a later table.
func (s *selection) values() []string {
	if s.count() == len(s.options) {
		return nil
	}
	return lo.Filter(s.options, func(o string, _ int) bool { return s.selected[o] })
}

type pane int

const (
	panePartners pane = iota
	paneBrands
)

type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	SwitchPane key.Binding
	All        key.Binding
	None       key.Binding
	Debug      key.Binding
	Export     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "toggle"),
		),
		SwitchPane: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "partners/brands"),
		),
		All: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "select all"),
		),
		None: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "select none"),
		),
		Debug: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle debug"),
		),
		Export: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export CSV"),
		),
	}
}

// Model represents the controls tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	partners selection
	brands   selection
	pane     pane
	width    int
	height   int
}

// New creates a new controls model.
func New(state *app.State) *Model {
	m := &Model{
		state:    state,
		keys:     defaultKeyMap(),
		partners: newSelection("Partners"),
		brands:   newSelection("Brands"),
	}
	m.sync()
	return m
}

// Init initializes the controls tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the controls tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		m.sync()
	case tea.KeyMsg:
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) active() *selection {
	if m.pane == paneBrands {
		return &m.brands
	}
	return &m.partners
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.active().move(-1)
	case key.Matches(msg, m.keys.Down):
		m.active().move(1)
	case key.Matches(msg, m.keys.SwitchPane):
		m.pane = (m.pane + 1) % 2
	case key.Matches(msg, m.keys.Toggle):
		m.active().toggle()
		return m.applyFilter()
	case key.Matches(msg, m.keys.All):
		m.active().setAll(true)
		return m.applyFilter()
	case key.Matches(msg, m.keys.None):
		m.active().setAll(false)
		return m.applyFilter()
	case key.Matches(msg, m.keys.Debug):
		return func() tea.Msg { return app.ToggleDebugMsg{} }
	case key.Matches(msg, m.keys.Export):
		return func() tea.Msg { return app.RequestExportMsg{} }
	}
	return nil
}

func (m *Model) applyFilter() tea.Cmd {
	if !m.state.Loaded() {
		return nil
	}
	f := models.Filter{
		Partners: m.partners.values(),
		Brands:   m.brands.values(),
	}
	return func() tea.Msg { return app.SetFilterMsg{Filter: f} }
}

// sync rebuilds both lists from the snapshot options and active filter.
func (m *Model) sync() {
	snap := m.state.Snapshot()
	m.partners.reset(snap.Options.Partners, snap.Filter.Partners)
	m.brands.reset(snap.Options.Brands, snap.Filter.Brands)
}

// SetSize sets the available size for the controls tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.Toggle, m.keys.SwitchPane, m.keys.Debug, m.keys.Export}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Up, m.keys.Down, m.keys.Toggle, m.keys.SwitchPane},
		{m.keys.All, m.keys.None},
		{m.keys.Debug, m.keys.Export},
	}
}
