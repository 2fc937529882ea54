// Package patterns provides the usage pattern and device statistics tab.
package patterns

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

const (
	brandLimit = 10
	modelLimit = 10
)

// section selects which half of the tab is shown.
type section int

const (
	sectionUsage section = iota
	sectionDevices
)

func (s section) String() string {
	if s == sectionDevices {
		return "Device Statistics"
	}
	return "Usage Patterns"
}

type keyMap struct {
	ToggleSection key.Binding
	Up            key.Binding
	Down          key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		ToggleSection: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "usage/devices"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "scroll down"),
		),
	}
}

// Model represents the patterns tab state.
type Model struct {
	state    *app.State
	keys     keyMap
	viewport viewport.Model

	hourly  []models.UsageBucket
	weekly  []models.UsageBucket
	brands  []models.Distribution
	os      []models.Distribution
	devices []models.Distribution
	total   int

	section section
	width   int
	height  int
}

// New creates a new patterns model.
func New(state *app.State) *Model {
	m := &Model{
		state:    state,
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
	m.recompute()
	return m
}

// Init initializes the patterns tab.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the patterns tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		m.recompute()
		m.viewport.GotoTop()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.ToggleSection) {
			m.section = (m.section + 1) % 2
			m.viewport.GotoTop()
			return m, nil
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

// recompute derives every chart series from the filtered records.
func (m *Model) recompute() {
	records := m.state.Snapshot().Records
	m.total = len(records)
	m.hourly = metrics.HourlyUsage(records)
	m.weekly = metrics.WeeklyUsage(records)
	m.brands = metrics.ValueCounts(records, metrics.FieldBrand, brandLimit)
	m.os = metrics.ValueCounts(records, metrics.FieldOS, 0)
	m.devices = metrics.ValueCounts(records, metrics.FieldModel, modelLimit)
}

// SetSize sets the available size for the patterns tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keys.ToggleSection}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.ToggleSection},
		{m.keys.Up, m.keys.Down},
	}
}
