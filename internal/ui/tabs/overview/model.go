// Package overview provides the headline KPI tab and the date range picker.
package overview

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
)

type frameTickMsg time.Time

func frameTickCmd() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return frameTickMsg(t)
	})
}

type field int

const (
	fieldStart field = iota
	fieldEnd
)

// keyMap defines the key bindings specific to the overview tab.
type keyMap struct {
	Edit      key.Binding
	LastWeek  key.Binding
	LastMonth key.Binding
	Today     key.Binding
	Switch    key.Binding
	Submit    key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit date range"),
		),
		LastWeek: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "load last 7 days"),
		),
		LastMonth: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "load last 30 days"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "load today"),
		),
		Switch: key.NewBinding(
			key.WithKeys("tab", "shift+tab"),
			key.WithHelp("tab", "switch field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load range"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the overview tab state.
type Model struct {
	now      func() time.Time
	state    *app.State
	start    textinput.Model
	end      textinput.Model
	spinner  components.LoadingSpinner
	keys     keyMap
	viewport viewport.Model
	focus    field
	width    int
	height   int
	frame    int
	editing  bool
	ticking  bool
}

// New creates a new overview model.
func New(state *app.State) *Model {
	return &Model{
		now:      time.Now,
		state:    state,
		start:    newDateInput("Start"),
		end:      newDateInput("End"),
		spinner:  components.NewSpinner("Loading usage data..."),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

func newDateInput(prompt string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = models.DateLayout
	ti.Prompt = prompt + ": "
	ti.CharLimit = len(models.DateLayout)
	ti.Width = len(models.DateLayout) + 1
	return ti
}

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	m.ticking = true
	return tea.Batch(m.spinner.Init(), frameTickCmd())
}

// CapturingInput reports whether the date inputs own the keyboard.
func (m *Model) CapturingInput() bool {
	return m.editing
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case frameTickMsg:
		m.frame++
		if m.state.IsFetching() {
			return m, frameTickCmd()
		}
		m.ticking = false
		return m, nil

	case app.StartLoadingMsg, app.RequestLoadMsg:
		if m.ticking {
			return m, nil
		}
		m.ticking = true
		return m, frameTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.editing {
			return m, m.handleEditKey(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	today := m.now()
	switch {
	case key.Matches(msg, m.keys.Edit):
		return m.startEditing()
	case key.Matches(msg, m.keys.LastWeek):
		return requestLoad(models.DefaultDateRange(today))
	case key.Matches(msg, m.keys.LastMonth):
		return requestLoad(models.NewDateRange(today.AddDate(0, 0, -30), today))
	case key.Matches(msg, m.keys.Today):
		return requestLoad(models.NewDateRange(today, today))
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
}

func (m *Model) startEditing() tea.Cmd {
	r := m.state.DateRange()
	m.start.SetValue(r.Start.Format(models.DateLayout))
	m.end.SetValue(r.End.Format(models.DateLayout))
	m.editing = true
	m.focus = fieldStart
	m.end.Blur()
	return m.start.Focus()
}

func (m *Model) stopEditing() {
	m.editing = false
	m.start.Blur()
	m.end.Blur()
}

func (m *Model) handleEditKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return nil
	case key.Matches(msg, m.keys.Switch):
		if m.focus == fieldStart {
			m.focus = fieldEnd
			m.start.Blur()
			return m.end.Focus()
		}
		m.focus = fieldStart
		m.end.Blur()
		return m.start.Focus()
	case key.Matches(msg, m.keys.Submit):
		r, err := m.parseRange()
		if err != nil {
			return func() tea.Msg {
				return app.ErrorMsg{Error: err, Context: "Invalid date range"}
			}
		}
		m.stopEditing()
		return requestLoad(r)
	}

	var cmd tea.Cmd
	if m.focus == fieldStart {
		m.start, cmd = m.start.Update(msg)
	} else {
		m.end, cmd = m.end.Update(msg)
	}
	return cmd
}

var errEmptyDate = errors.New("both dates are required")

func (m *Model) parseRange() (models.DateRange, error) {
	if m.start.Value() == "" || m.end.Value() == "" {
		return models.DateRange{}, errEmptyDate
	}
	r, err := models.ParseDateRange(m.start.Value(), m.end.Value())
	if err != nil {
		return models.DateRange{}, err
	}
	if err := r.Validate(m.now()); err != nil {
		return models.DateRange{}, err
	}
	return r, nil
}

func requestLoad(r models.DateRange) tea.Cmd {
	return func() tea.Msg {
		return app.RequestLoadMsg{Range: r}
	}
}

// SetSize sets the available size for the overview.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.editing {
		return []key.Binding{m.keys.Switch, m.keys.Submit, m.keys.Cancel}
	}
	return []key.Binding{m.keys.Edit, m.keys.LastWeek, m.keys.LastMonth}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Edit, m.keys.Switch, m.keys.Submit, m.keys.Cancel},
		{m.keys.LastWeek, m.keys.LastMonth, m.keys.Today},
	}
}
