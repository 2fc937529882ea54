// Package apps provides the detailed per-app metrics table.
package apps

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

// rowLimit is the number of rows shown after search and sort.
const rowLimit = 20

const missingValue = "—"

// keyMap defines the key bindings specific to the apps tab.
type keyMap struct {
	Sort   key.Binding
	Search key.Binding
	Clear  key.Binding
	Accept key.Binding
	Escape key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Sort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "cycle sort"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search apps"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear search"),
		),
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply search"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// Model represents the apps tab state.
type Model struct {
	state     *app.State
	table     table.Model
	search    textinput.Model
	share     components.ShareBar
	keys      keyMap
	rows      []models.AppMetric
	sortKey   models.SortKey
	width     int
	height    int
	searching bool
}

// New creates a new apps model.
func New(state *app.State) *Model {
	search := textinput.New()
	search.Placeholder = "Enter app package name..."
	search.Prompt = "Search: "
	search.CharLimit = 100
	search.Width = 40

	t := table.New(
		table.WithColumns(columns(32)),
		table.WithFocused(true),
		table.WithHeight(rowLimit),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	share := components.NewShareBar(40)
	share.SetLabel("Reach share")

	m := &Model{
		state:   state,
		table:   t,
		search:  search,
		share:   share,
		keys:    defaultKeyMap(),
		sortKey: models.SortByReach,
	}
	m.refresh()
	return m
}

func columns(packageWidth int) []table.Column {
	return []table.Column{
		{Title: "Package", Width: packageWidth},
		{Title: "Reach", Width: 9},
		{Title: "Total (h)", Width: 11},
		{Title: "Per Device (h)", Width: 14},
		{Title: "Per Session (h)", Width: 15},
		{Title: "Share", Width: 7},
	}
}

// Init initializes the apps tab.
func (m *Model) Init() tea.Cmd {
	return m.share.Init()
}

// CapturingInput reports whether the search box owns the keyboard.
func (m *Model) CapturingInput() bool {
	return m.searching
}

// Update handles messages for the apps tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case app.DataUpdatedMsg:
		m.table.SetCursor(0)
		m.refresh()
		return m, m.syncShare()

	case components.AnimationTickMsg, progress.FrameMsg:
		var cmd tea.Cmd
		m.share, cmd = m.share.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m, m.updateSearch(msg)
		}
		return m, m.handleKeyMsg(msg)
	}
	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Sort):
		m.sortKey = m.sortKey.Next()
		m.table.SetCursor(0)
		m.refresh()
		return m.syncShare()

	case key.Matches(msg, m.keys.Search):
		m.searching = true
		return m.search.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.search.SetValue("")
		m.table.SetCursor(0)
		m.refresh()
		return m.syncShare()

	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return tea.Batch(cmd, m.syncShare())
	}
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Accept):
		m.searching = false
		m.search.Blur()
		return nil
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.table.SetCursor(0)
		m.refresh()
		return m.syncShare()
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.table.SetCursor(0)
	m.refresh()
	return tea.Batch(cmd, m.syncShare())
}

// refresh recomputes the visible rows from the current snapshot.
func (m *Model) refresh() {
	snap := m.state.Snapshot()
	m.rows = metrics.View(snap.Metrics, m.sortKey, m.search.Value(), rowLimit)

	devices := snap.Summary.UniqueDevices
	rows := make([]table.Row, 0, len(m.rows))
	for _, a := range m.rows {
		rows = append(rows, table.Row{
			a.Package,
			humanize.Comma(int64(a.Reach)),
			formatHours(a.TotalTime),
			formatOptionalHours(a.AvgTimePerDevice),
			formatOptionalHours(a.AvgTimePerSession),
			fmt.Sprintf("%.1f%%", sharePercent(a.Reach, devices)),
		})
	}
	m.table.SetRows(rows)
}

// syncShare points the share bar at the selected row.
func (m *Model) syncShare() tea.Cmd {
	selected, ok := m.selected()
	if !ok {
		return m.share.SetPercent(0)
	}
	m.share.SetLabel(selected.Package)
	return m.share.SetPercent(sharePercent(selected.Reach, m.state.Snapshot().Summary.UniqueDevices))
}

func (m *Model) selected() (models.AppMetric, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.AppMetric{}, false
	}
	return m.rows[i], true
}

func sharePercent(reach, devices int) float64 {
	if devices == 0 {
		return 0
	}
	return float64(reach) / float64(devices) * 100
}

func formatHours(h float64) string {
	return humanize.FormatFloat("#,###.##", h)
}

func formatOptionalHours(h *float64) string {
	if h == nil {
		return missingValue
	}
	return formatHours(*h)
}

// SetSize sets the available size for the apps tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(min(max(height-14, 5), rowLimit+1))

	packageWidth := min(max(width-75, 20), 48)
	m.table.SetColumns(columns(packageWidth))
	m.share.SetWidth(min(max(width-30, 20), 60))
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	if m.searching {
		return []key.Binding{m.keys.Accept, m.keys.Escape}
	}
	return []key.Binding{m.keys.Sort, m.keys.Search, m.keys.Clear}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.Sort, m.keys.Search, m.keys.Clear},
		{m.keys.Accept, m.keys.Escape},
	}
}
