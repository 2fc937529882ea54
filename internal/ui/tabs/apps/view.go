package apps

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

// View renders the apps tab.
func (m *Model) View() string {
	sections := []string{m.renderTitle(), m.renderControls()}

	snap := m.state.Snapshot()
	switch {
	case !snap.Loaded():
		sections = append(sections, components.RenderEmptyState(
			"No data loaded. Load a date range from the Overview tab.",
			m.width, max(m.height-8, 3)))
	case len(m.rows) == 0:
		sections = append(sections, m.renderNoMatches())
	default:
		sections = append(sections, m.renderTable(), m.renderSelection())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 60)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Detailed App Metrics")
	total := len(m.state.Snapshot().Metrics)
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("showing %d of %d apps", len(m.rows), total))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderControls() string {
	sortLine := fmt.Sprintf("%s %s",
		styles.HelpKeyStyle.Render("Sort by:"),
		styles.InfoTextStyle.Render(m.sortKey.Label()))

	var searchLine string
	switch {
	case m.searching:
		searchLine = styles.FocusedBorderStyle.Render(m.search.View())
	case m.search.Value() != "":
		searchLine = fmt.Sprintf("%s %s",
			styles.HelpKeyStyle.Render("Search:"),
			styles.WarningTextStyle.Render(m.search.Value()))
	default:
		searchLine = styles.HelpStyle.Render("Press / to search apps")
	}

	return lipgloss.JoinVertical(lipgloss.Left, sortLine, searchLine, "")
}

func (m *Model) renderTable() string {
	return styles.CardStyle.Width(m.cardWidth()).Render(m.table.View())
}

func (m *Model) renderSelection() string {
	selected, ok := m.selected()
	if !ok {
		return ""
	}
	caption := styles.HelpStyle.Render(fmt.Sprintf("%s reaches %.1f%% of %s devices",
		selected.Package, m.share.Percent(),
		humanize.Comma(int64(m.state.Snapshot().Summary.UniqueDevices))))
	return lipgloss.JoinVertical(lipgloss.Left, "", m.share.View(m.cardWidth()), caption)
}

func (m *Model) renderNoMatches() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		styles.SubTitleStyle.Render("No Matching Apps"),
		"",
		styles.HelpStyle.Render(fmt.Sprintf("Nothing matches %q.", m.search.Value())),
		"",
		styles.InfoTextStyle.Render("Press 'c' to clear the search"),
		"",
	)
	return styles.CardStyle.Width(m.cardWidth()).Render(content)
}
