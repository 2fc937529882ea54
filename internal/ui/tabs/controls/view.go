package controls

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/device-usage-dashboard/internal/app"
	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

const maxListRows = 12

// View renders the controls tab.
func (m *Model) View() string {
	sections := []string{m.renderTitle()}

	if !m.state.Loaded() {
		sections = append(sections,
			styles.HelpStyle.Render("Filters become available once data is loaded."),
			"",
			m.renderActions(),
		)
	} else {
		lists := lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderList(&m.partners, m.pane == panePartners),
			"  ",
			m.renderList(&m.brands, m.pane == paneBrands),
		)
		sections = append(sections, lists, "", m.renderActions(), "", m.renderInsights())
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Filters & Actions")
	snap := m.state.Snapshot()
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%s of %s records match the current filter",
		humanize.Comma(int64(len(snap.Records))), humanize.Comma(int64(snap.Table.Len()))))
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) listWidth() int {
	return min(max((m.width-10)/2, 28), 50)
}

func (m *Model) renderList(s *selection, focused bool) string {
	header := fmt.Sprintf("%s %s",
		styles.CardTitleStyle.Render(s.title),
		styles.HelpStyle.Render(fmt.Sprintf("(%d/%d)", s.count(), len(s.options))))
	rows := []string{header, ""}

	if len(s.options) == 0 {
		rows = append(rows, styles.HelpStyle.Render("  none"))
	}

	// Scroll the window so the cursor stays visible.
	start := max(0, min(s.cursor-maxListRows/2, len(s.options)-maxListRows))
	end := min(len(s.options), start+maxListRows)
	for i := start; i < end; i++ {
		o := s.options[i]
		box := styles.UncheckedStyle.Render("[ ]")
		if s.selected[o] {
			box = styles.CheckedStyle.Render("[x]")
		}
		label := o
		if label == "" {
			label = "(none)"
		}
		line := fmt.Sprintf("%s %s", box, label)
		if focused && i == s.cursor {
			rows = append(rows, styles.SelectedListItemStyle.Render("▸ "+line))
		} else {
			rows = append(rows, styles.ListItemStyle.Render("  "+line))
		}
	}
	if len(s.options) > maxListRows {
		rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more", len(s.options)-(end-start))))
	}

	style := styles.BlurredBorderStyle
	if focused {
		style = styles.FocusedBorderStyle
	}
	return style.Width(m.listWidth()).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderActions() string {
	debug := styles.ButtonInactiveStyle.Render("Debug: off")
	if m.state.Debug() {
		debug = styles.ButtonActiveStyle.Render("Debug: on")
	}
	export := styles.ButtonStyle.Render("Export CSV")
	if !m.state.Loaded() {
		export = styles.ButtonInactiveStyle.Render("Export CSV")
	}
	if slices.Contains(m.state.GetLoadingResources(), app.ResourceExport) {
		export = styles.ButtonInactiveStyle.Render("Exporting…")
	}

	buttons := lipgloss.JoinHorizontal(lipgloss.Center,
		styles.HelpKeyStyle.Render("d "), debug, "   ",
		styles.HelpKeyStyle.Render("x "), export,
	)
	return styles.CardStyle.Width(max(m.width-6, 40)).Render(
		lipgloss.JoinVertical(lipgloss.Left, styles.CardTitleStyle.Render("Actions"), "", buttons),
	)
}

func (m *Model) renderInsights() string {
	snap := m.state.Snapshot()
	ins := metrics.Insights(snap.Metrics)
	width := max(m.width-6, 40)

	rows := []string{styles.CardTitleStyle.Render("Quick Insights"), ""}
	if ins.MostPopular == nil {
		rows = append(rows, styles.HelpStyle.Render("No apps match the current filter."))
	} else {
		top := ins.MostPopular
		share := 0.0
		if snap.Summary.UniqueDevices > 0 {
			share = float64(top.Reach) / float64(snap.Summary.UniqueDevices) * 100
		}
		rows = append(rows,
			styles.HelpKeyStyle.Render("Most Popular App:"),
			"  "+top.Package,
			fmt.Sprintf("  Reach: %s devices", humanize.Comma(int64(top.Reach))),
			"  "+components.SimpleShareBar(share, "of devices", min(width-6, 60)),
			"",
		)
		if e := ins.MostEngaged; e != nil {
			rows = append(rows,
				styles.HelpKeyStyle.Render("Most Engaging App:"),
				"  "+e.Package,
				fmt.Sprintf("  Avg Time: %.2f hours/device", *e.AvgTimePerDevice),
				"",
			)
		}
	}
	rows = append(rows, fmt.Sprintf("%s %s",
		styles.HelpKeyStyle.Render("Total Apps Analyzed:"),
		humanize.Comma(int64(ins.AppCount))))

	return styles.CardStyle.Width(width).Render(strings.Join(rows, "\n"))
}
