package overview

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

const (
	topByReach    = 10
	sparklineApps = 20
	matrixApps    = 20
	matrixHeight  = 12
	minCardWidth  = 40
	kpiCardsInRow = 4
)

// View renders the overview tab.
func (m *Model) View() string {
	snap := m.state.Snapshot()

	sections := []string{m.renderTitle(), m.renderRangeCard()}

	switch {
	case m.state.IsFetching() && !snap.Loaded():
		sections = append(sections, m.renderLoading())
	case !snap.Loaded():
		sections = append(sections, components.RenderEmptyState(
			"No data loaded. Press r to load the selected range or e to change it.",
			m.width, max(m.height-8, 3)))
	default:
		sections = append(sections,
			m.renderKPIs(snap.Summary),
			m.renderTopApps(snap.Metrics),
			m.renderMatrix(snap.Metrics),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Device Usage Analytics")
	subtitle := styles.HelpStyle.Render("App reach and engagement across partner devices")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return max(m.width-6, minCardWidth)
}

func (m *Model) renderLoading() string {
	bar := components.LoadingBar(min(m.cardWidth()-4, 40), m.frame)
	return lipgloss.JoinVertical(lipgloss.Left,
		components.RenderSpinnerCentered(m.spinner, m.cardWidth(), 3),
		styles.CenterHorizontal(bar, m.cardWidth()),
	)
}

func (m *Model) renderRangeCard() string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render("Date Range")), ""}

	if m.editing {
		rows = append(rows,
			m.inputStyle(fieldStart).Render(m.start.View()),
			m.inputStyle(fieldEnd).Render(m.end.View()),
			"",
			styles.HelpStyle.Render("tab switch field • enter load • esc cancel"),
		)
	} else {
		r := m.state.DateRange()
		line := fmt.Sprintf("  %s  %s",
			lipgloss.NewStyle().Bold(true).Render(r.String()),
			styles.HelpStyle.Render("(e to edit, r to load)"))
		rows = append(rows, line)
		if m.state.IsFetching() && m.state.Loaded() {
			rows = append(rows, "", "  "+m.spinner.ViewWithLabel())
		}
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func (m *Model) inputStyle(f field) lipgloss.Style {
	if m.focus == f {
		return styles.FocusedBorderStyle
	}
	return styles.BlurredBorderStyle
}

func (m *Model) renderKPIs(s models.Summary) string {
	avg := "—"
	if s.AvgForegroundHours != nil {
		avg = fmt.Sprintf("%.2f hours", *s.AvgForegroundHours)
	}

	cards := []struct{ label, value string }{
		{"Total Unique Devices", humanize.Comma(int64(s.UniqueDevices))},
		{"Total Apps Tracked", humanize.Comma(int64(s.UniquePackages))},
		{"Avg Usage Time", avg},
		{"Active Devices (7d)", humanize.Comma(int64(s.ActiveDevices7d))},
	}

	cardWidth := max(m.cardWidth()/kpiCardsInRow-2, 18)
	rendered := make([]string, 0, len(cards))
	for _, c := range cards {
		rendered = append(rendered, styles.KPICardStyle.Width(cardWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left,
				styles.KPILabelStyle.Render(c.label),
				styles.KPIValueStyle.Render(c.value),
			),
		))
	}

	if m.cardWidth() < (cardWidth+2)*kpiCardsInRow {
		return lipgloss.JoinVertical(lipgloss.Left,
			lipgloss.JoinHorizontal(lipgloss.Top, rendered[:2]...),
			lipgloss.JoinHorizontal(lipgloss.Top, rendered[2:]...),
		)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m *Model) renderTopApps(all []models.AppMetric) string {
	top := metrics.View(all, models.SortByReach, "", topByReach)
	bars := make([]components.Bar, 0, len(top))
	for _, a := range top {
		bars = append(bars, components.Bar{
			Label: a.Package,
			Value: float64(a.Reach),
			Note:  fmt.Sprintf("%.2f h", a.TotalTime),
		})
	}

	curve := lo.Map(metrics.View(all, models.SortByReach, "", sparklineApps),
		func(a models.AppMetric, _ int) float64 { return float64(a.Reach) })
	spark := fmt.Sprintf("%s %s",
		styles.HelpStyle.Render(fmt.Sprintf("reach curve, top %d:", len(curve))),
		lipgloss.NewStyle().Foreground(styles.Primary).Render(components.RenderSparkline(curve, sparklineApps)))

	return m.card("Top 10 Apps by Reach",
		styles.HelpStyle.Render("unique devices, total usage time in hours"),
		lipgloss.JoinVertical(lipgloss.Left,
			components.RenderBarChart(bars, m.cardWidth()-4, "%.0f"),
			"",
			spark,
		),
	)
}

func (m *Model) renderMatrix(all []models.AppMetric) string {
	top := metrics.View(all, models.SortByReach, "", matrixApps)
	points := make([]components.Point, 0, len(top))
	for _, a := range top {
		points = append(points, components.Point{
			Label: a.Package,
			X:     float64(a.Reach),
			Y:     a.TotalTime,
		})
	}

	return m.card("Reach vs Usage Matrix", "",
		components.RenderScatter(points, max(m.cardWidth()-16, 20), matrixHeight,
			"Reach (Devices)", "Total Time (hours)"),
	)
}

func (m *Model) card(title, subtitle, body string) string {
	icon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{fmt.Sprintf("%s %s", icon, styles.CardTitleStyle.Render(title))}
	if subtitle != "" {
		rows = append(rows, subtitle)
	}
	rows = append(rows, "", body)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
