package patterns

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/components"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

// View renders the patterns tab.
func (m *Model) View() string {
	if !m.state.Loaded() {
		return m.renderEmpty()
	}

	sections := []string{m.renderHeader()}
	if m.section == sectionDevices {
		sections = append(sections,
			m.renderBrands(),
			m.renderOS(),
			m.renderModels(),
		)
	} else {
		sections = append(sections,
			m.renderHourly(),
			m.renderWeekly(),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderEmpty() string {
	content := lipgloss.JoinVertical(lipgloss.Left,
		styles.TitleStyle.Render("Usage Patterns"),
		"",
		styles.HelpStyle.Render("No usage data loaded yet."),
		styles.HelpStyle.Render("Patterns appear once a date range has been loaded."),
	)
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}

func (m *Model) cardWidth() int {
	return max(m.width-6, 40)
}

func (m *Model) renderHeader() string {
	title := styles.TitleStyle.Render(m.section.String())

	toggleStyle := lipgloss.NewStyle().
		Foreground(styles.Primary).
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.Primary)
	toggle := toggleStyle.Render("[v] switch view")

	header := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", toggle)
	subtitle := styles.HelpStyle.Render(fmt.Sprintf("%d records in %s",
		m.total, m.state.DateRange().String()))

	return lipgloss.JoinVertical(lipgloss.Left, header, subtitle, "")
}

func (m *Model) card(icon, title string, body ...string) string {
	rows := []string{
		fmt.Sprintf("%s %s", lipgloss.NewStyle().Foreground(styles.Primary).Render(icon), styles.CardTitleStyle.Render(title)),
		"",
	}
	rows = append(rows, body...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func avgHours(buckets []models.UsageBucket) []float64 {
	return lo.Map(buckets, func(b models.UsageBucket, _ int) float64 { return b.AvgHours })
}

func samples(buckets []models.UsageBucket) []float64 {
	return lo.Map(buckets, func(b models.UsageBucket, _ int) float64 { return float64(b.Samples) })
}

func (m *Model) renderHourly() string {
	if lo.SumBy(m.hourly, func(b models.UsageBucket) int { return b.Samples }) == 0 {
		return m.card("⏱", "Average Usage by Hour of Day", styles.HelpStyle.Render("  No timed records"))
	}

	chartWidth := max(m.cardWidth()-14, 24)
	hours := avgHours(m.hourly)

	legend := components.RenderLegend([]components.LegendItem{
		{Label: "avg hours (scaled)", Color: styles.SeriesReach},
		{Label: "observations (scaled)", Color: styles.SeriesTime},
	})

	return m.card("⏱", "Average Usage by Hour of Day",
		components.RenderLineChart(hours, chartWidth, 8, "Average Usage Time (hours) by hour 00-23"),
		"",
		styles.HelpStyle.Render("Heatmap"),
		components.RenderHourlyHeatmap(hours),
		"",
		components.RenderDualLineChart(hours, samples(m.hourly), chartWidth, 6, "Usage vs observations"),
		legend,
	)
}

func (m *Model) renderWeekly() string {
	bars := lo.Map(m.weekly, func(b models.UsageBucket, _ int) components.Bar {
		return components.Bar{
			Label: b.Label,
			Value: b.AvgHours,
			Note:  fmt.Sprintf("%d obs", b.Samples),
		}
	})

	return m.card("📅", "Average Usage by Day of Week",
		components.RenderBarChart(bars, m.cardWidth()-4, "%.2f h"),
		"",
		components.RenderWeeklyPattern(avgHours(m.weekly), nil),
	)
}

func distributionBars(dist []models.Distribution, total int) []components.Bar {
	return lo.Map(dist, func(d models.Distribution, _ int) components.Bar {
		label := d.Label
		if label == "" {
			label = "(none)"
		}
		share := 0.0
		if total > 0 {
			share = float64(d.Count) / float64(total) * 100
		}
		return components.Bar{Label: label, Value: float64(d.Count), Note: fmt.Sprintf("%.1f%%", share)}
	})
}

func (m *Model) renderBrands() string {
	return m.card("◈", "Device Brand Distribution",
		components.RenderBarChart(distributionBars(m.brands, m.total), m.cardWidth()-4, "%.0f"))
}

func (m *Model) renderOS() string {
	return m.card("◈", "Operating System Distribution",
		components.RenderBarChart(distributionBars(m.os, m.total), m.cardWidth()-4, "%.0f"))
}

func (m *Model) renderModels() string {
	return m.card("◈", "Top 10 Device Models",
		components.RenderBarChart(distributionBars(m.devices, m.total), m.cardWidth()-4, "%.0f"))
}
