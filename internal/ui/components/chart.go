// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

const noData = "No data available"

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render(noData)
	}

	// Ensure minimum dimensions
	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DodgerBlue),
	)
}

// RenderDualLineChart plots two series normalised to their own maximum so
// that values of different magnitude share one axis.
func RenderDualLineChart(first, second []float64, width, height int, caption string) string {
	if len(first) == 0 && len(second) == 0 {
		return styles.HelpStyle.Render(noData)
	}

	if width < 20 {
		width = 20
	}
	if height < 3 {
		height = 3
	}

	n := max(len(first), len(second))
	a := normalize(first, n)
	b := normalize(second, n)

	return asciigraph.PlotMany([][]float64{a, b},
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(0),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DodgerBlue, asciigraph.DarkOrange),
	)
}

// normalize pads values to n entries and scales them to 0..100.
func normalize(values []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, values)
	maxVal := maxOf(out)
	if maxVal == 0 {
		return out
	}
	for i := range out {
		out[i] = out[i] / maxVal * 100
	}
	return out
}

func maxOf(values []float64) float64 {
	maxVal := 0.0
	for _, v := range values {
		if v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

// Bar is one row of a horizontal bar chart.
type Bar struct {
	Label string
	Value float64
	// Note is rendered after the value, e.g. a secondary metric.
	Note string
}

// RenderBarChart creates a horizontal bar chart. Bars take the palette
// colour of their position.
func RenderBarChart(bars []Bar, width int, format string) string {
	if len(bars) == 0 {
		return styles.HelpStyle.Render(noData)
	}
	if format == "" {
		format = "%.1f"
	}

	maxVal := 0.0
	maxLabelLen := 0
	for _, b := range bars {
		maxVal = math.Max(maxVal, b.Value)
		maxLabelLen = max(maxLabelLen, lipgloss.Width(b.Label))
	}
	if maxVal == 0 {
		maxVal = 1
	}
	maxLabelLen = min(maxLabelLen, 32)

	barWidth := width - maxLabelLen - 20 // Leave room for label and value
	if barWidth < 10 {
		barWidth = 10
	}

	lines := make([]string, 0, len(bars))
	for i, b := range bars {
		label := truncate(b.Label, maxLabelLen)
		paddedLabel := fmt.Sprintf("%*s", maxLabelLen, label)

		barLen := max(int((b.Value/maxVal)*float64(barWidth)), 0)
		bar := lipgloss.NewStyle().Foreground(styles.PaletteColor(i)).Render(strings.Repeat("█", barLen))
		line := paddedLabel + " │" + bar + " " + fmt.Sprintf(format, b.Value)
		if b.Note != "" {
			line += " " + styles.HelpStyle.Render(b.Note)
		}
		lines = append(lines, line)
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}

// HeatmapBlocks are Unicode block characters for heatmaps (low to high intensity).
var HeatmapBlocks = []rune{'░', '▒', '▓', '█'}

// RenderHourlyHeatmap creates a 24-hour usage heatmap.
func RenderHourlyHeatmap(patterns []float64) string {
	if len(patterns) != 24 {
		padded := make([]float64, 24)
		copy(padded, patterns)
		patterns = padded
	}

	maxVal := maxOf(patterns)
	if maxVal == 0 {
		maxVal = 1
	}

	var result strings.Builder
	result.WriteString("00 ")

	for i, v := range patterns {
		intensity := int((v / maxVal) * float64(len(HeatmapBlocks)-1))
		intensity = min(max(intensity, 0), len(HeatmapBlocks)-1)

		var style lipgloss.Style
		switch intensity {
		case 0:
			style = lipgloss.NewStyle().Foreground(styles.Subtle)
		case 1:
			style = lipgloss.NewStyle().Foreground(styles.Success)
		case 2:
			style = lipgloss.NewStyle().Foreground(styles.Warning)
		case 3:
			style = lipgloss.NewStyle().Foreground(styles.Error)
		}

		result.WriteString(style.Render(string(HeatmapBlocks[intensity])))

		// Add gap at noon for readability
		if i == 11 {
			result.WriteString(" ")
		}
	}

	result.WriteString(" 23")
	return result.String()
}

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

func sparkIndex(v, maxVal float64) int {
	idx := int((v / maxVal) * float64(len(sparkChars)-1))
	return min(max(idx, 0), len(sparkChars)-1)
}

// RenderWeeklyPattern creates a weekly usage visualization, Monday first.
func RenderWeeklyPattern(patterns []float64, dayNames []string) string {
	if len(patterns) != 7 {
		padded := make([]float64, 7)
		copy(padded, patterns)
		patterns = padded
	}
	if len(dayNames) != 7 {
		dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	}

	maxVal := maxOf(patterns)
	if maxVal == 0 {
		maxVal = 1
	}

	parts := make([]string, 0, 7)
	for i, v := range patterns {
		parts = append(parts, fmt.Sprintf("%s %s", dayNames[i], string(sparkChars[sparkIndex(v, maxVal)])))
	}

	return strings.Join(parts, " ")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := maxOf(values)
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := math.Max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		result.WriteRune(sparkChars[sparkIndex(values[int(float64(i)*step)], maxVal)])
	}

	return result.String()
}

// Point is one labelled item of a scatter plot.
type Point struct {
	Label string
	X     float64
	Y     float64
}

// RenderScatter plots points on a character grid. Each point is drawn with
// the palette marker of its index, and a legend lists the labels.
func RenderScatter(points []Point, width, height int, xLabel, yLabel string) string {
	if len(points) == 0 {
		return styles.HelpStyle.Render(noData)
	}
	width = max(width, 20)
	height = max(height, 5)

	maxX, maxY := 0.0, 0.0
	for _, p := range points {
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if maxX == 0 {
		maxX = 1
	}
	if maxY == 0 {
		maxY = 1
	}

	grid := make([][]string, height)
	for r := range grid {
		grid[r] = make([]string, width)
		for c := range grid[r] {
			grid[r][c] = " "
		}
	}

	legend := make([]LegendItem, 0, len(points))
	for i, p := range points {
		col := int(p.X / maxX * float64(width-1))
		row := height - 1 - int(p.Y/maxY*float64(height-1))
		color := styles.PaletteColor(i)
		grid[row][col] = lipgloss.NewStyle().Foreground(color).Render(marker(i))
		legend = append(legend, LegendItem{Label: marker(i) + " " + p.Label, Color: color})
	}

	yAxis := fmt.Sprintf("%.1f", maxY)
	pad := strings.Repeat(" ", len(yAxis))

	var b strings.Builder
	b.WriteString(styles.HelpStyle.Render(yLabel) + "\n")
	for r, row := range grid {
		prefix := pad
		if r == 0 {
			prefix = yAxis
		}
		b.WriteString(prefix + " │" + strings.Join(row, "") + "\n")
	}
	b.WriteString(pad + " └" + strings.Repeat("─", width) + "\n")
	b.WriteString(fmt.Sprintf("%s  0%*s\n", pad, width-1, fmt.Sprintf("%.0f", maxX)))
	b.WriteString(styles.HelpStyle.Render(xLabel))
	b.WriteString("\n\n")
	b.WriteString(RenderLegend(legend))

	return b.String()
}

const markers = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func marker(i int) string {
	return string(markers[i%len(markers)])
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}
