package info

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/device-usage-dashboard/internal/clickhouse"
	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
	"github.com/j-veylop/device-usage-dashboard/internal/version"
)

const (
	sampleRows   = 5
	previewLines = 8
	notSet       = "(not set)"
)

// View renders the info tab.
func (m *Model) View() string {
	sections := []string{
		m.renderTitle(),
		m.renderConfigCard(),
		m.renderAboutCard(),
	}
	if m.state.Debug() {
		sections = append(sections,
			m.renderResponseCard(),
			m.renderSampleCard(),
			m.renderMissingCard(),
		)
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, version and debug information")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

func (m *Model) card(title string, rows ...string) string {
	body := append([]string{styles.CardTitleStyle.Render(title), ""}, rows...)
	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, body...),
	)
}

// renderConfigCard renders the data source and paths card.
func (m *Model) renderConfigCard() string {
	url, db := m.state.Endpoint()
	rows := []string{
		m.renderConfigRow("ClickHouse URL", orNotSet(url)),
		m.renderConfigRow("Database", orNotSet(db)),
	}

	if m.config != nil {
		timeout := "transport default"
		if m.config.HTTPTimeout > 0 {
			timeout = m.config.HTTPTimeout.String()
		}
		rows = append(rows,
			m.renderConfigRow("HTTP Timeout", timeout),
			m.renderConfigRow("Export Dir", orNotSet(m.config.ExportDir)),
			m.renderConfigRow("Log File", orNotSet(m.config.LogFile)),
			m.renderConfigRow("Env File", orNotSet(m.config.EnvFile)),
			m.renderConfigRow("Watch Env", onOff(m.config.WatchEnv)),
			m.renderConfigRow("Notify On Load", onOff(m.config.NotifyOnLoad)),
		)
	} else {
		rows = append(rows, "", styles.HelpStyle.Render("Configuration not loaded"))
	}

	return m.card("Configuration", rows...)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

func orNotSet(s string) string {
	if s == "" {
		return notSet
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	loaded := "none"
	if snap := m.state.Snapshot(); snap.Loaded() {
		loaded = fmt.Sprintf("%s records (%s)", humanize.Comma(int64(snap.Table.Len())), snap.Table.LoadID)
	}

	debug := styles.HelpStyle.Render("off (press d to enable)")
	if m.state.Debug() {
		debug = styles.WarningTextStyle.Render("on")
	}

	return m.card("About "+version.Name,
		m.renderConfigRow("Version", version.GetVersion()),
		m.renderConfigRow("Build Date", version.GetDate()),
		m.renderConfigRow("Git Commit", version.GetCommit()),
		m.renderConfigRow("Go Version", runtime.Version()),
		m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)),
		"",
		m.renderConfigRow("Loaded Table", loaded),
		m.renderConfigRow("Debug Mode", debug),
	)
}

// renderResponseCard shows the last HTTP exchange recorded in debug mode.
func (m *Model) renderResponseCard() string {
	d := m.state.Diagnostics()
	if d == nil {
		return m.card("Last Response", styles.HelpStyle.Render("No request recorded since debug mode was enabled."))
	}

	status := styles.SuccessTextStyle.Render(d.Status)
	if d.StatusCode != 200 {
		status = styles.ErrorTextStyle.Render(d.Status)
	}

	rows := []string{
		m.renderConfigRow("Status", status),
		m.renderConfigRow("Endpoint", d.Endpoint),
		m.renderConfigRow("Database", d.Database),
		m.renderConfigRow("At", d.At.Format("2006-01-02 15:04:05")),
		m.renderConfigRow("Duration", d.Duration.Round(time.Millisecond).String()),
	}
	if d.Err != nil {
		rows = append(rows, m.renderConfigRow("Error", styles.ErrorTextStyle.Render(d.Err.Error())))
	}

	rows = append(rows, "", styles.SubTitleStyle.Render("Headers"))
	rows = append(rows, m.renderHeaders(d)...)
	rows = append(rows, "", styles.SubTitleStyle.Render("Body Preview"))
	rows = append(rows, m.renderPreview(d.Preview)...)

	return m.card("Last Response", rows...)
}

func (m *Model) renderHeaders(d *clickhouse.Diagnostics) []string {
	if len(d.Headers) == 0 {
		return []string{styles.HelpStyle.Render("  none")}
	}
	names := make([]string, 0, len(d.Headers))
	for name := range d.Headers {
		names = append(names, name)
	}
	slices.Sort(names)

	width := m.cardWidth() - 4
	rows := make([]string, 0, len(names))
	for _, name := range names {
		line := fmt.Sprintf("  %s: %s", name, strings.Join(d.Headers[name], ", "))
		rows = append(rows, ansi.Truncate(line, width, "…"))
	}
	return rows
}

func (m *Model) renderPreview(preview string) []string {
	if preview == "" {
		return []string{styles.HelpStyle.Render("  (empty body)")}
	}
	lines := strings.Split(strings.TrimRight(preview, "\n"), "\n")
	width := m.cardWidth() - 4
	rows := make([]string, 0, previewLines+1)
	for i, line := range lines {
		if i == previewLines {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("  … %d more lines", len(lines)-previewLines)))
			break
		}
		rows = append(rows, "  "+ansi.Truncate(line, width-2, "…"))
	}
	return rows
}

// renderSampleCard shows the first filtered records.
func (m *Model) renderSampleCard() string {
	records := m.state.Snapshot().Records
	if len(records) == 0 {
		return m.card("Data Sample", styles.HelpStyle.Render("No records loaded."))
	}

	header := fmt.Sprintf("  %-12s %-28s %-12s %-10s %-16s %8s", "partner", "package", "hardware_id", "brand", "last_time_used", "fg (s)")
	rows := []string{styles.HelpKeyStyle.Render(header)}
	width := m.cardWidth() - 4
	for i := range records[:min(sampleRows, len(records))] {
		rows = append(rows, ansi.Truncate(sampleRow(&records[i]), width, "…"))
	}
	return m.card(fmt.Sprintf("Data Sample (first %d of %s)", min(sampleRows, len(records)), humanize.Comma(int64(len(records)))), rows...)
}

func sampleRow(r *models.UsageRecord) string {
	used := "NaT"
	if r.LastTimeUsed.Valid {
		used = r.LastTimeUsed.Time.Format("2006-01-02 15:04")
	}
	fg := "NaN"
	if r.TotalTimeInForeground.Valid {
		fg = fmt.Sprintf("%.0f", r.TotalTimeInForeground.Float64)
	}
	return fmt.Sprintf("  %-12s %-28s %-12s %-10s %-16s %8s",
		ansi.Truncate(r.Partner, 12, ""),
		ansi.Truncate(r.Package, 28, ""),
		ansi.Truncate(r.HardwareID, 12, ""),
		ansi.Truncate(r.Brand, 10, ""),
		used, fg)
}

// renderMissingCard lists the missing value count of every column.
func (m *Model) renderMissingCard() string {
	counts := metrics.MissingCounts(m.state.Snapshot().Records)

	rows := make([]string, 0, len(counts))
	for _, c := range counts {
		value := styles.HelpStyle.Render("0")
		if c.Missing > 0 {
			value = styles.WarningTextStyle.Render(humanize.Comma(int64(c.Missing)))
		}
		rows = append(rows, fmt.Sprintf("  %-36s %s", c.Column, value))
	}
	return m.card("Missing Values", rows...)
}
