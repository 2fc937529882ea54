package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

// AnimationTickMsg advances bar animations.
type AnimationTickMsg time.Time

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*50, func(t time.Time) tea.Msg {
		return AnimationTickMsg(t)
	})
}

const (
	gradientFrom = "#5a56e0"
	gradientTo   = "#ee6ff8"
)

// ShareBar renders the share of a total (e.g. an app's reach among all
// devices) as a labelled progress bar.
type ShareBar struct {
	progress       progress.Model
	label          string
	percent        float64
	isAnimating    bool
	targetPercent  float64
	currentPercent float64
}

// NewShareBar creates a share bar of the given width.
func NewShareBar(width int) ShareBar {
	p := progress.New(
		progress.WithScaledGradient(gradientFrom, gradientTo),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	return ShareBar{progress: p}
}

// Init initializes the progress bar model.
func (s ShareBar) Init() tea.Cmd {
	return nil
}

// Update steps the animation towards the target percentage.
func (s ShareBar) Update(msg tea.Msg) (ShareBar, tea.Cmd) {
	var cmds []tea.Cmd

	if _, ok := msg.(AnimationTickMsg); ok && s.isAnimating {
		switch {
		case s.currentPercent < s.targetPercent:
			s.currentPercent = min(s.currentPercent+max((s.targetPercent-s.currentPercent)/10, 0.5), s.targetPercent)
			cmds = append(cmds, animationTick())
		case s.currentPercent > s.targetPercent:
			s.currentPercent = max(s.currentPercent-max((s.currentPercent-s.targetPercent)/10, 0.5), s.targetPercent)
			cmds = append(cmds, animationTick())
		default:
			s.isAnimating = false
		}
	}

	model, cmd := s.progress.Update(msg)
	s.progress = model.(progress.Model)
	cmds = append(cmds, cmd)

	return s, tea.Batch(cmds...)
}

// SetPercent sets the target percentage and starts animating towards it.
func (s *ShareBar) SetPercent(percent float64) tea.Cmd {
	s.percent = percent
	s.targetPercent = percent

	if !s.isAnimating {
		s.isAnimating = true
		return tea.Batch(s.progress.SetPercent(percent/100), animationTick())
	}
	return s.progress.SetPercent(percent / 100)
}

// Percent returns the target percentage.
func (s ShareBar) Percent() float64 {
	return s.percent
}

// SetLabel sets the bar label.
func (s *ShareBar) SetLabel(label string) {
	s.label = label
}

// SetWidth sets the progress bar width.
func (s *ShareBar) SetWidth(width int) {
	s.progress.Width = width
}

// View renders the bar with its label and percentage.
func (s ShareBar) View(width int) string {
	s.progress.Width = max(width-30, 10)

	bar := s.progress.ViewAs(s.percent / 100)
	percentStr := styles.GetShareStyle(s.percent).
		Width(7).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", s.percent))
	labelStr := styles.ProgressLabelStyle.Render(truncate(s.label, 19))

	return lipgloss.JoinHorizontal(lipgloss.Center, labelStr, bar, " ", percentStr)
}

// RenderGradientBar renders just the bar part with gradient colors.
func RenderGradientBar(percent float64, width int) string {
	if width < 1 {
		return ""
	}

	filled := min(max(int(float64(width)*percent/100), 0), width)

	var b strings.Builder
	for i := range width {
		if i < filled {
			t := float64(i) / float64(max(1, width-1))
			color := interpolateColor(gradientFrom, gradientTo, t)
			b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("█"))
		} else {
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Subtle).Render("░"))
		}
	}

	return b.String()
}

// SimpleShareBar renders a static share bar sized to width.
func SimpleShareBar(percent float64, label string, width int) string {
	const percentWidth = 7
	barWidth := max(width-len(label)-1-percentWidth-4, 5)

	labelStr := lipgloss.NewStyle().Foreground(styles.TextSecondary).Render(label)
	percentStr := styles.GetShareStyle(percent).
		Width(percentWidth).
		Align(lipgloss.Right).
		Render(fmt.Sprintf("%.1f%%", percent))

	return fmt.Sprintf("%s [%s] %s", labelStr, RenderGradientBar(percent, barWidth), percentStr)
}

// LoadingBar renders a shimmering placeholder bar while a fetch is in flight.
func LoadingBar(width, frame int) string {
	barWidth := max(width-12, 10)

	const cycle = 120
	t := float64(frame%cycle) / float64(cycle)
	var p float64
	if t < 0.5 {
		p = t * 2
	} else {
		p = (1 - t) * 2
	}
	eased := p * p * (3 - 2*p)
	shimmerPos := int(eased * float64(barWidth))

	var b strings.Builder
	for i := range barWidth {
		dist := shimmerPos - i
		if dist < 0 {
			dist = -dist
		}

		switch {
		case dist < 3:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.Primary).Render("▓"))
		case dist < 5:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.TextSecondary).Render("▒"))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(styles.BgLight).Render("░"))
		}
	}

	dots := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	dot := lipgloss.NewStyle().Foreground(styles.Primary).Render(dots[(frame/2)%len(dots)])

	return "    " + b.String() + " " + dot
}

func interpolateColor(fromHex, toHex string, t float64) string {
	from := hexToRGB(fromHex)
	to := hexToRGB(toHex)

	r := int(float64(from[0]) + t*(float64(to[0])-float64(from[0])))
	g := int(float64(from[1]) + t*(float64(to[1])-float64(from[1])))
	b := int(float64(from[2]) + t*(float64(to[2])-float64(from[2])))

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func hexToRGB(hex string) [3]int {
	hex = strings.TrimPrefix(hex, "#")
	var r, g, b int
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		logger.Error("failed to parse hex color", "hex", hex, "error", err)
		return [3]int{0, 0, 0}
	}
	return [3]int{r, g, b}
}
