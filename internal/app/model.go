// Package app implements the main Bubble Tea application with tab-based navigation.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/dustin/go-humanize"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
	"github.com/j-veylop/device-usage-dashboard/internal/ui/styles"
)

// TabID represents the identifier for a tab in the application.
type TabID int

const (
	// TabOverview is the ID for the overview tab.
	TabOverview TabID = iota
	// TabApps is the ID for the app metrics tab.
	TabApps
	// TabPatterns is the ID for the usage patterns tab.
	TabPatterns
	// TabControls is the ID for the filters and actions tab.
	TabControls
	// TabInfo is the ID for the info tab.
	TabInfo

	tabCount = int(TabInfo) + 1
)

// String returns the string representation of the TabID.
func (t TabID) String() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabApps:
		return "Apps"
	case TabPatterns:
		return "Patterns"
	case TabControls:
		return "Controls"
	case TabInfo:
		return "Info"
	default:
		return "Unknown"
	}
}

// Tab defines the interface that all tabs must implement.
type Tab interface {
	// Init initializes the tab and returns any initial commands.
	Init() tea.Cmd

	// Update handles messages and returns the updated tab and any commands.
	Update(msg tea.Msg) (Tab, tea.Cmd)

	// View renders the tab content.
	View() string

	// SetSize sets the available size for the tab.
	SetSize(width, height int)

	// ShortHelp returns key bindings for the short help view.
	ShortHelp() []key.Binding

	// FullHelp returns key bindings for the full help view.
	FullHelp() [][]key.Binding
}

// InputCapturer is implemented by tabs with text inputs. While it reports
// true, global single-letter bindings are passed to the tab instead.
type InputCapturer interface {
	CapturingInput() bool
}

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	Tab1      key.Binding
	Tab2      key.Binding
	Tab3      key.Binding
	Tab4      key.Binding
	Tab5      key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	Load      key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
	Up        key.Binding
	Down      key.Binding
	Enter     key.Binding
	Escape    key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Filter    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	km := KeyMap{}
	km = setTabKeys(km)
	km = setActionKeys(km)
	km = setNavigationKeys(km)
	return km
}

func setTabKeys(k KeyMap) KeyMap {
	k.Tab1 = key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "overview"))
	k.Tab2 = key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "apps"))
	k.Tab3 = key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "patterns"))
	k.Tab4 = key.NewBinding(key.WithKeys("4"), key.WithHelp("4", "controls"))
	k.Tab5 = key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "info"))
	k.NextTab = key.NewBinding(key.WithKeys("tab", "right"), key.WithHelp("tab/→", "next tab"))
	k.PrevTab = key.NewBinding(key.WithKeys("shift+tab", "left"), key.WithHelp("shift+tab/←", "prev tab"))
	return k
}

func setActionKeys(k KeyMap) KeyMap {
	k.Load = key.NewBinding(key.WithKeys("r", "ctrl+r"), key.WithHelp("r", "load range"))
	k.Help = key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle help"))
	k.Quit = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
	k.ForceQuit = key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))
	return k
}

func setNavigationKeys(k KeyMap) KeyMap {
	k.Up = key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up"))
	k.Down = key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down"))
	k.Enter = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select"))
	k.Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	k.PageUp = key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up"))
	k.PageDown = key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down"))
	k.Filter = key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search"))
	return k
}

// ShortHelp returns key bindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Load, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab1, k.Tab2, k.Tab3, k.Tab4, k.Tab5},
		{k.NextTab, k.PrevTab},
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Load, k.Help, k.Quit},
	}
}

// Styles defines the application styles.
type Styles struct {
	// Tab bar styles
	TabBar      lipgloss.Style
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style

	// Notification styles
	NotificationSuccess lipgloss.Style
	NotificationError   lipgloss.Style
	NotificationWarning lipgloss.Style
	NotificationInfo    lipgloss.Style

	// Content styles
	Content lipgloss.Style
	Help    lipgloss.Style
	Footer  lipgloss.Style
	Toast   lipgloss.Style

	// Common styles
	Title     lipgloss.Style
	Subtle    lipgloss.Style
	Highlight lipgloss.Style
}

// DefaultStyles returns the default application styles.
func DefaultStyles() Styles {
	subtle := lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	highlight := lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	success := lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#04B575"}
	warning := lipgloss.AdaptiveColor{Light: "#FF8C00", Dark: "#FF8C00"}
	errorColor := lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"}
	info := lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}

	s := Styles{}
	s.TabBar = lipgloss.NewStyle().Padding(0, 1).BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).BorderForeground(subtle)
	s.ActiveTab = lipgloss.NewStyle().Bold(true).Foreground(highlight).Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(subtle).Padding(0, 2)

	s.NotificationSuccess = lipgloss.NewStyle().Foreground(success).Padding(0, 1)
	s.NotificationError = lipgloss.NewStyle().Foreground(errorColor).Bold(true).Padding(0, 1)
	s.NotificationWarning = lipgloss.NewStyle().Foreground(warning).Padding(0, 1)
	s.NotificationInfo = lipgloss.NewStyle().Foreground(info).Padding(0, 1)

	s.Content = lipgloss.NewStyle().Padding(1, 2)
	s.Help = lipgloss.NewStyle().Foreground(subtle).Padding(0, 1)
	s.Footer = styles.FooterStyle
	s.Toast = styles.ToastStyle

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(highlight)
	s.Subtle = lipgloss.NewStyle().Foreground(subtle)
	s.Highlight = lipgloss.NewStyle().Foreground(highlight)

	return s
}

// Model is the main application model.
type Model struct {
	// Lifetime of in-flight fetches; cancelled on quit.
	ctx    context.Context
	cancel context.CancelFunc

	// Shared state
	state    *State
	services *services.Manager
	commands *Commands

	// Service subscription
	eventChannel chan services.ServiceEvent

	// Range to fetch from Init, if any.
	initialLoad *models.DateRange

	tabs     []Tab
	tabNames []string
	keymap   KeyMap
	styles   Styles

	// UI components
	spinner spinner.Model

	activeTab TabID

	// Window dimensions
	width  int
	height int

	// UI state
	showHelp bool
	ready    bool
}

// NewModel initializes a new application model.
func NewModel(mgr *services.Manager) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	ctx, cancel := context.WithCancel(context.Background())

	names := make([]string, tabCount)
	for i := range names {
		names[i] = TabID(i).String()
	}

	m := &Model{
		ctx:       ctx,
		cancel:    cancel,
		activeTab: TabOverview,
		tabs:      make([]Tab, tabCount),
		tabNames:  names,
		state:     NewState(),
		services:  mgr,
		commands:  NewCommands(mgr),
		keymap:    DefaultKeyMap(),
		styles:    DefaultStyles(),
		spinner:   s,
	}
	m.syncFromServices()
	return m
}

// SetTabs installs the tab implementations in TabID order.
func (m *Model) SetTabs(tabs []Tab) {
	m.tabs = make([]Tab, tabCount)
	copy(m.tabs, tabs)
	m.updateTabSizes()
}

// LoadOnStart makes Init fetch r immediately.
func (m *Model) LoadOnStart(r models.DateRange) {
	m.state.SetDateRange(r)
	m.initialLoad = &r
}

// GetState returns the shared state.
func (m *Model) GetState() *State {
	return m.state
}

// GetServices returns the service manager.
func (m *Model) GetServices() *services.Manager {
	return m.services
}

// GetActiveTab returns the active tab.
func (m *Model) GetActiveTab() TabID {
	return m.activeTab
}

// IsReady reports whether the first WindowSizeMsg has arrived.
func (m *Model) IsReady() bool {
	return m.ready
}

// Init starts the spinner, the tick loop and the service subscription.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		defaultTickCmd(),
	}

	if m.services != nil {
		cmds = append(cmds, subscribeToServicesCmd(m.services))
	}

	if m.initialLoad != nil {
		r := *m.initialLoad
		cmds = append(cmds, func() tea.Msg { return RequestLoadMsg{Range: r} })
	}

	for _, tab := range m.tabs {
		if tab != nil {
			cmds = append(cmds, tab.Init())
		}
	}

	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.handleWindowSize(msg)

	case tea.KeyMsg:
		cmd, handled := m.handleKeyMsg(msg)
		if handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case DataUpdatedMsg, DebugToggledMsg:
		cmds = append(cmds, m.handleAppMsg(msg)...)
		cmds = append(cmds, m.updateAllTabs(msg))
		return m, tea.Batch(cmds...)

	default:
		cmds = append(cmds, m.handleAppMsg(msg)...)
	}

	if cmd := m.updateActiveTab(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleAppMsg(msg tea.Msg) []tea.Cmd {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case TickMsg:
		m.state.ClearExpiredNotifications()
		cmds = append(cmds, defaultTickCmd())
	case SubscriptionEventMsg:
		m.eventChannel = msg.Channel
		cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
	case ServiceEventMsg:
		cmds = append(cmds, m.handleServiceEvent(msg.Event))
		if m.eventChannel != nil {
			cmds = append(cmds, waitForServiceEventCmd(m.eventChannel))
		}
	case RequestLoadMsg:
		cmds = append(cmds, m.handleRequestLoad(msg))
	case DataLoadedMsg:
		cmds = append(cmds, m.handleDataLoaded(msg)...)
	case LoadFailedMsg:
		cmds = append(cmds, m.handleLoadFailed(msg)...)
	case SetFilterMsg:
		if m.services != nil {
			m.services.SetFilter(msg.Filter)
			m.syncFromServices()
			cmds = append(cmds, dataUpdatedCmd)
		}
	case RequestExportMsg:
		cmds = append(cmds, m.handleRequestExport(msg))
	case ExportResultMsg:
		m.stopLoading(ResourceExport)
		if msg.Error != nil {
			cmds = append(cmds, notifyErrorCmd(errorText("Export failed", msg.Error)))
		} else {
			cmds = append(cmds, notifySuccessCmd("Exported to "+msg.Path))
		}
	case ToggleDebugMsg:
		cmds = append(cmds, m.commands.ToggleDebug())
	case DebugToggledMsg:
		m.state.SetDebug(msg.Enabled, msg.Diagnostics)
		if msg.Enabled {
			cmds = append(cmds, notifyInfoCmd("Debug mode enabled"))
		} else {
			cmds = append(cmds, notifyInfoCmd("Debug mode disabled"))
		}
	case AddNotificationMsg:
		id := m.state.AddNotification(msg.Type, msg.Message, msg.Duration)
		if msg.Duration > 0 {
			cmds = append(cmds, clearNotificationCmd(id, msg.Duration))
		}
	case RemoveNotificationMsg:
		m.state.RemoveNotification(msg.ID)
	case ClearExpiredNotificationsMsg:
		m.state.ClearExpiredNotifications()
	case StartLoadingMsg:
		m.state.SetLoading(msg.Resource, true)
	case StopLoadingMsg:
		m.stopLoading(msg.Resource)
	case ErrorMsg:
		if msg.Context != "" {
			cmds = append(cmds, notifyErrorCmd(errorText(msg.Context, msg.Error)))
		} else {
			cmds = append(cmds, notifyErrorCmd(msg.Error.Error()))
		}
	case TabSwitchMsg:
		m.switchTab(msg.Tab)
	case ToggleHelpMsg:
		m.showHelp = !m.showHelp
	case QuitMsg:
		m.cancel()
		cmds = append(cmds, tea.Quit)
	}
	return cmds
}

func dataUpdatedCmd() tea.Msg { return DataUpdatedMsg{} }

// syncFromServices copies the manager's view into the shared state.
func (m *Model) syncFromServices() {
	if m.services == nil {
		return
	}
	m.state.SetSnapshot(m.services.Current())
	m.state.SetDebug(m.services.Debug(), m.services.Diagnostics())
	url, db := m.services.Endpoint()
	m.state.SetEndpoint(url, db)
}

func (m *Model) handleRequestLoad(msg RequestLoadMsg) tea.Cmd {
	if m.state.IsFetching() {
		return notifyWarningCmd("A load is already in progress")
	}
	if m.services == nil {
		return notifyErrorCmd("No data source configured")
	}

	m.state.SetDateRange(msg.Range)
	m.state.SetLoading(ResourceFetch, true)
	m.state.SetLoadingNotification("Loading data for " + msg.Range.String() + "...")
	return m.commands.Load(m.ctx, msg.Range)
}

func (m *Model) handleDataLoaded(msg DataLoadedMsg) []tea.Cmd {
	m.stopLoading(ResourceFetch)
	m.syncFromServices()
	return []tea.Cmd{
		notifySuccessCmd(fmt.Sprintf("Successfully loaded %s records", humanize.Comma(int64(msg.Table.Len())))),
		dataUpdatedCmd,
	}
}

func (m *Model) handleLoadFailed(msg LoadFailedMsg) []tea.Cmd {
	m.stopLoading(ResourceFetch)
	m.syncFromServices()

	var cmd tea.Cmd
	switch {
	case errors.Is(msg.Error, context.Canceled):
		return nil
	case errors.Is(msg.Error, services.ErrNoData):
		cmd = notifyWarningCmd("No data found for " + msg.Range.String())
	default:
		cmd = notifyErrorCmd(errorText("Failed to load data", msg.Error))
	}
	return []tea.Cmd{cmd, dataUpdatedCmd}
}

func (m *Model) handleRequestExport(msg RequestExportMsg) tea.Cmd {
	if !m.state.Loaded() {
		return notifyWarningCmd("Load data before exporting")
	}
	if m.services == nil {
		return nil
	}
	m.state.SetLoading(ResourceExport, true)
	return m.commands.Export(msg.Dir)
}

func (m *Model) stopLoading(resource string) {
	m.state.SetLoading(resource, false)
	if !m.state.IsFetching() {
		m.state.ClearLoadingNotification()
	}
}

func (m *Model) handleWindowSize(msg tea.WindowSizeMsg) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true
	m.updateTabSizes()
}

func (m *Model) updateActiveTab(msg tea.Msg) tea.Cmd {
	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		var cmd tea.Cmd
		m.tabs[m.activeTab], cmd = m.tabs[m.activeTab].Update(msg)
		return cmd
	}
	return nil
}

// updateAllTabs delivers msg to every tab so inactive tabs stay current.
func (m *Model) updateAllTabs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for i, tab := range m.tabs {
		if tab == nil {
			continue
		}
		var cmd tea.Cmd
		m.tabs[i], cmd = tab.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateTabSizes() {
	// navbar (2 lines) + footer (1 line) + spacing
	contentHeight := max(0, m.height-4)

	for _, tab := range m.tabs {
		if tab != nil {
			tab.SetSize(m.width, contentHeight)
		}
	}
}

func (m *Model) switchTab(id TabID) {
	if int(id) < 0 || int(id) >= tabCount {
		return
	}
	m.activeTab = id
	m.updateTabSizes()
}

func (m *Model) capturingInput() bool {
	if int(m.activeTab) >= len(m.tabs) || m.tabs[m.activeTab] == nil {
		return false
	}
	c, ok := m.tabs[m.activeTab].(InputCapturer)
	return ok && c.CapturingInput()
}

// handleKeyMsg handles global keys. It reports whether the key was consumed;
// unconsumed keys go to the active tab.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Cmd, bool) {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.cancel()
		return tea.Quit, true
	}
	if m.capturingInput() {
		return nil, false
	}

	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.cancel()
		return tea.Quit, true

	case key.Matches(msg, m.keymap.Help):
		m.showHelp = !m.showHelp
		return nil, true

	case key.Matches(msg, m.keymap.Tab1):
		m.switchTab(TabOverview)
		return nil, true

	case key.Matches(msg, m.keymap.Tab2):
		m.switchTab(TabApps)
		return nil, true

	case key.Matches(msg, m.keymap.Tab3):
		m.switchTab(TabPatterns)
		return nil, true

	case key.Matches(msg, m.keymap.Tab4):
		m.switchTab(TabControls)
		return nil, true

	case key.Matches(msg, m.keymap.Tab5):
		m.switchTab(TabInfo)
		return nil, true

	case key.Matches(msg, m.keymap.NextTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) + 1) % tabCount))
		}
		return nil, true

	case key.Matches(msg, m.keymap.PrevTab):
		if !m.showHelp {
			m.switchTab(TabID((int(m.activeTab) - 1 + tabCount) % tabCount))
		}
		return nil, true

	case key.Matches(msg, m.keymap.Load):
		r := m.state.DateRange()
		return func() tea.Msg { return RequestLoadMsg{Range: r} }, true

	case key.Matches(msg, m.keymap.Escape):
		if m.showHelp {
			m.showHelp = false
			return nil, true
		}
	}

	return nil, false
}

func (m *Model) handleServiceEvent(event services.ServiceEvent) tea.Cmd {
	switch e := event.(type) {
	case services.ConfigReloadedEvent:
		if e.Error != nil {
			return notifyErrorCmd(errorText("Failed to reload "+e.Path, e.Error))
		}
		m.syncFromServices()
		return tea.Batch(notifyInfoCmd("Configuration reloaded"), dataUpdatedCmd)

	case services.ErrorEvent:
		return notifyErrorCmd(fmt.Sprintf("[%s] %v", e.Service, e.Error))
	}

	return nil
}

// View renders the application UI.
func (m *Model) View() string {
	var b strings.Builder

	if m.width > 0 {
		b.WriteString(m.renderNavbar())
		b.WriteString("\n")
	}

	if !m.ready {
		b.WriteString(m.styles.Content.Render(fmt.Sprintf("%s Loading...", m.spinner.View())))
		return b.String()
	}

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		b.WriteString(m.tabs[m.activeTab].View())
	} else {
		b.WriteString(m.renderPlaceholder())
	}
	b.WriteString("\n")
	b.WriteString(m.renderFooter())

	mainView := b.String()

	if m.showHelp {
		mainView = m.overlayCentered(mainView, m.renderHelp())
	}

	if notifications := m.renderNotifications(); len(notifications) > 0 {
		return m.overlayToasts(mainView, notifications)
	}

	return mainView
}

func (m *Model) overlayCentered(mainView string, overlay string) string {
	mainLines := strings.Split(mainView, "\n")
	overlayLines := strings.Split(overlay, "\n")

	overlayWidth := lipgloss.Width(overlay)

	y := max((m.height-len(overlayLines))/2, 0)
	x := max((m.width-overlayWidth)/2, 0)

	for len(mainLines) < y+len(overlayLines) {
		mainLines = append(mainLines, "")
	}

	for i, overlayLine := range overlayLines {
		mainY := y + i
		mainLine := mainLines[mainY]

		// Keep what is left of the overlay and what is right of it.
		left := ansi.Truncate(mainLine, x, "")
		right := ansi.TruncateLeft(mainLine, x+overlayWidth, "")

		if lipgloss.Width(left) < x {
			left += strings.Repeat(" ", x-lipgloss.Width(left))
		}

		mainLines[mainY] = left + overlayLine + right
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderNavbar() string {
	tabs := make([]string, 0, len(m.tabNames))

	for i, name := range m.tabNames {
		if TabID(i) == m.activeTab {
			tabs = append(tabs, m.styles.ActiveTab.Render(fmt.Sprintf("[%d] %s", i+1, name)))
		} else {
			tabs = append(tabs, m.styles.InactiveTab.Render(fmt.Sprintf(" %d  %s", i+1, name)))
		}
	}

	tabBar := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	return m.styles.TabBar.Width(m.width).Render(tabBar)
}

// renderFooter shows the loaded range and load time.
func (m *Model) renderFooter() string {
	parts := []string{"Data range: " + m.state.DateRange().String()}

	if snap := m.state.Snapshot(); snap.Loaded() {
		now := time.Now()
		parts = append(parts,
			"Last updated: "+m.state.LastUpdated().Format("2006-01-02 15:04:05")+
				" ("+humanize.RelTime(now.Add(-m.state.TimeSinceUpdate()), now, "ago", "from now")+")",
			humanize.Comma(int64(len(snap.Records)))+" of "+humanize.Comma(int64(snap.Table.Len()))+" records",
		)
	} else {
		parts = append(parts, "No data loaded")
	}

	if m.state.AnyLoading() {
		parts = append(parts, m.spinner.View()+" working")
	}
	if m.state.Debug() {
		parts = append(parts, "DEBUG")
	}
	parts = append(parts, "? help")

	return m.styles.Footer.Width(m.width).Render(strings.Join(parts, " │ "))
}

func (m *Model) renderNotifications() []string {
	notifications := m.state.GetNotifications()
	if len(notifications) == 0 {
		return nil
	}

	toasts := make([]string, 0, len(notifications))
	for _, n := range notifications {
		var style lipgloss.Style
		var prefix string

		switch n.Type {
		case NotificationSuccess:
			style = m.styles.NotificationSuccess
			prefix = "[OK]"
		case NotificationError:
			style = m.styles.NotificationError
			prefix = "[ERR]"
		case NotificationWarning:
			style = m.styles.NotificationWarning
			prefix = "[WARN]"
		case NotificationInfo:
			style = m.styles.NotificationInfo
			prefix = "[INFO]"
		case NotificationLoading:
			style = m.styles.NotificationInfo
			prefix = m.spinner.View()
		}

		content := style.Render(fmt.Sprintf("%s %s", prefix, n.Message))
		toasts = append(toasts, m.styles.Toast.Render(content))
	}

	return toasts
}

func (m *Model) overlayToasts(mainView string, toasts []string) string {
	toastStack := lipgloss.JoinVertical(lipgloss.Right, toasts...)
	toastLines := strings.Split(toastStack, "\n")
	mainLines := strings.Split(mainView, "\n")

	toastWidth := lipgloss.Width(toastStack)
	startX := max(m.width-toastWidth-2, 0)

	const startY = 2

	for i, toastLine := range toastLines {
		lineIdx := startY + i
		if lineIdx >= len(mainLines) {
			break
		}

		mainLine := mainLines[lineIdx]
		mainLineWidth := lipgloss.Width(mainLine)

		if mainLineWidth < startX {
			mainLines[lineIdx] = mainLine + strings.Repeat(" ", startX-mainLineWidth) + toastLine
		} else {
			mainLines[lineIdx] = ansi.Truncate(mainLine, startX, "") + toastLine
		}
	}

	return strings.Join(mainLines, "\n")
}

func (m *Model) renderHelp() string {
	var lines []string

	lines = append(lines, m.styles.Title.Render("Keyboard Shortcuts"))
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Navigation"))
	lines = append(lines, "  1-5        Switch tabs")
	lines = append(lines, "  Tab        Next tab")
	lines = append(lines, "  Shift+Tab  Previous tab")
	lines = append(lines, "")

	lines = append(lines, m.styles.Highlight.Render("Actions"))
	lines = append(lines, "  r          Load selected date range")
	lines = append(lines, "  ?          Toggle help")
	lines = append(lines, "  q/Ctrl+C   Quit")
	lines = append(lines, "")

	if int(m.activeTab) < len(m.tabs) && m.tabs[m.activeTab] != nil {
		tabHelp := m.tabs[m.activeTab].ShortHelp()
		if len(tabHelp) > 0 {
			lines = append(lines, m.styles.Highlight.Render(fmt.Sprintf("%s Tab", m.tabNames[m.activeTab])))
			for _, binding := range tabHelp {
				lines = append(lines, fmt.Sprintf("  %-10s %s", binding.Help().Key, binding.Help().Desc))
			}
			lines = append(lines, "")
		}
	}

	lines = append(lines, m.styles.Subtle.Render("Press ? or Esc to close"))

	return styles.HelpPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m *Model) renderPlaceholder() string {
	content := fmt.Sprintf(
		"Tab %d: %s\n\n%s",
		m.activeTab+1,
		m.tabNames[m.activeTab],
		m.styles.Subtle.Render("This tab is not available."),
	)
	return m.styles.Content.Render(content)
}
