package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
)

// fakeTab records the messages it receives.
type fakeTab struct {
	received  []tea.Msg
	width     int
	height    int
	capturing bool
}

func (f *fakeTab) Init() tea.Cmd { return nil }

func (f *fakeTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	f.received = append(f.received, msg)
	return f, nil
}

func (f *fakeTab) View() string { return "fake tab view" }

func (f *fakeTab) SetSize(width, height int) { f.width, f.height = width, height }

func (f *fakeTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort"))}
}

func (f *fakeTab) FullHelp() [][]key.Binding { return nil }

func (f *fakeTab) CapturingInput() bool { return f.capturing }

func (f *fakeTab) got(match func(tea.Msg) bool) bool {
	for _, m := range f.received {
		if match(m) {
			return true
		}
	}
	return false
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func readyModel(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m
}

// drain runs cmd and feeds the resulting messages back into the model,
// returning every message it saw. Commands that do not answer quickly
// (timers) are abandoned.
func drain(m *Model, cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()

	var msg tea.Msg
	select {
	case msg = <-done:
	case <-time.After(500 * time.Millisecond):
		return nil
	}

	switch msg := msg.(type) {
	case nil:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, drain(m, c)...)
		}
		return out
	case TickMsg, RemoveNotificationMsg:
		return nil
	default:
		_, next := m.Update(msg)
		return append([]tea.Msg{msg}, drain(m, next)...)
	}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil)
	if model.state == nil {
		t.Error("State should be initialized")
	}
	if model.activeTab != TabOverview {
		t.Error("Default tab should be Overview")
	}
	if len(model.tabs) != tabCount || len(model.tabNames) != tabCount {
		t.Errorf("got %d tabs, want %d", len(model.tabs), tabCount)
	}
}

func TestModel_Init(t *testing.T) {
	if NewModel(nil).Init() == nil {
		t.Error("Init returned nil command")
	}
}

func TestModel_Update_WindowSize(t *testing.T) {
	model := NewModel(nil)
	tab := &fakeTab{}
	model.SetTabs([]Tab{tab})

	model.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	if model.width != 100 || model.height != 50 {
		t.Errorf("size = %dx%d, want 100x50", model.width, model.height)
	}
	if !model.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if tab.width != 100 || tab.height != 46 {
		t.Errorf("tab size = %dx%d, want 100x46", tab.width, tab.height)
	}
}

func TestModel_TabKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want TabID
	}{
		{'1', TabOverview},
		{'2', TabApps},
		{'3', TabPatterns},
		{'4', TabControls},
		{'5', TabInfo},
	}

	model := readyModel(NewModel(nil))
	for _, tt := range tests {
		model.Update(runeKey(tt.key))
		if model.activeTab != tt.want {
			t.Errorf("key %q: activeTab = %v, want %v", tt.key, model.activeTab, tt.want)
		}
	}
}

func TestModel_NextPrevTab(t *testing.T) {
	model := readyModel(NewModel(nil))

	model.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	if model.activeTab != TabInfo {
		t.Errorf("prev from first should wrap to Info, got %v", model.activeTab)
	}
	model.Update(tea.KeyMsg{Type: tea.KeyTab})
	if model.activeTab != TabOverview {
		t.Errorf("next from last should wrap to Overview, got %v", model.activeTab)
	}

	model.Update(TabSwitchMsg{Tab: TabPatterns})
	if model.activeTab != TabPatterns {
		t.Errorf("TabSwitchMsg: activeTab = %v", model.activeTab)
	}
	model.Update(TabSwitchMsg{Tab: TabID(42)})
	if model.activeTab != TabPatterns {
		t.Error("out of range TabSwitchMsg should be ignored")
	}
}

func TestModel_CapturingTabReceivesKeys(t *testing.T) {
	model := readyModel(NewModel(nil))
	tab := &fakeTab{capturing: true}
	model.SetTabs([]Tab{tab})

	model.Update(runeKey('2'))
	if model.activeTab != TabOverview {
		t.Error("digits should go to the capturing tab")
	}
	if !tab.got(func(m tea.Msg) bool { k, ok := m.(tea.KeyMsg); return ok && k.String() == "2" }) {
		t.Error("tab should receive the key")
	}

	_, cmd := model.Update(runeKey('q'))
	if cmd != nil {
		if _, ok := cmd().(tea.QuitMsg); ok {
			t.Error("q should not quit while typing")
		}
	}

	_, cmd = model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should return tea.Quit")
	}
	if model.ctx.Err() == nil {
		t.Error("quitting should cancel in-flight fetches")
	}
}

func TestModel_GlobalKeysNotForwarded(t *testing.T) {
	model := readyModel(NewModel(nil))
	tab := &fakeTab{}
	model.SetTabs([]Tab{tab, tab})

	model.Update(runeKey('2'))
	if tab.got(func(m tea.Msg) bool { _, ok := m.(tea.KeyMsg); return ok }) {
		t.Error("consumed keys should not reach the tab")
	}

	model.Update(runeKey('x'))
	if !tab.got(func(m tea.Msg) bool { _, ok := m.(tea.KeyMsg); return ok }) {
		t.Error("unbound keys should reach the tab")
	}
}

func TestModel_Update_Tick(t *testing.T) {
	_, cmd := NewModel(nil).Update(TickMsg{Time: time.Now()})
	if cmd == nil {
		t.Error("TickMsg should return a command (next tick)")
	}
}

func TestModel_View(t *testing.T) {
	model := NewModel(nil)

	if view := model.View(); !strings.Contains(view, "Loading...") {
		t.Error("View should show Loading when not ready")
	}

	readyModel(model)
	view := model.View()
	for _, want := range []string{"Overview", "Apps", "Patterns", "Controls", "Info", "not available", "Data range: ", "No data loaded"} {
		if !strings.Contains(view, want) {
			t.Errorf("View should contain %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	model := readyModel(NewModel(nil))
	model.SetTabs([]Tab{&fakeTab{}})

	model.Update(runeKey('?'))
	if !model.showHelp {
		t.Fatal("? should open help")
	}
	view := model.View()
	if !strings.Contains(view, "Keyboard Shortcuts") || !strings.Contains(view, "Overview Tab") {
		t.Error("help overlay should list global and tab bindings")
	}

	model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.showHelp {
		t.Error("esc should close help")
	}

	model.Update(ToggleHelpMsg{})
	if !model.showHelp {
		t.Error("ToggleHelpMsg should open help")
	}
}

func TestModel_Notifications(t *testing.T) {
	model := readyModel(NewModel(nil))

	_, cmd := model.Update(AddNotificationMsg{Type: NotificationSuccess, Message: "hello", Duration: time.Minute})
	if cmd == nil {
		t.Error("timed notification should schedule removal")
	}
	if view := model.View(); !strings.Contains(view, "[OK] hello") {
		t.Error("toast should be rendered")
	}

	id := model.state.GetNotifications()[0].ID
	model.Update(RemoveNotificationMsg{ID: id})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("RemoveNotificationMsg should remove the toast")
	}

	model.Update(ErrorMsg{Error: errors.New("bad"), Context: "Export"})
}

func TestModel_LoadSuccess(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody(
		testRow("acme", "Google", "maps", "d1", "3600"),
		testRow("acme", "Google", "maps", "d2", "7200"),
	))
	model := readyModel(NewModel(mgr))
	tab := &fakeTab{}
	other := &fakeTab{}
	model.SetTabs([]Tab{tab, other})

	_, cmd := model.Update(RequestLoadMsg{Range: testRange()})
	if !model.state.IsFetching() {
		t.Error("fetch should be in progress")
	}
	drain(model, cmd)

	if model.state.IsFetching() {
		t.Error("fetch should be finished")
	}
	if !model.state.Loaded() {
		t.Fatal("state should hold the loaded snapshot")
	}
	if got := len(model.state.Snapshot().Metrics); got != 1 {
		t.Errorf("got %d metrics, want 1", got)
	}

	var found bool
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationSuccess && n.Message == "Successfully loaded 2 records" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing success toast, got %+v", model.state.GetNotifications())
	}

	if !other.got(func(m tea.Msg) bool { _, ok := m.(DataUpdatedMsg); return ok }) {
		t.Error("inactive tabs should receive DataUpdatedMsg")
	}
	if !strings.Contains(model.renderFooter(), "2 of 2 records") {
		t.Error("footer should show the record count")
	}
}

func TestModel_LoadIgnoredWhileFetching(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody())
	model := readyModel(NewModel(mgr))
	model.state.SetLoading(ResourceFetch, true)

	_, cmd := model.Update(RequestLoadMsg{Range: testRange()})
	msgs := drain(model, cmd)

	for _, msg := range msgs {
		if _, ok := msg.(DataLoadedMsg); ok {
			t.Error("no fetch should be started")
		}
		if _, ok := msg.(LoadFailedMsg); ok {
			t.Error("no fetch should be started")
		}
	}
	var warned bool
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationWarning {
			warned = true
		}
	}
	if !warned {
		t.Error("a warning toast should explain the ignored load")
	}
}

func TestModel_LoadFailureKeepsPreviousData(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody(testRow("acme", "Google", "maps", "d1", "3600")))
	model := readyModel(NewModel(mgr))

	_, cmd := model.Update(RequestLoadMsg{Range: testRange()})
	drain(model, cmd)
	before := model.state.Snapshot().Table

	_, cmd = model.Update(LoadFailedMsg{Range: testRange(), Error: errors.New("connection refused")})
	drain(model, cmd)

	if model.state.Snapshot().Table != before {
		t.Error("failed load should keep the previous table")
	}

	var found bool
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationError && strings.Contains(n.Message, "Failed to load data: connection refused") {
			found = true
		}
	}
	if !found {
		t.Error("missing error toast")
	}
}

func TestModel_LoadNoDataWarns(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody())
	model := readyModel(NewModel(mgr))

	_, cmd := model.Update(RequestLoadMsg{Range: testRange()})
	drain(model, cmd)

	if model.state.Loaded() {
		t.Error("empty result should not load a table")
	}
	var found bool
	for _, n := range model.state.GetNotifications() {
		if n.Type == NotificationWarning && strings.HasPrefix(n.Message, "No data found for ") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing no-data warning, got %+v", model.state.GetNotifications())
	}
}

func TestModel_LoadCancelledIsSilent(t *testing.T) {
	model := readyModel(NewModel(nil))
	model.Update(LoadFailedMsg{Error: context.Canceled})
	if len(model.state.GetNotifications()) != 0 {
		t.Error("cancelled load should not raise a toast")
	}
}

func TestModel_LoadKeyUsesStateRange(t *testing.T) {
	model := readyModel(NewModel(nil))
	model.state.SetDateRange(testRange())

	_, cmd := model.Update(runeKey('r'))
	if cmd == nil {
		t.Fatal("r should request a load")
	}
	req, ok := cmd().(RequestLoadMsg)
	if !ok {
		t.Fatal("expected RequestLoadMsg")
	}
	if req.Range != testRange() {
		t.Errorf("Range = %v, want %v", req.Range, testRange())
	}
}

func TestModel_LoadOnStart(t *testing.T) {
	model := NewModel(nil)
	model.LoadOnStart(testRange())
	if model.state.DateRange() != testRange() {
		t.Error("LoadOnStart should set the range")
	}
	if model.initialLoad == nil {
		t.Error("LoadOnStart should schedule a fetch")
	}
}

func TestModel_FilterAndExport(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody(
		testRow("acme", "Google", "maps", "d1", "3600"),
		testRow("globex", "Samsung", "chat", "d2", "7200"),
	))
	model := readyModel(NewModel(mgr))

	_, cmd := model.Update(RequestExportMsg{})
	drain(model, cmd)
	if model.state.AnyLoading() {
		t.Error("export without data should not start")
	}

	_, cmd = model.Update(RequestLoadMsg{Range: testRange()})
	drain(model, cmd)

	_, cmd = model.Update(SetFilterMsg{Filter: filterPartners("acme")})
	drain(model, cmd)
	if got := len(model.state.Snapshot().Metrics); got != 1 {
		t.Errorf("filtered metrics = %d, want 1", got)
	}

	_, cmd = model.Update(RequestExportMsg{Dir: t.TempDir()})
	msgs := drain(model, cmd)

	var result *ExportResultMsg
	for _, msg := range msgs {
		if r, ok := msg.(ExportResultMsg); ok {
			result = &r
		}
	}
	if result == nil || result.Error != nil {
		t.Fatalf("export result = %+v", result)
	}
	if !strings.HasSuffix(result.Path, "app_metrics_20260310.csv") {
		t.Errorf("Path = %q", result.Path)
	}
	if model.state.AnyLoading() {
		t.Error("export should finish")
	}
}

func TestModel_ToggleDebug(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody())
	model := readyModel(NewModel(mgr))
	tab := &fakeTab{}
	model.SetTabs([]Tab{nil, nil, nil, nil, tab})

	_, cmd := model.Update(ToggleDebugMsg{})
	drain(model, cmd)

	if !model.state.Debug() || !mgr.Debug() {
		t.Error("debug should be enabled")
	}
	if !tab.got(func(m tea.Msg) bool { _, ok := m.(DebugToggledMsg); return ok }) {
		t.Error("all tabs should see DebugToggledMsg")
	}
	if !strings.Contains(model.renderFooter(), "DEBUG") {
		t.Error("footer should flag debug mode")
	}
}

func TestModel_ServiceEvents(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody())
	model := readyModel(NewModel(mgr))

	_, cmd := model.Update(ServiceEventMsg{Event: services.ConfigReloadedEvent{Path: ".env"}})
	drain(model, cmd)

	_, cmd = model.Update(ServiceEventMsg{Event: services.ConfigReloadedEvent{Path: ".env", Error: errors.New("parse")}})
	drain(model, cmd)

	_, cmd = model.Update(ServiceEventMsg{Event: services.ErrorEvent{Service: "clickhouse", Error: errors.New("down")}})
	drain(model, cmd)

	var info, reloadErr, svcErr bool
	for _, n := range model.state.GetNotifications() {
		switch {
		case n.Message == "Configuration reloaded":
			info = true
		case strings.HasPrefix(n.Message, "Failed to reload .env"):
			reloadErr = true
		case n.Message == "[clickhouse] down":
			svcErr = true
		}
	}
	if !info || !reloadErr || !svcErr {
		t.Errorf("notifications = %+v", model.state.GetNotifications())
	}
}

func TestModel_FooterStatus(t *testing.T) {
	mgr, _ := newTestManager(t, 200, testBody())
	model := NewModel(mgr)
	model.Update(tea.WindowSizeMsg{Width: 240, Height: 40})

	loadedAt := time.Now().Add(-3 * time.Minute)
	model.state.SetSnapshot(services.Snapshot{
		Table: &models.UsageTable{LoadedAt: loadedAt, Range: testRange(), Records: make([]models.UsageRecord, 2)},
	})

	footer := model.renderFooter()
	if !strings.Contains(footer, "3 minutes ago") {
		t.Errorf("footer should show the age of the data, got %q", footer)
	}
	if strings.Contains(footer, "working") {
		t.Error("idle footer should not show activity")
	}

	model.state.SetLoading(ResourceExport, true)
	if footer := model.renderFooter(); !strings.Contains(footer, "working") {
		t.Errorf("footer should show activity while exporting, got %q", footer)
	}
}
