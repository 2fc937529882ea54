package app

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// loadDataCmd fetches r through the manager.
func loadDataCmd(ctx context.Context, mgr *services.Manager, r models.DateRange) tea.Cmd {
	return func() tea.Msg {
		table, err := mgr.Load(ctx, r)
		if err != nil {
			return LoadFailedMsg{Range: r, Error: err}
		}
		return DataLoadedMsg{Table: table}
	}
}

// exportCmd writes the current metrics table to dir.
func exportCmd(mgr *services.Manager, dir string) tea.Cmd {
	return func() tea.Msg {
		path, err := mgr.Export(dir)
		return ExportResultMsg{Path: path, Error: err}
	}
}

// toggleDebugCmd flips debug mode on the manager.
func toggleDebugCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		on := !mgr.Debug()
		mgr.SetDebug(on)
		return DebugToggledMsg{Enabled: on, Diagnostics: mgr.Diagnostics()}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

func notifyCmd(t NotificationType, message string, d time.Duration) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{Type: t, Message: message, Duration: d}
	}
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return notifyCmd(NotificationSuccess, message, DefaultNotificationDuration)
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return notifyCmd(NotificationError, message, LongNotificationDuration)
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return notifyCmd(NotificationWarning, message, DefaultNotificationDuration)
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return notifyCmd(NotificationInfo, message, QuickNotificationDuration)
}

func errorText(prefix string, err error) string {
	return fmt.Sprintf("%s: %v", prefix, err)
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Load returns a command that fetches r, or nil without a manager.
func (c *Commands) Load(ctx context.Context, r models.DateRange) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadDataCmd(ctx, c.manager, r)
}

// Export returns a command that exports the current metrics.
func (c *Commands) Export(dir string) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return exportCmd(c.manager, dir)
}

// ToggleDebug returns a command that flips debug mode.
func (c *Commands) ToggleDebug() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return toggleDebugCmd(c.manager)
}
