package app

import (
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/clickhouse"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// RequestLoadMsg asks the root model to fetch a date range.
type RequestLoadMsg struct {
	Range models.DateRange
}

// DataLoadedMsg carries a successfully fetched table.
type DataLoadedMsg struct {
	Table *models.UsageTable
}

// LoadFailedMsg reports a failed fetch. The session keeps its previous table.
type LoadFailedMsg struct {
	Error error
	Range models.DateRange
}

// DataUpdatedMsg tells tabs that State.Snapshot changed and views should be
// recomputed.
type DataUpdatedMsg struct{}

// SetFilterMsg replaces the partner/brand filter.
type SetFilterMsg struct {
	Filter models.Filter
}

// RequestExportMsg asks for the current metrics to be written to disk. An
// empty Dir uses the configured export directory.
type RequestExportMsg struct {
	Dir string
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Error error
	Path  string
}

// ToggleDebugMsg flips the debug mode.
type ToggleDebugMsg struct{}

// DebugToggledMsg reports the new debug state.
type DebugToggledMsg struct {
	Diagnostics *clickhouse.Diagnostics
	Enabled     bool
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Message  string
	Type     NotificationType
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// QuitMsg requests the application to quit.
type QuitMsg struct{}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}
