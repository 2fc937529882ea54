// Package app provides the main Bubble Tea application model and state management.
package app

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/device-usage-dashboard/internal/clickhouse"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
)

// NotificationType defines the type of notification.
type NotificationType int

const (
	// NotificationSuccess represents a success notification.
	NotificationSuccess NotificationType = iota
	// NotificationError represents an error notification.
	NotificationError
	// NotificationWarning represents a warning notification.
	NotificationWarning
	// NotificationInfo represents an informational notification.
	NotificationInfo
	// NotificationLoading represents a loading notification with spinner.
	NotificationLoading
)

const (
	// LoadingNotificationID is the fixed ID for loading notifications.
	LoadingNotificationID = "__loading__"

	maxNotifications = 10
)

// Loadable resources.
const (
	ResourceFetch  = "fetch"
	ResourceExport = "export"
)

// String returns the string representation of a NotificationType.
func (n NotificationType) String() string {
	switch n {
	case NotificationSuccess:
		return "success"
	case NotificationError:
		return "error"
	case NotificationWarning:
		return "warning"
	case NotificationInfo:
		return "info"
	case NotificationLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Notification represents a user-facing notification message.
type Notification struct {
	CreatedAt time.Time
	ID        string
	Message   string
	Type      NotificationType
	Duration  time.Duration
}

// IsExpired returns true if the notification has expired.
func (n *Notification) IsExpired() bool {
	if n.Duration <= 0 {
		return false
	}
	return time.Since(n.CreatedAt) > n.Duration
}

// LoadingState tracks in-flight operations.
type LoadingState struct {
	Fetch  bool
	Export bool
}

// State is shared between the root model and the tabs. The root model is the
// only writer; tabs read it while rendering.
type State struct {
	lastUpdated time.Time
	diagnostics *clickhouse.Diagnostics
	snapshot    services.Snapshot
	dateRange   models.DateRange
	endpoint    string
	database    string

	notifications []Notification
	Loading       LoadingState

	mu    sync.RWMutex
	debug bool
}

// NewState creates a state with the default date range ending today.
func NewState() *State {
	return &State{
		dateRange:     models.DefaultDateRange(time.Now()),
		notifications: make([]Notification, 0),
	}
}

// SetLoading sets the loading state for a specific resource.
func (s *State) SetLoading(resource string, loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch resource {
	case ResourceFetch:
		s.Loading.Fetch = loading
	case ResourceExport:
		s.Loading.Export = loading
	}
}

// AnyLoading returns true if any resource is currently loading.
func (s *State) AnyLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Fetch || s.Loading.Export
}

// IsFetching reports whether a ClickHouse fetch is in flight.
func (s *State) IsFetching() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Loading.Fetch
}

// GetLoadingResources returns a list of currently loading resources.
func (s *State) GetLoadingResources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var resources []string
	if s.Loading.Fetch {
		resources = append(resources, ResourceFetch)
	}
	if s.Loading.Export {
		resources = append(resources, ResourceExport)
	}
	return resources
}

// SetSnapshot stores the derived view of the session.
func (s *State) SetSnapshot(snap services.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	if snap.Table != nil {
		s.lastUpdated = snap.Table.LoadedAt
		s.dateRange = snap.Table.Range
	}
}

// Snapshot returns the last stored snapshot.
func (s *State) Snapshot() services.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Loaded reports whether a table has been loaded.
func (s *State) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Loaded()
}

// SetDateRange records the range the user is editing or last loaded.
func (s *State) SetDateRange(r models.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dateRange = r
}

// DateRange returns the current date range.
func (s *State) DateRange() models.DateRange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dateRange
}

// SetDebug records the debug flag and the latest diagnostics.
func (s *State) SetDebug(on bool, diag *clickhouse.Diagnostics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.debug = on
	s.diagnostics = diag
}

// Debug reports whether debug mode is on.
func (s *State) Debug() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.debug
}

// Diagnostics returns the last recorded diagnostics, or nil.
func (s *State) Diagnostics() *clickhouse.Diagnostics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.diagnostics
}

// SetEndpoint records the resolved connection target.
func (s *State) SetEndpoint(url, database string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = url
	s.database = database
}

// Endpoint returns the resolved URL and database.
func (s *State) Endpoint() (url, database string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint, s.database
}

// AddNotification adds a new notification and returns its ID.
func (s *State) AddNotification(notifType NotificationType, message string, duration time.Duration) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()

	s.notifications = append(s.notifications, Notification{
		ID:        id,
		Type:      notifType,
		Message:   message,
		CreatedAt: time.Now(),
		Duration:  duration,
	})

	if len(s.notifications) > maxNotifications {
		s.notifications = s.notifications[len(s.notifications)-maxNotifications:]
	}

	return id
}

// RemoveNotification removes a notification by ID.
func (s *State) RemoveNotification(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			return
		}
	}
}

// ClearExpiredNotifications removes all expired notifications.
func (s *State) ClearExpiredNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	s.notifications = active
}

// GetNotifications returns a copy of all active notifications.
func (s *State) GetNotifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := make([]Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if !n.IsExpired() {
			active = append(active, n)
		}
	}
	return active
}

// SetLoadingNotification sets a loading notification message.
func (s *State) SetLoadingNotification(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, n := range s.notifications {
		if n.ID == LoadingNotificationID {
			s.notifications[i].Message = message
			return
		}
	}

	s.notifications = append(s.notifications, Notification{
		ID:        LoadingNotificationID,
		Type:      NotificationLoading,
		Message:   message,
		CreatedAt: time.Now(),
	})
}

// ClearLoadingNotification removes the loading notification.
func (s *State) ClearLoadingNotification() {
	s.RemoveNotification(LoadingNotificationID)
}

// LastUpdated returns the load time of the current table.
func (s *State) LastUpdated() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastUpdated
}

// TimeSinceUpdate returns the duration since the last load.
func (s *State) TimeSinceUpdate() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastUpdated.IsZero() {
		return 0
	}
	return time.Since(s.lastUpdated)
}
