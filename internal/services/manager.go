// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gen2brain/beeep"

	"github.com/j-veylop/device-usage-dashboard/internal/clickhouse"
	"github.com/j-veylop/device-usage-dashboard/internal/config"
	"github.com/j-veylop/device-usage-dashboard/internal/export"
	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/metrics"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/session"
)

var (
	// ErrInvalidRange is returned by Load for a range that cannot be queried.
	ErrInvalidRange = errors.New("invalid date range")
	// ErrNoData is returned by Load when the query matched no rows.
	ErrNoData = errors.New("no data for range")
	// ErrNotLoaded is returned when an operation needs a loaded table.
	ErrNotLoaded = errors.New("no data loaded")
)

type (
	// ConfigReloadedEvent is emitted after the watched .env file is reloaded.
	ConfigReloadedEvent struct {
		Error error
		Path  string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Error   error
		Service string
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (ConfigReloadedEvent) isServiceEvent() {}
func (ErrorEvent) isServiceEvent()          {}

// Snapshot is the derived view of the session under its current filter.
type Snapshot struct {
	Table   *models.UsageTable
	Filter  models.Filter
	Options session.Options
	Records []models.UsageRecord
	Metrics []models.AppMetric
	Summary models.Summary
}

// Loaded reports whether the snapshot carries a table.
func (s Snapshot) Loaded() bool {
	return s.Table != nil
}

// Option customises a Manager.
type Option func(*Manager)

// WithHTTPClient sets the HTTP client used for queries.
func WithHTTPClient(hc *http.Client) Option {
	return func(m *Manager) { m.httpClient = hc }
}

// WithClock sets the time source used for validation and summaries.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithNotifier replaces the desktop notification function.
func WithNotifier(fn func(title, message string) error) Option {
	return func(m *Manager) { m.notify = fn }
}

// Manager orchestrates the query client, the session and config watching.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	resolver    *config.Resolver
	client      *clickhouse.Client
	session     *session.Session
	watcher     *config.Watcher
	httpClient  *http.Client
	now         func() time.Time
	notify      func(title, message string) error
	subscribers []chan<- ServiceEvent
	closeOnce   sync.Once
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config, opts ...Option) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	m := &Manager{
		cfg:     cfg,
		session: session.New(),
		now:     time.Now,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	m.resolver = config.NewResolver(cfg)
	m.client = clickhouse.New(m.resolver, clickhouse.Options{
		HTTPClient: m.httpClient,
		Timeout:    cfg.HTTPTimeout,
		Debug:      cfg.Debug,
	})

	if cfg.WatchEnv && cfg.EnvFile != "" {
		w, err := config.WatchEnvFile(cfg.EnvFile, m.onEnvReload)
		if err != nil {
			logger.Warn("env file watching disabled", "path", cfg.EnvFile, "error", err)
		} else {
			m.watcher = w
			logger.Debug("watching env file", "path", w.Path())
		}
	}

	return m, nil
}

func (m *Manager) onEnvReload(err error) {
	m.broadcast(ConfigReloadedEvent{Path: m.cfg.EnvFile, Error: err})
}

// Load fetches the usage table for r. On success with at least one row the
// session table is replaced; on any failure it is left as it was.
func (m *Manager) Load(ctx context.Context, r models.DateRange) (*models.UsageTable, error) {
	if err := r.Validate(m.now()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRange, err)
	}

	table, err := m.client.Fetch(ctx, r)
	if err != nil {
		m.notifyLoad("Failed to load data", err.Error())
		return nil, err
	}
	if table.Len() == 0 {
		m.notifyLoad("Failed to load data", "No records for "+r.String())
		return nil, fmt.Errorf("%w %s", ErrNoData, r.String())
	}

	m.session.Replace(table)
	m.notifyLoad("Data loaded", fmt.Sprintf("Successfully loaded %s records", humanize.Comma(int64(table.Len()))))
	return table, nil
}

func (m *Manager) notifyLoad(title, message string) {
	if !m.cfg.NotifyOnLoad || m.notify == nil {
		return
	}
	if err := m.notify(title, message); err != nil {
		logger.Warn("desktop notification failed", "error", err)
	}
}

// Current derives a Snapshot from the held table and filter.
func (m *Manager) Current() Snapshot {
	v := m.session.View()
	table := v.Table
	snap := Snapshot{
		Table:   table,
		Filter:  v.Filter,
		Options: v.Options,
	}
	if table == nil {
		return snap
	}
	snap.Records = metrics.Filter(table.Records, snap.Filter)
	snap.Metrics = metrics.Aggregate(snap.Records)
	snap.Summary = metrics.Summarize(snap.Records, m.now())
	return snap
}

// SetFilter changes the partner and brand filter.
func (m *Manager) SetFilter(f models.Filter) {
	m.session.SetFilter(f)
}

// Filter returns the active filter.
func (m *Manager) Filter() models.Filter {
	return m.session.Filter()
}

// Export writes the current app metrics to a dated CSV file in dir, or in
// the configured export directory when dir is empty.
func (m *Manager) Export(dir string) (string, error) {
	snap := m.Current()
	if !snap.Loaded() {
		return "", ErrNotLoaded
	}
	if dir == "" {
		dir = m.cfg.ExportDir
	}
	return export.Save(dir, m.now(), snap.Metrics)
}

// SetDebug toggles response diagnostics.
func (m *Manager) SetDebug(on bool) {
	m.client.SetDebug(on)
}

// Debug reports whether response diagnostics are recorded.
func (m *Manager) Debug() bool {
	return m.client.Debug()
}

// Diagnostics returns the last response diagnostics, or nil.
func (m *Manager) Diagnostics() *clickhouse.Diagnostics {
	return m.client.LastDiagnostics()
}

// Endpoint returns the endpoint and database the next query will use.
func (m *Manager) Endpoint() (url, database string) {
	return m.resolver.Endpoint(), m.resolver.DatabaseName()
}

// Config returns the loaded configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Session returns the session.
func (m *Manager) Session() *session.Session {
	return m.session
}

// Watching reports whether the .env file is being watched.
func (m *Manager) Watching() bool {
	return m.watcher != nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, WaitForEvent(ch)
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return event
	}
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Close stops the watcher and closes all subscriber channels.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.watcher != nil {
			err = m.watcher.Close()
		}

		m.mu.Lock()
		for _, sub := range m.subscribers {
			close(sub)
		}
		m.subscribers = nil
		m.mu.Unlock()
	})
	return err
}
