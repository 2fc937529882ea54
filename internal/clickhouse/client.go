package clickhouse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// PreviewLimit caps the number of characters kept from a response body.
const PreviewLimit = 500

// Resolver supplies the endpoint and database for each request.
type Resolver interface {
	Endpoint() string
	DatabaseName() string
}

// Options configures a Client.
type Options struct {
	// HTTPClient overrides the default client; Timeout is ignored when set.
	HTTPClient *http.Client
	// Timeout bounds a whole request. Zero leaves it to the transport.
	Timeout time.Duration
	// Debug records Diagnostics for every response.
	Debug bool
}

// Diagnostics describes the last HTTP exchange for inspection.
type Diagnostics struct {
	At         time.Time
	Headers    http.Header
	Status     string
	Preview    string
	Endpoint   string
	Database   string
	Duration   time.Duration
	StatusCode int
	Err        error
}

// Client runs usage queries against ClickHouse over HTTP.
type Client struct {
	resolver   Resolver
	httpClient *http.Client
	debug      atomic.Bool

	mu   sync.RWMutex
	last *Diagnostics
}

// New creates a Client.
func New(resolver Resolver, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	c := &Client{resolver: resolver, httpClient: hc}
	c.debug.Store(opts.Debug)
	return c
}

// SetDebug toggles diagnostics recording.
func (c *Client) SetDebug(on bool) {
	c.debug.Store(on)
	if !on {
		c.mu.Lock()
		c.last = nil
		c.mu.Unlock()
	}
}

// Debug reports whether diagnostics are being recorded.
func (c *Client) Debug() bool {
	return c.debug.Load()
}

// LastDiagnostics returns the diagnostics of the most recent request made
// while debug was on, or nil.
func (c *Client) LastDiagnostics() *Diagnostics {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.last == nil {
		return nil
	}
	d := *c.last
	d.Headers = c.last.Headers.Clone()
	return &d
}

// Fetch loads all usage records whose last_time_used falls within r. It never
// retries. An empty result is returned as a table with no records.
func (c *Client) Fetch(ctx context.Context, r models.DateRange) (*models.UsageTable, error) {
	endpoint := c.resolver.Endpoint()
	database := c.resolver.DatabaseName()
	loadID := uuid.NewString()
	log := logger.With("load_id", loadID, "range", r.String())

	target, err := requestURL(endpoint, database)
	if err != nil {
		c.record(&Diagnostics{At: time.Now(), Endpoint: endpoint, Database: database, Err: err})
		log.Error("invalid clickhouse endpoint", "endpoint", endpoint, "error", err)
		return nil, err
	}

	query := BuildQuery(r)
	log.Debug("running clickhouse query", "endpoint", endpoint, "database", database)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(query))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	started := time.Now()
	diag := &Diagnostics{At: started, Endpoint: endpoint, Database: database}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrTransport, err)
		diag.Duration = time.Since(started)
		diag.Err = err
		c.record(diag)
		log.Error("clickhouse request failed", "error", err)
		return nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	diag.Duration = time.Since(started)
	diag.StatusCode = resp.StatusCode
	diag.Status = resp.Status
	diag.Headers = resp.Header.Clone()
	diag.Preview = preview(body)
	if err != nil {
		err = fmt.Errorf("%w: failed to read response: %w", ErrTransport, err)
		diag.Err = err
		c.record(diag)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := &StatusError{Code: resp.StatusCode, Status: resp.Status, Preview: strings.TrimSpace(diag.Preview)}
		diag.Err = err
		c.record(diag)
		log.Error("clickhouse returned error status", "status", resp.StatusCode)
		return nil, err
	}

	records, err := Parse(bytes.NewReader(body))
	if err != nil {
		diag.Err = err
		c.record(diag)
		log.Error("failed to parse clickhouse response", "error", err)
		return nil, err
	}
	c.record(diag)

	log.Info("fetched usage records", "rows", len(records), "duration", diag.Duration)
	return &models.UsageTable{
		LoadedAt: time.Now(),
		Range:    r,
		LoadID:   loadID,
		Records:  records,
	}, nil
}

func (c *Client) record(d *Diagnostics) {
	if !c.debug.Load() {
		return
	}
	c.mu.Lock()
	c.last = d
	c.mu.Unlock()
}

func requestURL(endpoint, database string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %w", ErrTransport, endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: invalid endpoint %q", ErrTransport, endpoint)
	}
	q := u.Query()
	q.Set("database", database)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// preview returns at most PreviewLimit characters of body.
func preview(body []byte) string {
	if utf8.RuneCount(body) <= PreviewLimit {
		return string(body)
	}
	n := 0
	for i := range string(body) {
		if n == PreviewLimit {
			return string(body[:i])
		}
		n++
	}
	return string(body)
}
