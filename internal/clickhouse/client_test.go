package clickhouse

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

type MockRoundTripper struct {
	RoundTripFunc func(req *http.Request) (*http.Response, error)
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.RoundTripFunc(req)
}

type staticResolver struct {
	endpoint string
	database string
}

func (s staticResolver) Endpoint() string     { return s.endpoint }
func (s staticResolver) DatabaseName() string { return s.database }

func testRange() models.DateRange {
	return models.NewDateRange(
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local),
		time.Date(2026, 3, 7, 0, 0, 0, 0, time.Local),
	)
}

func mockClient(fn func(req *http.Request) (*http.Response, error), debug bool) *Client {
	return New(staticResolver{endpoint: "http://clickhouse.test:8123/", database: "analytics"}, Options{
		HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: fn}},
		Debug:      debug,
	})
}

func TestClient_Fetch_Request(t *testing.T) {
	var gotBody, gotDatabase, gotMethod, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotDatabase = r.URL.Query().Get("database")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = io.WriteString(w, csvBody(row("com.example.a", "d1", "3600")))
	}))
	defer srv.Close()

	c := New(staticResolver{endpoint: srv.URL + "/", database: "analytics"}, Options{})
	table, err := c.Fetch(context.Background(), testRange())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q, want POST", gotMethod)
	}
	if gotDatabase != "analytics" {
		t.Errorf("database = %q, want analytics", gotDatabase)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
	if gotBody != BuildQuery(testRange()) {
		t.Errorf("body = %q, want query", gotBody)
	}

	if table.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", table.Len())
	}
	if table.LoadID == "" {
		t.Error("LoadID should be set")
	}
	if table.Range != testRange() {
		t.Errorf("Range = %v, want %v", table.Range, testRange())
	}
}

func TestClient_Fetch_ResolvesPerCall(t *testing.T) {
	var hosts []string
	fn := func(req *http.Request) (*http.Response, error) {
		hosts = append(hosts, req.URL.Host+"/"+req.URL.Query().Get("database"))
		return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(csvHeader + "\n"))}, nil
	}

	res := &mutableResolver{endpoint: "http://one:8123/", database: "a"}
	c := New(res, Options{HTTPClient: &http.Client{Transport: &MockRoundTripper{RoundTripFunc: fn}}})

	if _, err := c.Fetch(context.Background(), testRange()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	res.endpoint, res.database = "http://two:8123/", "b"
	if _, err := c.Fetch(context.Background(), testRange()); err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if len(hosts) != 2 || hosts[0] != "one:8123/a" || hosts[1] != "two:8123/b" {
		t.Errorf("requests went to %v", hosts)
	}
}

type mutableResolver struct {
	endpoint string
	database string
}

func (m *mutableResolver) Endpoint() string     { return m.endpoint }
func (m *mutableResolver) DatabaseName() string { return m.database }

func TestClient_Fetch_Failures(t *testing.T) {
	tests := []struct {
		name    string
		fn      func(req *http.Request) (*http.Response, error)
		wantErr error
	}{
		{
			name: "Transport",
			fn: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
			wantErr: ErrTransport,
		},
		{
			name: "Status",
			fn: func(req *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: 500,
					Status:     "500 Internal Server Error",
					Body:       io.NopCloser(strings.NewReader("Code: 60. DB::Exception: Table does not exist")),
				}, nil
			},
			wantErr: ErrHTTPStatus,
		},
		{
			name: "Malformed",
			fn: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader(""))}, nil
			},
			wantErr: ErrMalformed,
		},
		{
			name: "Schema",
			fn: func(req *http.Request) (*http.Response, error) {
				return &http.Response{StatusCode: 200, Body: io.NopCloser(strings.NewReader("a,b,c\n1,2,3\n"))}, nil
			},
			wantErr: ErrMalformed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := mockClient(tt.fn, false).Fetch(context.Background(), testRange())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.wantErr)
			}
			if table != nil {
				t.Error("failed fetch should return no table")
			}
		})
	}
}

func TestClient_Fetch_StatusErrorDetails(t *testing.T) {
	c := mockClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader("not found"))}, nil
	}, false)

	_, err := c.Fetch(context.Background(), testRange())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("error = %v, want *StatusError", err)
	}
	if statusErr.Code != 404 || statusErr.Preview != "not found" {
		t.Errorf("StatusError = %+v", statusErr)
	}
}

func TestClient_Fetch_InvalidEndpoint(t *testing.T) {
	c := New(staticResolver{endpoint: "not a url", database: "x"}, Options{})
	if _, err := c.Fetch(context.Background(), testRange()); !errors.Is(err, ErrTransport) {
		t.Errorf("Fetch() error = %v, want ErrTransport", err)
	}
}

func TestClient_DiagnosticsOnInvalidEndpoint(t *testing.T) {
	c := New(staticResolver{endpoint: "not a url", database: "analytics"}, Options{Debug: true})
	_, err := c.Fetch(context.Background(), testRange())
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Fetch() error = %v, want ErrTransport", err)
	}

	d := c.LastDiagnostics()
	if d == nil {
		t.Fatal("diagnostics not recorded for invalid endpoint")
	}
	if d.Endpoint != "not a url" || d.Database != "analytics" || !errors.Is(d.Err, ErrTransport) {
		t.Errorf("Diagnostics = %+v", d)
	}
	if d.At.IsZero() {
		t.Error("Diagnostics.At not set")
	}
}

func TestClient_Diagnostics(t *testing.T) {
	body := csvBody(row("com.example.a", "d1", "3600"))
	fn := func(req *http.Request) (*http.Response, error) {
		h := http.Header{}
		h.Set("X-ClickHouse-Summary", `{"read_rows":"1"}`)
		return &http.Response{StatusCode: 200, Status: "200 OK", Header: h, Body: io.NopCloser(strings.NewReader(body))}, nil
	}

	withDebug := mockClient(fn, true)
	withoutDebug := mockClient(fn, false)

	tableA, err := withDebug.Fetch(context.Background(), testRange())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	tableB, err := withoutDebug.Fetch(context.Background(), testRange())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if withoutDebug.LastDiagnostics() != nil {
		t.Error("diagnostics recorded without debug")
	}
	d := withDebug.LastDiagnostics()
	if d == nil {
		t.Fatal("diagnostics not recorded with debug")
	}
	if d.StatusCode != 200 || d.Headers.Get("X-ClickHouse-Summary") == "" || d.Preview != body {
		t.Errorf("Diagnostics = %+v", d)
	}

	// Debug mode must not change the data.
	if len(tableA.Records) != len(tableB.Records) || tableA.Records[0] != tableB.Records[0] {
		t.Error("debug mode altered returned records")
	}

	withDebug.SetDebug(false)
	if withDebug.LastDiagnostics() != nil {
		t.Error("SetDebug(false) should clear diagnostics")
	}
}

func TestClient_DiagnosticsOnFailure(t *testing.T) {
	c := mockClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: 502, Status: "502 Bad Gateway", Body: io.NopCloser(strings.NewReader("upstream"))}, nil
	}, true)

	if _, err := c.Fetch(context.Background(), testRange()); err == nil {
		t.Fatal("expected error")
	}
	d := c.LastDiagnostics()
	if d == nil || d.StatusCode != 502 || d.Err == nil {
		t.Errorf("Diagnostics = %+v", d)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", PreviewLimit+20)
	got := preview([]byte(long))
	if n := len([]rune(got)); n != PreviewLimit {
		t.Errorf("preview rune count = %d, want %d", n, PreviewLimit)
	}
	if got := preview([]byte("short")); got != "short" {
		t.Errorf("preview(short) = %q", got)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(staticResolver{endpoint: srv.URL, database: "d"}, Options{})
	if _, err := c.Fetch(ctx, testRange()); !errors.Is(err, ErrTransport) {
		t.Errorf("Fetch() error = %v, want ErrTransport", err)
	}
}
