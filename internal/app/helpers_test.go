package app

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/clickhouse"
	"github.com/j-veylop/device-usage-dashboard/internal/config"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
	"github.com/j-veylop/device-usage-dashboard/internal/services"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)

func testRange() models.DateRange {
	return models.NewDateRange(testNow.AddDate(0, 0, -7), testNow)
}

func testRow(partner, brand, pkg, device, seconds string) string {
	return strings.Join([]string{
		partner, "tok", pkg,
		"2026-03-09 10:00:00", "", "", "", "",
		"", seconds, "",
		device, "Pixel", "Android", "p", brand,
	}, ",")
}

func testBody(rows ...string) string {
	return strings.Join(clickhouse.Schema, ",") + "\n" + strings.Join(rows, "\n") + "\n"
}

// newTestManager returns a manager backed by a server that always answers
// with status and body.
func newTestManager(t *testing.T, status int, body string) (*services.Manager, *httptest.Server) {
	t.Helper()
	t.Setenv(config.EnvClickHouseURL, "")
	t.Setenv(config.EnvClickHouseDatabase, "")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		ClickHouseURL:      srv.URL + "/",
		ClickHouseDatabase: "default",
		ExportDir:          t.TempDir(),
	}
	mgr, err := services.NewManager(cfg, services.WithClock(func() time.Time { return testNow }))
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })
	return mgr, srv
}

func filterPartners(partners ...string) models.Filter {
	return models.Filter{Partners: partners}
}
