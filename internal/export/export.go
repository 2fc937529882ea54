// Package export writes and reads app metrics tables as CSV.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/logger"
	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// Header is the column order of an exported table.
var Header = []string{"package", "reach", "total_time", "avg_time_per_session", "avg_time_per_device"}

// Filename returns the dated export file name for now.
func Filename(now time.Time) string {
	return "app_metrics_" + now.Format("20060102") + ".csv"
}

// Write serialises metrics. Hours are written with two decimals and an
// undefined average as an empty cell.
func Write(w io.Writer, metrics []models.AppMetric) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, m := range metrics {
		row := []string{
			m.Package,
			strconv.Itoa(m.Reach),
			formatHours(m.TotalTime),
			formatOptionalHours(m.AvgTimePerSession),
			formatOptionalHours(m.AvgTimePerDevice),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", m.Package, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatHours(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptionalHours(v *float64) string {
	if v == nil {
		return ""
	}
	return formatHours(*v)
}

// Read parses a table produced by Write.
func Read(r io.Reader) ([]models.AppMetric, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	for i, h := range Header {
		if header[i] != h {
			return nil, fmt.Errorf("unexpected column %d: %q, want %q", i+1, header[i], h)
		}
	}

	var out []models.AppMetric
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		m, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func parseRow(row []string) (models.AppMetric, error) {
	m := models.AppMetric{Package: row[0]}
	var err error
	if m.Reach, err = strconv.Atoi(row[1]); err != nil {
		return m, fmt.Errorf("invalid reach %q: %w", row[1], err)
	}
	if m.TotalTime, err = strconv.ParseFloat(row[2], 64); err != nil {
		return m, fmt.Errorf("invalid total_time %q: %w", row[2], err)
	}
	if m.AvgTimePerSession, err = parseOptionalHours(row[3]); err != nil {
		return m, fmt.Errorf("invalid avg_time_per_session %q: %w", row[3], err)
	}
	if m.AvgTimePerDevice, err = parseOptionalHours(row[4]); err != nil {
		return m, fmt.Errorf("invalid avg_time_per_device %q: %w", row[4], err)
	}
	return m, nil
}

func parseOptionalHours(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Save writes metrics to dir under the dated file name and returns the path.
func Save(dir string, now time.Time, metrics []models.AppMetric) (path string, err error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path = filepath.Join(dir, Filename(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			logger.Error("failed to close export file", "error", closeErr)
			if err == nil {
				err = closeErr
			}
		}
	}()

	if err := Write(f, metrics); err != nil {
		return "", err
	}
	logger.Info("exported app metrics", "path", path, "rows", len(metrics))
	return path, nil
}
