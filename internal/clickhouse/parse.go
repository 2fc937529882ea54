package clickhouse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// timestampLayouts are tried in order; ClickHouse writes the first one for
// DateTime and the second for DateTime64.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	models.DateLayout,
}

// Parse reads a CSVWithNames body into usage records. The header must match
// Schema exactly. Cells that fail to coerce become missing values; only
// structural problems fail the parse.
func Parse(r io.Reader) ([]models.UsageRecord, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty body", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}
	cr.FieldsPerRecord = len(Schema)

	var records []models.UsageRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		records = append(records, parseRow(row))
	}
	return records, nil
}

func validateHeader(header []string) error {
	got := make([]string, len(header))
	for i, h := range header {
		got[i] = strings.TrimSpace(h)
	}
	// Tolerate a UTF-8 byte order mark on the first column.
	if len(got) > 0 {
		got[0] = strings.TrimPrefix(got[0], "\ufeff")
	}

	if len(got) != len(Schema) {
		return &SchemaError{Got: got, Want: Schema}
	}
	for i := range Schema {
		if got[i] != Schema[i] {
			return &SchemaError{Got: got, Want: Schema}
		}
	}
	return nil
}

func parseRow(row []string) models.UsageRecord {
	return models.UsageRecord{
		Partner:    parseText(row[colPartner]),
		Token:      parseText(row[colToken]),
		Package:    parseText(row[colPackage]),
		HardwareID: parseText(row[colHardwareID]),
		Model:      parseText(row[colModel]),
		OS:         parseText(row[colOS]),
		Product:    parseText(row[colProduct]),
		Brand:      parseText(row[colBrand]),

		LastTimeUsed:                  parseTimestamp(row[colLastTimeUsed]),
		LastTimeForegroundServiceUsed: parseTimestamp(row[colLastTimeForegroundServiceUsed]),
		FirstTimeStamp:                parseTimestamp(row[colFirstTimeStamp]),
		LastTimeStamp:                 parseTimestamp(row[colLastTimeStamp]),
		LastTimeVisible:               parseTimestamp(row[colLastTimeVisible]),

		TotalTimeForegroundServiceUsed: parseDuration(row[colTotalTimeForegroundServiceUsed]),
		TotalTimeInForeground:          parseDuration(row[colTotalTimeInForeground]),
		TotalTimeVisible:               parseDuration(row[colTotalTimeVisible]),
	}
}

// parseText copies the cell so the record does not alias the reused row.
func parseText(s string) string {
	return strings.Clone(strings.TrimSpace(s))
}

func parseTimestamp(s string) models.NullTime {
	s = strings.TrimSpace(s)
	if s == "" || s == `\N` {
		return models.NullTime{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return models.NullTime{Time: t, Valid: true}
		}
	}
	return models.NullTime{}
}

func parseDuration(s string) models.NullFloat {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return models.NullFloat{}
	}
	return models.NullFloat{Float64: v, Valid: true}
}
