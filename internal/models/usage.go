// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used for ranges and CLI flags.
const DateLayout = "2006-01-02"

// NullTime is a timestamp that may be missing.
type NullTime struct {
	Time  time.Time
	Valid bool
}

// NullFloat is a numeric value that may be missing.
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// UsageRecord is one partner/app/device/time-window observation.
type UsageRecord struct {
	LastTimeUsed                  NullTime
	LastTimeForegroundServiceUsed NullTime
	FirstTimeStamp                NullTime
	LastTimeStamp                 NullTime
	LastTimeVisible               NullTime

	TotalTimeForegroundServiceUsed NullFloat
	TotalTimeInForeground          NullFloat
	TotalTimeVisible               NullFloat

	Partner    string
	Token      string
	Package    string
	HardwareID string
	Model      string
	OS         string
	Product    string
	Brand      string
}

// HasDevice reports whether the record carries a usable hardware id.
func (r *UsageRecord) HasDevice() bool {
	return r.HardwareID != "" && r.HardwareID != `\N`
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange truncates both bounds to calendar dates.
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: truncateDay(start), End: truncateDay(end)}
}

// ParseDateRange parses two YYYY-MM-DD strings in the local time zone.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := time.ParseInLocation(DateLayout, start, time.Local)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid start date %q: %w", start, err)
	}
	e, err := time.ParseInLocation(DateLayout, end, time.Local)
	if err != nil {
		return DateRange{}, fmt.Errorf("invalid end date %q: %w", end, err)
	}
	return DateRange{Start: s, End: e}, nil
}

// DefaultDateRange returns the last seven days ending today.
func DefaultDateRange(now time.Time) DateRange {
	return NewDateRange(now.AddDate(0, 0, -7), now)
}

// Validate checks that start <= end and that end is not after today.
func (r DateRange) Validate(now time.Time) error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("start and end dates are required")
	}
	if r.Start.After(r.End) {
		return fmt.Errorf("start date %s is after end date %s", r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	if truncateDay(r.End).After(truncateDay(now)) {
		return fmt.Errorf("end date %s is in the future", r.End.Format(DateLayout))
	}
	return nil
}

// String returns "YYYY-MM-DD to YYYY-MM-DD".
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + " to " + r.End.Format(DateLayout)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// UsageTable is the result of one fetch, held for the interactive session.
type UsageTable struct {
	LoadedAt time.Time
	Range    DateRange
	LoadID   string
	Records  []UsageRecord
}

// Len returns the number of records, tolerating a nil table.
func (t *UsageTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Records)
}
