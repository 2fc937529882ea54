package metrics

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// ActiveWindow is how recently a device must have been used to count as
// active.
const ActiveWindow = 7 * 24 * time.Hour

// Summarize computes the headline scalars of records relative to now.
func Summarize(records []models.UsageRecord, now time.Time) models.Summary {
	devices := make(map[string]struct{})
	active := make(map[string]struct{})
	packages := make(map[string]struct{})
	cutoff := now.Add(-ActiveWindow)

	var sum float64
	var n int
	for i := range records {
		r := &records[i]
		packages[r.Package] = struct{}{}
		if r.TotalTimeInForeground.Valid {
			sum += r.TotalTimeInForeground.Float64
			n++
		}
		if !r.HasDevice() {
			continue
		}
		devices[r.HardwareID] = struct{}{}
		if r.LastTimeUsed.Valid && !r.LastTimeUsed.Time.Before(cutoff) {
			active[r.HardwareID] = struct{}{}
		}
	}

	s := models.Summary{
		UniqueDevices:   len(devices),
		UniquePackages:  len(packages),
		ActiveDevices7d: len(active),
	}
	if n > 0 {
		avg := toHours(sum / float64(n))
		s.AvgForegroundHours = &avg
	}
	return s
}

type bucketAcc struct {
	sum float64
	n   int
}

func (b bucketAcc) bucket(label string) models.UsageBucket {
	ub := models.UsageBucket{Label: label, Samples: b.n}
	if b.n > 0 {
		ub.AvgHours = toHours(b.sum / float64(b.n))
	}
	return ub
}

// HourlyUsage returns 24 buckets of mean foreground hours keyed by the hour
// of last_time_used. Records missing either value are skipped.
func HourlyUsage(records []models.UsageRecord) []models.UsageBucket {
	var acc [24]bucketAcc
	for i := range records {
		r := &records[i]
		if !r.LastTimeUsed.Valid || !r.TotalTimeInForeground.Valid {
			continue
		}
		h := r.LastTimeUsed.Time.Hour()
		acc[h].sum += r.TotalTimeInForeground.Float64
		acc[h].n++
	}

	out := make([]models.UsageBucket, 24)
	for h := range acc {
		out[h] = acc[h].bucket(fmt.Sprintf("%02d:00", h))
	}
	return out
}

// Weekdays lists the days of the week starting on Monday.
var Weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// WeeklyUsage returns 7 buckets, Monday through Sunday, of mean foreground
// hours keyed by the weekday of last_time_used.
func WeeklyUsage(records []models.UsageRecord) []models.UsageBucket {
	var acc [7]bucketAcc
	for i := range records {
		r := &records[i]
		if !r.LastTimeUsed.Valid || !r.TotalTimeInForeground.Valid {
			continue
		}
		wd := r.LastTimeUsed.Time.Weekday()
		acc[wd].sum += r.TotalTimeInForeground.Float64
		acc[wd].n++
	}

	return lo.Map(Weekdays, func(wd time.Weekday, _ int) models.UsageBucket {
		return acc[wd].bucket(wd.String())
	})
}

// Field names a categorical column of UsageRecord.
type Field int

// Categorical fields.
const (
	FieldBrand Field = iota
	FieldOS
	FieldModel
	FieldPartner
)

func (f Field) String() string {
	switch f {
	case FieldBrand:
		return "brand"
	case FieldOS:
		return "os"
	case FieldModel:
		return "model"
	case FieldPartner:
		return "partner"
	default:
		return "unknown"
	}
}

func (f Field) value(r models.UsageRecord) string {
	switch f {
	case FieldBrand:
		return r.Brand
	case FieldOS:
		return r.OS
	case FieldModel:
		return r.Model
	case FieldPartner:
		return r.Partner
	default:
		return ""
	}
}

// ValueCounts counts rows per value of field, ordered by count descending
// then label. A limit <= 0 returns all values.
func ValueCounts(records []models.UsageRecord, field Field, limit int) []models.Distribution {
	counts := lo.CountValuesBy(records, field.value)
	out := lo.MapToSlice(counts, func(label string, n int) models.Distribution {
		return models.Distribution{Label: label, Count: n}
	})
	slices.SortFunc(out, func(a, b models.Distribution) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Insights picks the app with the highest reach and the app with the highest
// time per device. The first row wins ties.
func Insights(metrics []models.AppMetric) models.Insights {
	ins := models.Insights{AppCount: len(metrics)}
	for i := range metrics {
		m := &metrics[i]
		if ins.MostPopular == nil || m.Reach > ins.MostPopular.Reach {
			ins.MostPopular = m
		}
		if m.AvgTimePerDevice == nil {
			continue
		}
		if ins.MostEngaged == nil || *m.AvgTimePerDevice > *ins.MostEngaged.AvgTimePerDevice {
			ins.MostEngaged = m
		}
	}
	return ins
}

// ColumnCount is the number of missing cells in one column.
type ColumnCount struct {
	Column  string
	Missing int
}

// MissingCounts reports, per column, how many records lack a value. Text
// columns count as missing when empty.
func MissingCounts(records []models.UsageRecord) []ColumnCount {
	checks := []struct {
		name    string
		missing func(r *models.UsageRecord) bool
	}{
		{"partner", func(r *models.UsageRecord) bool { return r.Partner == "" }},
		{"token", func(r *models.UsageRecord) bool { return r.Token == "" }},
		{"package", func(r *models.UsageRecord) bool { return r.Package == "" }},
		{"last_time_used", func(r *models.UsageRecord) bool { return !r.LastTimeUsed.Valid }},
		{"last_time_foreground_service_used", func(r *models.UsageRecord) bool { return !r.LastTimeForegroundServiceUsed.Valid }},
		{"first_time_stamp", func(r *models.UsageRecord) bool { return !r.FirstTimeStamp.Valid }},
		{"last_time_stamp", func(r *models.UsageRecord) bool { return !r.LastTimeStamp.Valid }},
		{"last_time_visible", func(r *models.UsageRecord) bool { return !r.LastTimeVisible.Valid }},
		{"total_time_foreground_service_used", func(r *models.UsageRecord) bool { return !r.TotalTimeForegroundServiceUsed.Valid }},
		{"total_time_in_foreground", func(r *models.UsageRecord) bool { return !r.TotalTimeInForeground.Valid }},
		{"total_time_visible", func(r *models.UsageRecord) bool { return !r.TotalTimeVisible.Valid }},
		{"hardware_id", func(r *models.UsageRecord) bool { return !r.HasDevice() }},
		{"model", func(r *models.UsageRecord) bool { return r.Model == "" }},
		{"os", func(r *models.UsageRecord) bool { return r.OS == "" }},
		{"product", func(r *models.UsageRecord) bool { return r.Product == "" }},
		{"brand", func(r *models.UsageRecord) bool { return r.Brand == "" }},
	}

	out := make([]ColumnCount, len(checks))
	for i, c := range checks {
		out[i].Column = c.name
		for j := range records {
			if c.missing(&records[j]) {
				out[i].Missing++
			}
		}
	}
	return out
}
