// Package metrics derives per-app usage metrics and summary statistics from
// loaded usage records. Every function is pure; inputs are never mutated.
package metrics

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

const secondsPerHour = 3600

type packageGroup struct {
	devices  map[string]struct{}
	sum      float64
	withTime int
}

// Filter keeps records whose partner and brand are in the filter's sets.
// A nil set admits every value.
func Filter(records []models.UsageRecord, f models.Filter) []models.UsageRecord {
	partners := toSet(f.Partners)
	brands := toSet(f.Brands)
	return lo.Filter(records, func(r models.UsageRecord, _ int) bool {
		if partners != nil {
			if _, ok := partners[r.Partner]; !ok {
				return false
			}
		}
		if brands != nil {
			if _, ok := brands[r.Brand]; !ok {
				return false
			}
		}
		return true
	})
}

func toSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	return lo.Associate(values, func(v string) (string, struct{}) {
		return v, struct{}{}
	})
}

// Aggregate groups records by package and computes reach and foreground
// time metrics in hours. Duplicate rows add to the time sums; reach counts
// distinct devices only. The result is ordered by reach descending, then by
// package name.
func Aggregate(records []models.UsageRecord) []models.AppMetric {
	groups := make(map[string]*packageGroup)
	for i := range records {
		r := &records[i]
		g, ok := groups[r.Package]
		if !ok {
			g = &packageGroup{devices: make(map[string]struct{})}
			groups[r.Package] = g
		}
		if r.HasDevice() {
			g.devices[r.HardwareID] = struct{}{}
		}
		if r.TotalTimeInForeground.Valid {
			g.sum += r.TotalTimeInForeground.Float64
			g.withTime++
		}
	}

	out := make([]models.AppMetric, 0, len(groups))
	for pkg, g := range groups {
		m := models.AppMetric{
			Package:   pkg,
			Reach:     len(g.devices),
			TotalTime: toHours(g.sum),
		}
		if g.withTime > 0 {
			avg := toHours(g.sum / float64(g.withTime))
			m.AvgTimePerSession = &avg
		}
		if m.Reach > 0 {
			avg := toHours(g.sum / float64(m.Reach))
			m.AvgTimePerDevice = &avg
		}
		out = append(out, m)
	}

	slices.SortFunc(out, func(a, b models.AppMetric) int {
		if c := cmp.Compare(b.Reach, a.Reach); c != 0 {
			return c
		}
		return strings.Compare(a.Package, b.Package)
	})
	return out
}

// toHours converts seconds to hours rounded half-to-even at two decimals.
func toHours(seconds float64) float64 {
	return round2(seconds / secondsPerHour)
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).RoundBank(2).Float64()
	return f
}

// compareOptional orders descending with nil values last.
func compareOptional(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return cmp.Compare(*b, *a)
}

// Sort returns a copy of metrics ordered descending by key. Rows with an
// undefined value sort last. Ties keep their input order.
func Sort(metrics []models.AppMetric, key models.SortKey) []models.AppMetric {
	out := slices.Clone(metrics)
	slices.SortStableFunc(out, func(a, b models.AppMetric) int {
		switch key {
		case models.SortByTotalTime:
			return cmp.Compare(b.TotalTime, a.TotalTime)
		case models.SortByAvgTimePerSession:
			return compareOptional(a.AvgTimePerSession, b.AvgTimePerSession)
		case models.SortByAvgTimePerDevice:
			return compareOptional(a.AvgTimePerDevice, b.AvgTimePerDevice)
		default:
			return cmp.Compare(b.Reach, a.Reach)
		}
	})
	return out
}

// Search returns the metrics whose package contains term, ignoring case.
// An empty term matches everything.
func Search(metrics []models.AppMetric, term string) []models.AppMetric {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return slices.Clone(metrics)
	}
	return lo.Filter(metrics, func(m models.AppMetric, _ int) bool {
		return strings.Contains(strings.ToLower(m.Package), term)
	})
}

// Top returns at most the first n metrics.
func Top(metrics []models.AppMetric, n int) []models.AppMetric {
	if n < 0 || n >= len(metrics) {
		return slices.Clone(metrics)
	}
	return slices.Clone(metrics[:n])
}

// View applies search, sort and limit in the order the apps table uses.
func View(metrics []models.AppMetric, key models.SortKey, term string, limit int) []models.AppMetric {
	return Top(Sort(Search(metrics, term), key), limit)
}
