package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

func rec(partner, brand, pkg, device string, seconds float64) models.UsageRecord {
	return models.UsageRecord{
		Partner:               partner,
		Brand:                 brand,
		Package:               pkg,
		HardwareID:            device,
		TotalTimeInForeground: models.NullFloat{Float64: seconds, Valid: true},
	}
}

func missingTime(r models.UsageRecord) models.UsageRecord {
	r.TotalTimeInForeground = models.NullFloat{}
	return r
}

func byPackage(metrics []models.AppMetric) map[string]models.AppMetric {
	out := make(map[string]models.AppMetric, len(metrics))
	for _, m := range metrics {
		out[m.Package] = m
	}
	return out
}

func TestAggregate_Example(t *testing.T) {
	got := Aggregate([]models.UsageRecord{
		rec("p", "b", "A", "d1", 3600),
		rec("p", "b", "A", "d2", 7200),
	})
	if len(got) != 1 {
		t.Fatalf("got %d metrics, want 1", len(got))
	}
	m := got[0]
	if m.Reach != 2 {
		t.Errorf("Reach = %d, want 2", m.Reach)
	}
	if m.TotalTime != 3.0 {
		t.Errorf("TotalTime = %v, want 3.0", m.TotalTime)
	}
	if m.AvgTimePerSession == nil || *m.AvgTimePerSession != 1.5 {
		t.Errorf("AvgTimePerSession = %v, want 1.5", m.AvgTimePerSession)
	}
	if m.AvgTimePerDevice == nil || *m.AvgTimePerDevice != 1.5 {
		t.Errorf("AvgTimePerDevice = %v, want 1.5", m.AvgTimePerDevice)
	}
}

func TestAggregate_MissingDurationExcludedButCountsReach(t *testing.T) {
	got := Aggregate([]models.UsageRecord{
		rec("p", "b", "A", "d1", 3600),
		missingTime(rec("p", "b", "A", "d2", 0)),
	})
	m := got[0]
	if m.Reach != 2 {
		t.Errorf("Reach = %d, want 2", m.Reach)
	}
	if m.TotalTime != 1.0 {
		t.Errorf("TotalTime = %v, want 1.0", m.TotalTime)
	}
	if m.AvgTimePerSession == nil || *m.AvgTimePerSession != 1.0 {
		t.Errorf("AvgTimePerSession = %v, want 1.0 (missing excluded from mean)", m.AvgTimePerSession)
	}
	if *m.AvgTimePerDevice != 0.5 {
		t.Errorf("AvgTimePerDevice = %v, want 0.5", *m.AvgTimePerDevice)
	}
}

func TestAggregate_ZeroReach(t *testing.T) {
	got := Aggregate([]models.UsageRecord{
		rec("p", "b", "A", "", 3600),
		rec("p", "b", "A", `\N`, 3600),
	})
	m := got[0]
	if m.Reach != 0 {
		t.Errorf("Reach = %d, want 0", m.Reach)
	}
	if m.AvgTimePerDevice != nil {
		t.Errorf("AvgTimePerDevice = %v, want nil", *m.AvgTimePerDevice)
	}
	if m.TotalTime != 2.0 {
		t.Errorf("TotalTime = %v, want 2.0", m.TotalTime)
	}
}

func TestAggregate_AllDurationsMissing(t *testing.T) {
	m := Aggregate([]models.UsageRecord{missingTime(rec("p", "b", "A", "d1", 0))})[0]
	if m.TotalTime != 0 {
		t.Errorf("TotalTime = %v, want 0", m.TotalTime)
	}
	if m.AvgTimePerSession != nil {
		t.Errorf("AvgTimePerSession = %v, want nil", *m.AvgTimePerSession)
	}
	if m.AvgTimePerDevice == nil || *m.AvgTimePerDevice != 0 {
		t.Errorf("AvgTimePerDevice = %v, want 0", m.AvgTimePerDevice)
	}
}

func TestAggregate_DuplicatesInflateSum(t *testing.T) {
	m := Aggregate([]models.UsageRecord{
		rec("p", "b", "A", "d1", 3600),
		rec("p", "b", "A", "d1", 3600),
	})[0]
	if m.Reach != 1 {
		t.Errorf("Reach = %d, want 1", m.Reach)
	}
	if m.TotalTime != 2.0 {
		t.Errorf("TotalTime = %v, want 2.0", m.TotalTime)
	}
}

func TestAggregate_OrderAndRounding(t *testing.T) {
	got := Aggregate([]models.UsageRecord{
		rec("p", "b", "B", "d1", 100),
		rec("p", "b", "C", "d1", 100),
		rec("p", "b", "A", "d1", 1000),
		rec("p", "b", "A", "d2", 1000),
	})
	wantOrder := []string{"A", "B", "C"}
	for i, pkg := range wantOrder {
		if got[i].Package != pkg {
			t.Errorf("got[%d].Package = %q, want %q", i, got[i].Package, pkg)
		}
	}
	// 2000s = 0.5555... h
	if got[0].TotalTime != 0.56 {
		t.Errorf("TotalTime = %v, want 0.56", got[0].TotalTime)
	}
	// 100s = 0.02777... h
	if got[1].TotalTime != 0.03 {
		t.Errorf("TotalTime = %v, want 0.03", got[1].TotalTime)
	}
}

func TestAggregate_Empty(t *testing.T) {
	if got := Aggregate(nil); len(got) != 0 {
		t.Errorf("Aggregate(nil) = %v, want empty", got)
	}
}

// sample is a table exercising several partners, brands and devices.
func sample() []models.UsageRecord {
	return []models.UsageRecord{
		rec("acme", "Google", "maps", "d1", 1800),
		rec("acme", "Google", "maps", "d2", 5400),
		rec("acme", "Samsung", "maps", "d3", 900),
		rec("globex", "Samsung", "maps", "d4", 3600),
		rec("globex", "Samsung", "mail", "d4", 7200),
		rec("globex", "Google", "mail", "d1", 60),
		rec("acme", "Google", "chat", "d2", 12345),
		missingTime(rec("globex", "Xiaomi", "chat", "d5", 0)),
		rec("globex", "Xiaomi", "chat", "", 400),
	}
}

func TestAggregate_ReachBoundedByDistinctDevices(t *testing.T) {
	records := sample()
	distinct := Summarize(records, time.Now()).UniqueDevices
	for _, m := range Aggregate(records) {
		if m.Reach > distinct {
			t.Errorf("%s reach %d exceeds distinct devices %d", m.Package, m.Reach, distinct)
		}
	}
}

func TestAggregate_AvgPerDeviceConsistent(t *testing.T) {
	for _, m := range Aggregate(sample()) {
		if m.Reach == 0 {
			continue
		}
		want := m.TotalTime / float64(m.Reach)
		if math.Abs(*m.AvgTimePerDevice-want) > 0.01 {
			t.Errorf("%s: avg per device %v, total/reach %v", m.Package, *m.AvgTimePerDevice, want)
		}
	}
}

func TestFilter_ReachNeverGrows(t *testing.T) {
	records := sample()
	full := byPackage(Aggregate(records))

	filters := []models.Filter{
		{Partners: []string{"acme"}},
		{Brands: []string{"Samsung"}},
		{Partners: []string{"globex"}, Brands: []string{"Google", "Xiaomi"}},
	}
	for _, f := range filters {
		for _, m := range Aggregate(Filter(records, f)) {
			if m.Reach > full[m.Package].Reach {
				t.Errorf("filter %+v: %s reach %d > unfiltered %d", f, m.Package, m.Reach, full[m.Package].Reach)
			}
		}
	}
}

func TestFilter(t *testing.T) {
	records := sample()

	tests := []struct {
		name   string
		filter models.Filter
		want   int
	}{
		{"AllNil", models.Filter{}, len(records)},
		{"Partner", models.Filter{Partners: []string{"acme"}}, 4},
		{"Brand", models.Filter{Brands: []string{"Xiaomi"}}, 2},
		{"Both", models.Filter{Partners: []string{"globex"}, Brands: []string{"Samsung"}}, 2},
		{"EmptySetSelectsNothing", models.Filter{Partners: []string{}}, 0},
		{"UnknownValue", models.Filter{Brands: []string{"Nokia"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := len(Filter(records, tt.filter)); got != tt.want {
				t.Errorf("len(Filter()) = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestFilter_DropsPackagesWithoutRows(t *testing.T) {
	got := byPackage(Aggregate(Filter(sample(), models.Filter{Brands: []string{"Xiaomi"}})))
	if _, ok := got["maps"]; ok {
		t.Error("package without matching rows should not appear")
	}
	if _, ok := got["chat"]; !ok {
		t.Error("chat should appear")
	}
}

func ptr(f float64) *float64 { return &f }

func TestSort(t *testing.T) {
	metrics := []models.AppMetric{
		{Package: "a", Reach: 1, TotalTime: 5, AvgTimePerSession: ptr(1), AvgTimePerDevice: nil},
		{Package: "b", Reach: 3, TotalTime: 1, AvgTimePerSession: ptr(3), AvgTimePerDevice: ptr(0.3)},
		{Package: "c", Reach: 2, TotalTime: 3, AvgTimePerSession: ptr(2), AvgTimePerDevice: ptr(1.5)},
		{Package: "d", Reach: 0, TotalTime: 0, AvgTimePerSession: nil, AvgTimePerDevice: nil},
	}

	tests := []struct {
		key  models.SortKey
		want []string
	}{
		{models.SortByReach, []string{"b", "c", "a", "d"}},
		{models.SortByTotalTime, []string{"a", "c", "b", "d"}},
		{models.SortByAvgTimePerSession, []string{"b", "c", "a", "d"}},
		{models.SortByAvgTimePerDevice, []string{"c", "b", "a", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.key.String(), func(t *testing.T) {
			got := Sort(metrics, tt.key)
			for i, pkg := range tt.want {
				if got[i].Package != pkg {
					t.Errorf("got[%d] = %q, want %q", i, got[i].Package, pkg)
				}
			}
		})
	}

	if metrics[0].Package != "a" || metrics[1].Package != "b" {
		t.Error("Sort mutated its input")
	}
}

func TestSearch(t *testing.T) {
	metrics := []models.AppMetric{
		{Package: "com.Google.Maps"},
		{Package: "com.example.mail"},
		{Package: "org.maps.offline"},
	}

	tests := []struct {
		term string
		want int
	}{
		{"", 3},
		{"maps", 2},
		{"MAPS", 2},
		{"  mail ", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		if got := len(Search(metrics, tt.term)); got != tt.want {
			t.Errorf("Search(%q) returned %d, want %d", tt.term, got, tt.want)
		}
	}
}

func TestTopAndView(t *testing.T) {
	metrics := Aggregate(sample())
	if got := len(Top(metrics, 2)); got != 2 {
		t.Errorf("Top(2) = %d rows", got)
	}
	if got := len(Top(metrics, 100)); got != len(metrics) {
		t.Errorf("Top(100) = %d rows, want %d", got, len(metrics))
	}

	view := View(metrics, models.SortByTotalTime, "MA", 20)
	if len(view) != 2 {
		t.Fatalf("View() = %d rows, want 2", len(view))
	}
	if view[0].TotalTime < view[1].TotalTime {
		t.Error("View() not sorted by total time")
	}
}
