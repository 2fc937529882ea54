package models

import "fmt"

// AppMetric holds the derived usage metrics for one application package.
// Times are in hours, rounded to two decimals.
type AppMetric struct {
	// AvgTimePerDevice is nil when Reach is zero.
	AvgTimePerDevice *float64
	// AvgTimePerSession is nil when no row carried a foreground duration.
	AvgTimePerSession *float64
	Package           string
	TotalTime         float64
	Reach             int
}

// SortKey selects the metric used to rank AppMetric rows.
type SortKey int

const (
	// SortByReach ranks by unique devices.
	SortByReach SortKey = iota
	// SortByTotalTime ranks by total foreground hours.
	SortByTotalTime
	// SortByAvgTimePerDevice ranks by hours per device.
	SortByAvgTimePerDevice
	// SortByAvgTimePerSession ranks by hours per observation.
	SortByAvgTimePerSession
)

// SortKeys lists the keys in selector order.
var SortKeys = []SortKey{SortByReach, SortByTotalTime, SortByAvgTimePerDevice, SortByAvgTimePerSession}

// String returns the column name of the key.
func (k SortKey) String() string {
	switch k {
	case SortByReach:
		return "reach"
	case SortByTotalTime:
		return "total_time"
	case SortByAvgTimePerDevice:
		return "avg_time_per_device"
	case SortByAvgTimePerSession:
		return "avg_time_per_session"
	default:
		return "unknown"
	}
}

// Label returns the human readable name of the key.
func (k SortKey) Label() string {
	switch k {
	case SortByReach:
		return "Reach (Unique Devices)"
	case SortByTotalTime:
		return "Total Usage Time"
	case SortByAvgTimePerDevice:
		return "Average Time per Device"
	case SortByAvgTimePerSession:
		return "Average Time per Session"
	default:
		return "Unknown"
	}
}

// Next cycles to the next sort key.
func (k SortKey) Next() SortKey {
	return (k + 1) % SortKey(len(SortKeys))
}

// ParseSortKey maps a column name to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if k.String() == s {
			return k, nil
		}
	}
	return SortByReach, fmt.Errorf("unknown sort key %q", s)
}

// Filter restricts records by partner and brand. A nil set means all values;
// an empty non-nil set matches nothing.
type Filter struct {
	Partners []string
	Brands   []string
}

// Summary holds the headline scalars of the filtered table.
type Summary struct {
	// AvgForegroundHours is nil when no row has a valid duration.
	AvgForegroundHours *float64
	UniqueDevices      int
	UniquePackages     int
	ActiveDevices7d    int
}

// Distribution is one category count (brand, OS, model).
type Distribution struct {
	Label string
	Count int
}

// UsageBucket is the mean foreground time for one hour or weekday.
type UsageBucket struct {
	Label    string
	AvgHours float64
	Samples  int
}

// Insights highlights notable apps of a metrics table.
type Insights struct {
	MostPopular *AppMetric
	MostEngaged *AppMetric
	AppCount    int
}
