// Package clickhouse fetches device usage records over the ClickHouse HTTP
// interface.
package clickhouse

import (
	"fmt"
	"strings"

	"github.com/j-veylop/device-usage-dashboard/internal/models"
)

// Table is the ClickHouse table holding usage observations.
const Table = "device_usage_stat"

// Column indexes into Schema.
const (
	colPartner = iota
	colToken
	colPackage
	colLastTimeUsed
	colLastTimeForegroundServiceUsed
	colFirstTimeStamp
	colLastTimeStamp
	colLastTimeVisible
	colTotalTimeForegroundServiceUsed
	colTotalTimeInForeground
	colTotalTimeVisible
	colHardwareID
	colModel
	colOS
	colProduct
	colBrand
)

// Schema is the exact header the response must carry, in order.
var Schema = []string{
	"partner",
	"token",
	"package",
	"last_time_used",
	"last_time_foreground_service_used",
	"first_time_stamp",
	"last_time_stamp",
	"last_time_visible",
	"total_time_foreground_service_used",
	"total_time_in_foreground",
	"total_time_visible",
	"hardware_id",
	"model",
	"os",
	"product",
	"brand",
}

// deviceColumns are read out of the device map column.
var deviceColumns = map[string]bool{
	"hardware_id": true,
	"model":       true,
	"os":          true,
	"product":     true,
	"brand":       true,
}

// BuildQuery returns the SELECT for all records whose last_time_used falls
// on a calendar day within r, inclusive. The upper bound is the start of the
// day after r.End so that sub-second timestamps on the last day match.
func BuildQuery(r models.DateRange) string {
	cols := make([]string, len(Schema))
	for i, name := range Schema {
		if deviceColumns[name] {
			cols[i] = fmt.Sprintf("device['%s'] AS %s", name, name)
		} else {
			cols[i] = name
		}
	}

	var b strings.Builder
	b.WriteString("SELECT\n    ")
	b.WriteString(strings.Join(cols, ",\n    "))
	fmt.Fprintf(&b, "\nFROM %s\n", Table)
	fmt.Fprintf(&b, "WHERE last_time_used >= '%s 00:00:00' AND last_time_used < '%s 00:00:00'\n",
		r.Start.Format(models.DateLayout), r.End.AddDate(0, 0, 1).Format(models.DateLayout))
	b.WriteString("FORMAT CSVWithNames")
	return b.String()
}
