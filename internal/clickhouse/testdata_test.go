package clickhouse

import "strings"

var csvHeader = strings.Join(Schema, ",")

// csvBody builds a CSVWithNames body from data rows.
func csvBody(rows ...string) string {
	return csvHeader + "\n" + strings.Join(rows, "\n") + "\n"
}

// row builds a data row with the given package, device and foreground time.
func row(pkg, device, foreground string) string {
	return strings.Join([]string{
		"acme", "tok", pkg,
		"2026-03-05 10:15:00", "2026-03-05 10:00:00", "2026-03-05 09:00:00", "2026-03-05 11:00:00", "2026-03-05 10:15:00",
		"12", foreground, "30",
		device, "Pixel 8", "Android 14", "shiba", "Google",
	}, ",")
}
