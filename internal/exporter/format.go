package exporter

import (
	"strconv"

	"contractreport/pkg/contracts/domain"
)

// TimestampLayout is used for every exported timestamp
const TimestampLayout = "2006-01-02 15:04:05"

// formatInt formats a count for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// formatValue renders a missing cell as an empty field
func formatValue(v domain.Value) string {
	return v.Or("")
}

// formatTimestamp renders a missing timestamp as an empty field
func formatTimestamp(t domain.Timestamp) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format(TimestampLayout)
}
