package dataprocessing

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"contractreport/pkg/contracts/domain"
)

// Serial numbers outside this range are not treated as Excel dates.
const (
	minExcelSerial = 1.0
	maxExcelSerial = 2958465.0 // 9999-12-31
)

// ParseTimestamp parses raw with the first matching layout. When
// allowSerial is set, a bare number is read as an Excel date serial.
func ParseTimestamp(raw string, layouts []string, allowSerial bool) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}

	if allowSerial {
		if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// normalizeCreatedAt coerces the created_at column in place on a freshly
// built table and returns how many non-empty cells became missing.
func normalizeCreatedAt(table *domain.Table, layouts []string, allowSerial bool) int {
	if !table.Has(domain.FieldCreatedAt) {
		return 0
	}

	coerced := 0
	for i := range table.Records {
		raw := table.Get(table.Records[i], domain.FieldCreatedAt)
		if !raw.Valid {
			continue
		}
		t, ok := ParseTimestamp(raw.String, layouts, allowSerial)
		if !ok {
			coerced++
			continue
		}
		table.Records[i].CreatedAt = domain.Timestamp{Time: t, Valid: true}
	}
	return coerced
}
