package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Field identifies a logical column of the contract table.
type Field string

const (
	FieldContractID Field = "contract_id"
	FieldMenu       Field = "menu"
	FieldProduct    Field = "product"
	FieldBranch     Field = "branch"
	FieldStatus     Field = "status"
	FieldCreatedAt  Field = "created_at"
)

// Fields lists every logical field in display order.
var Fields = []Field{
	FieldContractID,
	FieldCreatedAt,
	FieldProduct,
	FieldBranch,
	FieldMenu,
	FieldStatus,
}

// Value is a nullable cell. Valid is false for empty cells and absent columns.
type Value struct {
	String string
	Valid  bool
}

// NewValue trims s and treats the empty result as missing.
func NewValue(s string) Value {
	s = strings.TrimSpace(s)
	return Value{String: s, Valid: s != ""}
}

// Or returns the cell text, or fallback when the cell is missing.
func (v Value) Or(fallback string) string {
	if !v.Valid {
		return fallback
	}
	return v.String
}

// MarshalJSON renders missing cells as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.String)
}

// Timestamp is a nullable point in time produced by date coercion.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Before orders timestamps ascending with missing values last.
func (t Timestamp) Before(o Timestamp) bool {
	switch {
	case !t.Valid:
		return false
	case !o.Valid:
		return true
	default:
		return t.Time.Before(o.Time)
	}
}

// After reports whether t is strictly later than o. A valid timestamp is
// always later than a missing one.
func (t Timestamp) After(o Timestamp) bool {
	switch {
	case !t.Valid:
		return false
	case !o.Valid:
		return true
	default:
		return t.Time.After(o.Time)
	}
}

// MarshalJSON renders missing timestamps as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Record is one row of the uploaded table.
type Record struct {
	// Cells are aligned with Table.Headers.
	Cells []Value
	// CreatedAt holds the coerced created_at cell.
	CreatedAt Timestamp
}

// Table is the loaded, normalized dataset. Report sections only read it.
type Table struct {
	SourceName string
	Format     string
	Headers    []string
	// Columns maps each resolved logical field to its index in Headers.
	Columns map[Field]int
	Records []Record
	// CoercedDates counts created_at cells that could not be parsed.
	CoercedDates int
}

// Rows returns the number of data rows.
func (t *Table) Rows() int {
	return len(t.Records)
}

// Cols returns the number of source columns.
func (t *Table) Cols() int {
	return len(t.Headers)
}

// Has reports whether every field resolved to a source column.
func (t *Table) Has(fields ...Field) bool {
	return len(t.Missing(fields...)) == 0
}

// Missing returns the fields that did not resolve, preserving argument order.
func (t *Table) Missing(fields ...Field) []Field {
	var missing []Field
	for _, f := range fields {
		if _, ok := t.Columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

// Header returns the source header bound to f, or the field name itself.
func (t *Table) Header(f Field) string {
	if idx, ok := t.Columns[f]; ok && idx < len(t.Headers) {
		return t.Headers[idx]
	}
	return string(f)
}

// Get returns the cell of rec bound to f.
func (t *Table) Get(rec Record, f Field) Value {
	idx, ok := t.Columns[f]
	if !ok || idx >= len(rec.Cells) {
		return Value{}
	}
	return rec.Cells[idx]
}
