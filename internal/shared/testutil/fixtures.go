package testutil

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/xuri/excelize/v2"
)

// SourceHeaders are the column headers of a contract export as produced by
// the upstream system.
var SourceHeaders = []string{"NO KONTRAK", "MENU", "Produk", "CABANG", "STATUS", "dateCreated"}

// ContractRow is one fixture row in SourceHeaders order. Empty strings are
// written as empty cells.
type ContractRow struct {
	ContractID string
	Menu       string
	Product    string
	Branch     string
	Status     string
	CreatedAt  string
}

func (r ContractRow) cells() []string {
	return []string{r.ContractID, r.Menu, r.Product, r.Branch, r.Status, r.CreatedAt}
}

// SampleRows is a small dataset that exercises every report section: C1 and
// C3 touch more than one menu, C3 has a later but alphabetically smaller
// status, and every default target menu but one has data.
func SampleRows() []ContractRow {
	return []ContractRow{
		{"C1", "Approval DD", "KPR", "Jakarta", "APPROVED", "2024-01-01 09:00:00"},
		{"C1", "Approval RM", "KPR", "Jakarta", "PENDING", "2024-01-03 10:00:00"},
		{"C2", "Approval DD", "KMG", "Bandung", "APPROVED", "2024-01-02 11:00:00"},
		{"C3", "Approval DD", "KPR", "Bandung", "REJECTED", "2024-01-01 08:00:00"},
		{"C3", "Approval Direksi", "KPR", "Bandung", "APPROVED", "2024-01-05 08:00:00"},
		{"C4", "Approval DD", "KMG", "Jakarta", "PENDING", "not a date"},
		{"C5", "Approval RM", "KPR", "Surabaya", "APPROVED", "2024-01-04 12:00:00"},
	}
}

// CSV renders rows as a comma separated upload under headers.
func CSV(t testing.TB, headers []string, rows [][]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		t.Fatalf("write csv header: %v", err)
	}
	if err := w.WriteAll(rows); err != nil {
		t.Fatalf("write csv rows: %v", err)
	}
	return buf.Bytes()
}

// XLSX renders rows as a single sheet workbook under headers.
func XLSX(t testing.TB, sheet string, headers []string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "" && sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			t.Fatalf("rename sheet: %v", err)
		}
	} else {
		sheet = "Sheet1"
	}

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatalf("write xlsx header: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("write xlsx row %d: %v", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

// ContractCSV renders contract rows under SourceHeaders.
func ContractCSV(t testing.TB, rows []ContractRow) []byte {
	t.Helper()
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = r.cells()
	}
	return CSV(t, SourceHeaders, out)
}

// ContractXLSX renders contract rows under SourceHeaders on sheet "Data".
func ContractXLSX(t testing.TB, rows []ContractRow) []byte {
	t.Helper()
	out := make([][]any, len(rows))
	for i, r := range rows {
		cells := r.cells()
		out[i] = make([]any, len(cells))
		for j, c := range cells {
			out[i][j] = c
		}
	}
	return XLSX(t, "Data", SourceHeaders, out)
}
