package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"contractreport/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary       = "Summary"
	SheetMultiMenu     = "Multiple Menu"
	SheetPivotByDate   = "Pivot Latest Date"
	SheetPivotByStatus = "Pivot Latest Status"
	SheetTopBranches   = "Top Branches"
	SheetPreview       = "Preview"
)

// WorkbookFilename is the download name of the full workbook
const WorkbookFilename = "contract_report.xlsx"

// WriteWorkbook writes the report as an XLSX workbook with one sheet per
// available section after a summary sheet
func WriteWorkbook(out io.Writer, report *domain.ContractReport) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	wb := &workbook{f: f, header: header}

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if err := wb.writeSummary(report); err != nil {
		return err
	}

	if headers, records, err := Table(report, ArtifactMultiMenu); err == nil {
		if err := wb.writeSheet(SheetMultiMenu, headers, stringRows(records)); err != nil {
			return err
		}
	}
	if report.PivotByDate != nil {
		if err := wb.writePivot(SheetPivotByDate, report.PivotByDate); err != nil {
			return err
		}
	}
	if report.PivotByStatus != nil {
		if err := wb.writePivot(SheetPivotByStatus, report.PivotByStatus); err != nil {
			return err
		}
	}
	if report.TopBranches != nil {
		if err := wb.writeTopBranches(report.TopBranches); err != nil {
			return err
		}
	}
	if report.Preview != nil && len(report.Preview.Columns) > 0 {
		rows := make([][]any, len(report.Preview.Rows))
		for i, r := range report.Preview.Rows {
			rows[i] = make([]any, len(r))
			for j, v := range r {
				rows[i][j] = formatValue(v)
			}
		}
		if err := wb.writeSheet(SheetPreview, report.Preview.Columns, rows); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type workbook struct {
	f      *excelize.File
	header int
}

func (wb *workbook) writeSummary(report *domain.ContractReport) error {
	s := report.Summary
	rows := [][]any{
		{"Source", s.Source},
		{"Format", s.Format},
		{"Rows", s.Rows},
		{"Columns", s.Columns},
		{"Unparsed dates", s.CoercedDates},
		{"Generated at", report.GeneratedAt.Format(TimestampLayout)},
	}
	for _, n := range report.Notices {
		rows = append(rows, []any{string(n.Level), n.Message})
	}
	return wb.writeSheet(SheetSummary, []string{"Field", "Value"}, rows)
}

func (wb *workbook) writePivot(sheet string, p *domain.Pivot) error {
	headers, _ := pivotTable(p)
	rows := make([][]any, 0, len(p.Rows)+1)
	for _, r := range append(append([]domain.PivotRow(nil), p.Rows...), p.Totals) {
		row := make([]any, 0, len(r.Counts)+2)
		row = append(row, r.Label)
		for _, c := range r.Counts {
			row = append(row, c)
		}
		row = append(row, r.Total)
		rows = append(rows, row)
	}
	return wb.writeSheet(sheet, headers, rows)
}

func (wb *workbook) writeTopBranches(rankings []domain.BranchRanking) error {
	var rows [][]any
	for _, r := range rankings {
		if r.NoData {
			rows = append(rows, []any{r.Menu, "no data", nil, nil})
			continue
		}
		for i, b := range r.Branches {
			rows = append(rows, []any{r.Menu, i + 1, b.Branch, b.Contracts})
		}
	}
	return wb.writeSheet(SheetTopBranches, []string{"Menu", "Rank", "Branch", "Contracts"}, rows)
}

// writeSheet creates sheet when needed, writes a styled header row and the
// data rows below it
func (wb *workbook) writeSheet(sheet string, headers []string, rows [][]any) error {
	if idx, err := wb.f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if _, err := wb.f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
	}

	head := make([]any, len(headers))
	for i, h := range headers {
		head[i] = h
	}
	if err := wb.f.SetSheetRow(sheet, "A1", &head); err != nil {
		return fmt.Errorf("failed to write header of %q: %w", sheet, err)
	}
	if len(headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(sheet, "A1", last, wb.header); err != nil {
			return fmt.Errorf("failed to style header of %q: %w", sheet, err)
		}
		lastCol, _ := excelize.ColumnNumberToName(len(headers))
		if err := wb.f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
			return fmt.Errorf("failed to size columns of %q: %w", sheet, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := wb.f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d of %q: %w", i, sheet, err)
		}
	}
	return nil
}

func stringRows(records [][]string) [][]any {
	rows := make([][]any, len(records))
	for i, rec := range records {
		rows[i] = make([]any, len(rec))
		for j, v := range rec {
			rows[i][j] = v
		}
	}
	return rows
}
