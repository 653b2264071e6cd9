// Package exporter writes contract report sections as downloadable files.
//
// Three sections are exported as CSV artifacts with fixed names:
//
//	multiple-menu        kontrak_multiple_menu.csv
//	pivot-latest-date    pivot1_by_latest_date.csv
//	pivot-latest-status  pivot2_by_latest_status.csv
//
// CSVWriter streams an artifact to any io.Writer (HTTP downloads) or writes
// all of them into a directory (CLI), optionally with a UTF-8 BOM for Excel.
// A skipped or empty section yields ErrSectionUnavailable.
//
// WriteWorkbook writes every available section into a single XLSX workbook.
//
// Example usage:
//
//	w := exporter.NewCSVWriter("out", true, logger)
//	paths, err := w.ExportAll(report)
package exporter
