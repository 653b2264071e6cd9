package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"contractreport/internal/config"
	apperrors "contractreport/internal/errors"
	"contractreport/pkg/contracts/domain"
)

// Format is the declared format of an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// FormatFromFilename derives the upload format from its extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// ParseOptions controls how an upload is turned into a table.
type ParseOptions struct {
	// SourceName is carried into the table metadata, usually the upload filename.
	SourceName string
	// Delimiter separates CSV fields. Zero means ','.
	Delimiter rune
	// Sheet selects an XLSX worksheet. Empty picks the first sheet with a header row.
	Sheet string
	// Columns lists the accepted headers per logical field, first match wins.
	Columns map[domain.Field][]string
	// DateLayouts are tried in order when coercing created_at.
	DateLayouts []string
	Logger      *slog.Logger
}

// ParseOptionsFromConfig builds parse options from the report configuration.
func ParseOptionsFromConfig(cfg config.ReportConfig) ParseOptions {
	return ParseOptions{
		Delimiter: cfg.Delimiter(),
		Sheet:     cfg.Sheet,
		Columns: map[domain.Field][]string{
			domain.FieldContractID: cfg.Columns.ContractID,
			domain.FieldMenu:       cfg.Columns.Menu,
			domain.FieldProduct:    cfg.Columns.Product,
			domain.FieldBranch:     cfg.Columns.Branch,
			domain.FieldStatus:     cfg.Columns.Status,
			domain.FieldCreatedAt:  cfg.Columns.CreatedAt,
		},
		DateLayouts: cfg.DateLayouts,
	}
}

func (o ParseOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

func (o ParseOptions) columns() map[domain.Field][]string {
	if len(o.Columns) > 0 {
		return o.Columns
	}
	return ParseOptionsFromConfig(config.Default().Report).Columns
}

func (o ParseOptions) layouts() []string {
	if len(o.DateLayouts) > 0 {
		return o.DateLayouts
	}
	return config.DefaultDateLayouts
}

// Parse reads an upload into a normalized table. Malformed input yields a
// PARSING AppError; unparseable dates never fail the load.
func Parse(ctx context.Context, r io.Reader, format Format, opts ParseOptions) (*domain.Table, error) {
	var (
		rows [][]string
		err  error
	)

	switch format {
	case FormatCSV:
		rows, err = readCSV(r, opts.Delimiter)
	case FormatXLSX:
		rows, err = readXLSX(r, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read %s upload", format), err).
			WithContext("source", opts.SourceName)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	headerIdx := firstNonEmptyRow(rows)
	if headerIdx < 0 {
		return nil, apperrors.NewParsingError("no header row found", nil).
			WithContext("source", opts.SourceName)
	}

	table := buildTable(rows[headerIdx], rows[headerIdx+1:], opts.columns())
	table.SourceName = opts.SourceName
	table.Format = string(format)

	table.CoercedDates = normalizeCreatedAt(table, opts.layouts(), format == FormatXLSX)

	logger := opts.logger()
	if table.CoercedDates > 0 {
		logger.WarnContext(ctx, "created_at values could not be parsed",
			slog.String("source", opts.SourceName),
			slog.String("column", table.Header(domain.FieldCreatedAt)),
			slog.Int("coerced", table.CoercedDates))
	}
	logger.InfoContext(ctx, "data loaded",
		slog.String("source", opts.SourceName),
		slog.String("format", string(format)),
		slog.Int("rows", table.Rows()),
		slog.Int("columns", table.Cols()))

	return table, nil
}

// readCSV returns every record, tolerating ragged rows and a UTF-8 BOM.
func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false
	if delimiter != 0 {
		if !utf8.ValidRune(delimiter) || delimiter == '"' || delimiter == '\r' || delimiter == '\n' {
			return nil, fmt.Errorf("invalid csv delimiter %q", delimiter)
		}
		cr.Comma = delimiter
	}

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// readXLSX returns the rows of the configured sheet, or of the first sheet
// holding a non-empty row. Cells are read raw so date cells keep their
// serial number.
func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet != "" {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("sheet %q not found", sheet)
		}
		return f.GetRows(f.GetSheetName(idx))
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		if firstNonEmptyRow(rows) >= 0 {
			return rows, nil
		}
	}
	return nil, nil
}

func firstNonEmptyRow(rows [][]string) int {
	for i, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				return i
			}
		}
	}
	return -1
}

// buildTable aligns every data row with the header and resolves the logical
// fields. Rows whose cells are all empty are kept as rows of missing values.
func buildTable(header []string, data [][]string, aliases map[domain.Field][]string) *domain.Table {
	headers := normalizeHeaders(header)

	table := &domain.Table{
		Headers: headers,
		Columns: resolveColumns(headers, aliases),
		Records: make([]domain.Record, 0, len(data)),
	}

	for _, row := range data {
		cells := make([]domain.Value, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = domain.NewValue(row[i])
			}
		}
		table.Records = append(table.Records, domain.Record{Cells: cells})
	}
	return table
}

// normalizeHeaders trims names, labels blank headers by position and
// suffixes repeated names so every header is unique.
func normalizeHeaders(header []string) []string {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, string(utf8BOM)))
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		if n, dup := seen[h]; dup {
			seen[h] = n + 1
			h = h + "." + strconv.Itoa(n+1)
		} else {
			seen[h] = 0
		}
		out[i] = h
	}
	return out
}

// resolveColumns binds each field to the first header matching one of its
// aliases, case-insensitively.
func resolveColumns(headers []string, aliases map[domain.Field][]string) map[domain.Field]int {
	cols := make(map[domain.Field]int, len(aliases))
	for _, field := range domain.Fields {
		for _, alias := range aliases[field] {
			if idx := indexFold(headers, alias); idx >= 0 {
				cols[field] = idx
				break
			}
		}
	}
	return cols
}

func indexFold(headers []string, name string) int {
	name = strings.TrimSpace(name)
	for i, h := range headers {
		if strings.EqualFold(h, name) {
			return i
		}
	}
	return -1
}
