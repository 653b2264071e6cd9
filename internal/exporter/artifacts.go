package exporter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"contractreport/pkg/contracts/domain"
)

// Artifact names a downloadable table of the report
type Artifact string

const (
	ArtifactMultiMenu     Artifact = "multiple-menu"
	ArtifactPivotByDate   Artifact = "pivot-latest-date"
	ArtifactPivotByStatus Artifact = "pivot-latest-status"
)

// Artifacts lists every artifact in report order
var Artifacts = []Artifact{ArtifactMultiMenu, ArtifactPivotByDate, ArtifactPivotByStatus}

var filenames = map[Artifact]string{
	ArtifactMultiMenu:     "kontrak_multiple_menu.csv",
	ArtifactPivotByDate:   "pivot1_by_latest_date.csv",
	ArtifactPivotByStatus: "pivot2_by_latest_status.csv",
}

var (
	// ErrUnknownArtifact is returned for artifact names outside Artifacts.
	ErrUnknownArtifact = errors.New("unknown artifact")
	// ErrSectionUnavailable is returned when the section behind an artifact
	// was skipped or produced no rows.
	ErrSectionUnavailable = errors.New("section unavailable")
)

// ParseArtifact validates an artifact name
func ParseArtifact(name string) (Artifact, error) {
	a := Artifact(name)
	if _, ok := filenames[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownArtifact, name)
	}
	return a, nil
}

// Filename returns the fixed download name of the artifact
func (a Artifact) Filename() string {
	return filenames[a]
}

// Section returns the report section the artifact is built from
func (a Artifact) Section() domain.SectionID {
	switch a {
	case ArtifactPivotByDate:
		return domain.SectionPivotByDate
	case ArtifactPivotByStatus:
		return domain.SectionPivotByStatus
	default:
		return domain.SectionMultiMenu
	}
}

// Available lists the artifacts the report can export
func Available(report *domain.ContractReport) []Artifact {
	var out []Artifact
	for _, a := range Artifacts {
		if _, _, err := Table(report, a); err == nil {
			out = append(out, a)
		}
	}
	return out
}

// Table flattens the section behind a into CSV headers and records
func Table(report *domain.ContractReport, a Artifact) ([]string, [][]string, error) {
	switch a {
	case ArtifactMultiMenu:
		if report.MultiMenu == nil || report.MultiMenu.Empty {
			return nil, nil, fmt.Errorf("%w: %s", ErrSectionUnavailable, a)
		}
		return multiMenuTable(report.MultiMenu)
	case ArtifactPivotByDate:
		if report.PivotByDate == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrSectionUnavailable, a)
		}
		h, r := pivotTable(report.PivotByDate)
		return h, r, nil
	case ArtifactPivotByStatus:
		if report.PivotByStatus == nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrSectionUnavailable, a)
		}
		h, r := pivotTable(report.PivotByStatus)
		return h, r, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownArtifact, string(a))
	}
}

// WriteArtifact streams one artifact as CSV
func (w *CSVWriter) WriteArtifact(out io.Writer, report *domain.ContractReport, a Artifact) error {
	headers, records, err := Table(report, a)
	if err != nil {
		return err
	}
	return w.Write(out, headers, records)
}

// ExportAll writes every available artifact into the output directory and
// returns the written paths. Unavailable artifacts are skipped.
func (w *CSVWriter) ExportAll(report *domain.ContractReport) ([]string, error) {
	var written []string
	for _, a := range Artifacts {
		headers, records, err := Table(report, a)
		if errors.Is(err, ErrSectionUnavailable) {
			w.logger.Info("Skipping unavailable artifact", slog.String("artifact", string(a)))
			continue
		}
		if err != nil {
			return written, err
		}

		path, err := w.WriteFile(a.Filename(), headers, records)
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", a, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func multiMenuTable(m *domain.MultiMenuResult) ([]string, [][]string, error) {
	withProduct := len(m.Columns) > 3
	records := make([][]string, 0, len(m.Rows))
	for _, row := range m.Rows {
		record := []string{
			formatValue(row.ContractID),
			formatValue(row.Menu),
			formatTimestamp(row.CreatedAt),
		}
		if withProduct {
			record = append(record, formatValue(row.Product))
		}
		records = append(records, record)
	}
	return m.Columns, records, nil
}

// pivotTable lays out a pivot with the row dimension as first header, one
// row per menu and a closing TOTAL row
func pivotTable(p *domain.Pivot) ([]string, [][]string) {
	headers := make([]string, 0, len(p.Columns)+2)
	headers = append(headers, p.RowDimension)
	headers = append(headers, p.Columns...)
	headers = append(headers, domain.TotalLabel)

	records := make([][]string, 0, len(p.Rows)+1)
	for _, row := range append(append([]domain.PivotRow(nil), p.Rows...), p.Totals) {
		record := make([]string, 0, len(headers))
		record = append(record, row.Label)
		for _, c := range row.Counts {
			record = append(record, formatInt(c))
		}
		record = append(record, formatInt(row.Total))
		records = append(records, record)
	}
	return headers, records
}
