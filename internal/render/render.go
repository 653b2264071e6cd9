// Package render prints contract reports to a terminal or a text stream.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"contractreport/pkg/contracts/domain"
)

// Format selects the output style.
type Format string

const (
	FormatTable    Format = "table"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name, "md" being short for markdown.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table":
		return FormatTable, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, markdown, csv or json)", s)
	}
}

// Renderer writes every section of a report in one format. Skipped
// sections are not printed.
type Renderer struct {
	w      io.Writer
	format Format
	styles styles
}

// New returns a renderer writing to w. Colors are used only when w is a
// terminal.
func New(w io.Writer, format Format) *Renderer {
	return &Renderer{
		w:      w,
		format: format,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

// Report renders the whole report.
func (r *Renderer) Report(report *domain.ContractReport) error {
	if r.format == FormatJSON {
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	r.summary(report.Summary)

	if m := report.MultiMenu; m != nil {
		r.heading("Contracts in more than one menu")
		if m.Empty {
			r.notices(report.Notices, domain.SectionMultiMenu)
		} else {
			r.line(fmt.Sprintf("Total: %d contracts", m.Contracts))
			r.table(multiMenuTable(m))
		}
	}

	if p := report.PivotByDate; p != nil {
		r.heading("Pivot 1: latest record by date created")
		r.table(pivotTable(p))
	}

	if p := report.PivotByStatus; p != nil {
		r.heading("Pivot 2: latest status, date ignored")
		r.table(pivotTable(p))
	}

	if report.TopBranches != nil {
		r.heading("Top branches per menu")
		for _, ranking := range report.TopBranches {
			r.subheading(ranking.Menu)
			if ranking.NoData {
				r.warning(fmt.Sprintf("no data for menu: %s", ranking.Menu))
				continue
			}
			if r.format == FormatTable {
				r.line(BarChart(r.styles, ranking.Branches, defaultBarWidth))
			}
			r.table(rankingTable(ranking))
		}
	}

	if p := report.Preview; p != nil && len(p.Columns) > 0 {
		r.heading("Preview")
		r.table(previewTable(p))
		if p.TotalRows > len(p.Rows) {
			r.line(fmt.Sprintf("(%d of %d rows)", len(p.Rows), p.TotalRows))
		}
	}
	return nil
}

func (r *Renderer) summary(s domain.LoadSummary) {
	msg := fmt.Sprintf("Data loaded: %d rows, %d columns", s.Rows, s.Columns)
	switch r.format {
	case FormatTable:
		r.line(r.styles.success.Render(msg))
	case FormatMarkdown:
		r.line("**" + msg + "**")
	default:
		r.line("# " + msg)
	}
	if s.CoercedDates > 0 {
		r.warning(fmt.Sprintf("%d created_at values could not be parsed and are treated as missing", s.CoercedDates))
	}
}

func (r *Renderer) heading(title string) {
	switch r.format {
	case FormatTable:
		r.line("\n" + r.styles.heading.Render(title))
	case FormatMarkdown:
		r.line("\n## " + title + "\n")
	default:
		r.line("\n# " + title)
	}
}

func (r *Renderer) subheading(title string) {
	switch r.format {
	case FormatTable:
		r.line(r.styles.subheading.Render(title))
	case FormatMarkdown:
		r.line("\n### " + title + "\n")
	default:
		r.line("# " + title)
	}
}

func (r *Renderer) warning(msg string) {
	switch r.format {
	case FormatTable:
		r.line(r.styles.warning.Render("! " + msg))
	case FormatMarkdown:
		r.line("> " + msg)
	default:
		r.line("# " + msg)
	}
}

func (r *Renderer) notices(notices []domain.Notice, section domain.SectionID) {
	for _, n := range notices {
		if n.Section == section {
			r.warning(n.Message)
		}
	}
}

func (r *Renderer) line(s string) {
	fmt.Fprintln(r.w, s)
}

func (r *Renderer) table(header table.Row, rows []table.Row, footer table.Row) {
	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	t.AppendRows(rows)
	if footer != nil {
		t.AppendFooter(footer)
	}

	switch r.format {
	case FormatMarkdown:
		t.RenderMarkdown()
	case FormatCSV:
		t.RenderCSV()
	default:
		t.Render()
	}
}

func multiMenuTable(m *domain.MultiMenuResult) (table.Row, []table.Row, table.Row) {
	header := toRow(m.Columns)
	withProduct := len(m.Columns) > 3
	rows := make([]table.Row, 0, len(m.Rows))
	for _, mr := range m.Rows {
		row := table.Row{mr.ContractID.Or(""), mr.Menu.Or(""), formatTimestamp(mr.CreatedAt)}
		if withProduct {
			row = append(row, mr.Product.Or(""))
		}
		rows = append(rows, row)
	}
	return header, rows, nil
}

func pivotTable(p *domain.Pivot) (table.Row, []table.Row, table.Row) {
	header := table.Row{p.RowDimension}
	for _, c := range p.Columns {
		header = append(header, c)
	}
	header = append(header, domain.TotalLabel)

	rows := make([]table.Row, 0, len(p.Rows))
	for _, pr := range p.Rows {
		rows = append(rows, pivotRow(pr))
	}
	return header, rows, pivotRow(p.Totals)
}

func pivotRow(pr domain.PivotRow) table.Row {
	row := table.Row{pr.Label}
	for _, c := range pr.Counts {
		row = append(row, c)
	}
	return append(row, pr.Total)
}

func rankingTable(ranking domain.BranchRanking) (table.Row, []table.Row, table.Row) {
	rows := make([]table.Row, 0, len(ranking.Branches))
	for i, b := range ranking.Branches {
		rows = append(rows, table.Row{i + 1, b.Branch, b.Contracts})
	}
	return table.Row{"#", "Branch", "Contracts"}, rows, nil
}

func previewTable(p *domain.PreviewResult) (table.Row, []table.Row, table.Row) {
	rows := make([]table.Row, 0, len(p.Rows))
	for _, pr := range p.Rows {
		row := make(table.Row, len(pr))
		for i, v := range pr {
			row[i] = v.Or("")
		}
		rows = append(rows, row)
	}
	return toRow(p.Columns), rows, nil
}

func toRow(cols []string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = c
	}
	return row
}

func formatTimestamp(t domain.Timestamp) string {
	if !t.Valid {
		return ""
	}
	return t.Time.Format("2006-01-02 15:04:05")
}
