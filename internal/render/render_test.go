package render

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractreport/internal/dataprocessing"
	"contractreport/internal/shared/testutil"
	"contractreport/pkg/contracts/domain"
)

func sampleReport(t *testing.T) *domain.ContractReport {
	t.Helper()
	table, err := dataprocessing.Parse(context.Background(),
		bytes.NewReader(testutil.ContractCSV(t, testutil.SampleRows())),
		dataprocessing.FormatCSV, dataprocessing.ParseOptions{SourceName: "sample.csv"})
	require.NoError(t, err)
	return dataprocessing.NewEngine(dataprocessing.DefaultOptions(), nil, nil).Run(context.Background(), table)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatTable},
		{in: "TABLE", want: FormatTable},
		{in: "md", want: FormatMarkdown},
		{in: "markdown", want: FormatMarkdown},
		{in: "csv", want: FormatCSV},
		{in: "json", want: FormatJSON},
		{in: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_Table(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatTable).Report(sampleReport(t)))
	out := buf.String()

	for _, want := range []string{
		"Data loaded: 7 rows, 6 columns",
		"1 created_at values could not be parsed",
		"Contracts in more than one menu",
		"Total: 2 contracts",
		"Pivot 1: latest record by date created",
		"Pivot 2: latest status, date ignored",
		"Approval Direksi",
		"no data for menu: Upload hasil Survey",
		"█",
		"Preview",
	} {
		assert.Contains(t, out, want)
	}
	// no terminal, no escape codes
	assert.NotContains(t, out, "\x1b[")
}

func TestRenderer_SkipsMissingSections(t *testing.T) {
	report := sampleReport(t)
	report.PivotByStatus = nil
	report.TopBranches = nil

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatTable).Report(report))
	out := buf.String()

	assert.Contains(t, out, "Pivot 1")
	assert.NotContains(t, out, "Pivot 2")
	assert.NotContains(t, out, "Top branches")
}

func TestRenderer_EmptyMultiMenu(t *testing.T) {
	report := &domain.ContractReport{
		MultiMenu: &domain.MultiMenuResult{Empty: true},
		Notices: []domain.Notice{{
			Section: domain.SectionMultiMenu,
			Level:   domain.NoticeInfo,
			Message: "no contract entered more than one menu",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatMarkdown).Report(report))
	assert.Contains(t, buf.String(), "> no contract entered more than one menu")
	assert.NotContains(t, buf.String(), "Total:")
}

func TestRenderer_Markdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatMarkdown).Report(sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "## Pivot 1: latest record by date created")
	assert.Contains(t, out, "| MENU | KMG | KPR | TOTAL |")
	assert.Contains(t, out, "| Approval DD | 2 | 0 | 2 |")
	assert.NotContains(t, out, "█")
}

func TestRenderer_CSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatCSV).Report(sampleReport(t)))
	out := buf.String()

	assert.Contains(t, out, "MENU,KMG,KPR,TOTAL")
	assert.Contains(t, out, "Approval DD,2,1,3")
	assert.True(t, strings.HasPrefix(out, "# Data loaded"))
}

func TestRenderer_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, New(&buf, FormatJSON).Report(sampleReport(t)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "pivot_latest_date")
	assert.Contains(t, decoded, "top_branches")
	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(7), summary["rows"])
}

func TestBarChart(t *testing.T) {
	s := newStyles(lipgloss.NewRenderer(&bytes.Buffer{}))

	chart := BarChart(s, []domain.BranchCount{
		{Branch: "Jakarta", Contracts: 10},
		{Branch: "Solo", Contracts: 5},
		{Branch: "Medan", Contracts: 1},
	}, 20)

	lines := strings.Split(chart, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, 20, strings.Count(lines[0], "█"))
	assert.Equal(t, 10, strings.Count(lines[1], "█"))
	assert.Equal(t, 2, strings.Count(lines[2], "█"))
	assert.True(t, strings.HasPrefix(lines[1], "Solo    │"))
	assert.True(t, strings.HasSuffix(lines[2], " 1"))

	assert.Empty(t, BarChart(s, nil, 20))
}
