package domain

import (
	"time"
)

// TotalLabel labels the margin row and column of a pivot.
const TotalLabel = "TOTAL"

// SectionID identifies one section of a contract report
type SectionID string

const (
	SectionMultiMenu     SectionID = "multiple_menu"
	SectionPivotByDate   SectionID = "pivot_latest_date"
	SectionPivotByStatus SectionID = "pivot_latest_status"
	SectionTopBranches   SectionID = "top_branches"
	SectionPreview       SectionID = "preview"
)

// NoticeLevel grades an informational notice
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeWarning NoticeLevel = "warning"
)

// ContractReport is the full output of one engine run over one upload
type ContractReport struct {
	ID            string           `json:"id"`
	GeneratedAt   time.Time        `json:"generated_at"`
	Summary       LoadSummary      `json:"summary"`
	MultiMenu     *MultiMenuResult `json:"multiple_menu,omitempty"`
	PivotByDate   *Pivot           `json:"pivot_latest_date,omitempty"`
	PivotByStatus *Pivot           `json:"pivot_latest_status,omitempty"`
	TopBranches   []BranchRanking  `json:"top_branches,omitempty"`
	Preview       *PreviewResult   `json:"preview,omitempty"`
	Skipped       []SkippedSection `json:"skipped,omitempty"`
	Notices       []Notice         `json:"notices,omitempty"`
}

// LoadSummary describes the loaded table
type LoadSummary struct {
	Source       string `json:"source"`
	Format       string `json:"format"`
	Rows         int    `json:"rows"`
	Columns      int    `json:"columns"`
	CoercedDates int    `json:"coerced_dates"`
}

// SkippedSection records a section that did not run because of a schema gap
type SkippedSection struct {
	Section SectionID `json:"section"`
	Missing []Field   `json:"missing"`
}

// Notice is a user-facing informational message attached to a section
type Notice struct {
	Section SectionID   `json:"section"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// MultiMenuResult lists every row of contracts that touched more than one menu
type MultiMenuResult struct {
	// Contracts is the number of flagged contracts.
	Contracts int            `json:"contracts"`
	Columns   []string       `json:"columns"`
	Rows      []MultiMenuRow `json:"rows"`
	Empty     bool           `json:"empty"`
}

// MultiMenuRow is one source row of a flagged contract
type MultiMenuRow struct {
	ContractID Value     `json:"contract_id"`
	Menu       Value     `json:"menu"`
	CreatedAt  Timestamp `json:"created_at"`
	Product    Value     `json:"product"`
}

// Pivot is a menu by product cross-tabulation of distinct contract counts
type Pivot struct {
	RowDimension    string     `json:"row_dimension"`
	ColumnDimension string     `json:"column_dimension"`
	Columns         []string   `json:"columns"`
	Rows            []PivotRow `json:"rows"`
	Totals          PivotRow   `json:"totals"`
}

// PivotRow holds the counts of one menu, aligned with Pivot.Columns
type PivotRow struct {
	Label  string `json:"label"`
	Counts []int  `json:"counts"`
	Total  int    `json:"total"`
}

// Cell returns the count at (row, column), zero when either label is absent.
func (p *Pivot) Cell(row, column string) int {
	col := -1
	for i, c := range p.Columns {
		if c == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0
	}
	for _, r := range p.Rows {
		if r.Label == row {
			return r.Counts[col]
		}
	}
	return 0
}

// GrandTotal returns the corner cell of the margins.
func (p *Pivot) GrandTotal() int {
	return p.Totals.Total
}

// BranchRanking is the top-N branch table of one target menu
type BranchRanking struct {
	Menu     string        `json:"menu"`
	Branches []BranchCount `json:"branches"`
	NoData   bool          `json:"no_data"`
}

// BranchCount is one ranked branch and its distinct contract count
type BranchCount struct {
	Branch    string `json:"branch"`
	Contracts int    `json:"contracts"`
}

// PreviewResult is the head of the table projected onto the important columns
type PreviewResult struct {
	Columns   []string  `json:"columns"`
	Rows      [][]Value `json:"rows"`
	TotalRows int       `json:"total_rows"`
}
