package dataprocessing

import (
	"sort"

	"contractreport/pkg/contracts/domain"
)

var (
	// PivotByDateFields are the columns the latest-date pivot needs.
	PivotByDateFields = []domain.Field{domain.FieldMenu, domain.FieldProduct, domain.FieldContractID}
	// PivotByStatusFields are the columns the latest-status pivot needs.
	PivotByStatusFields = []domain.Field{domain.FieldStatus, domain.FieldMenu, domain.FieldProduct, domain.FieldContractID}
)

// PivotByLatestDate keeps, per contract, the record with the greatest
// created_at and cross-tabulates menu by product. A dated record always
// replaces an undated one; equal timestamps keep the earlier row.
func PivotByLatestDate(t *domain.Table) *domain.Pivot {
	if !t.Has(PivotByDateFields...) {
		return nil
	}
	latest := latestPerContract(t, func(candidate, current domain.Record) bool {
		return candidate.CreatedAt.After(current.CreatedAt)
	})
	return crosstab(t, latest)
}

// PivotByLatestStatus keeps, per contract, the record whose status sorts
// last alphabetically and cross-tabulates menu by product. The choice
// ignores created_at entirely.
func PivotByLatestStatus(t *domain.Table) *domain.Pivot {
	if !t.Has(PivotByStatusFields...) {
		return nil
	}
	latest := latestPerContract(t, func(candidate, current domain.Record) bool {
		c, cur := t.Get(candidate, domain.FieldStatus), t.Get(current, domain.FieldStatus)
		switch {
		case !c.Valid:
			return false
		case !cur.Valid:
			return true
		default:
			return c.String > cur.String
		}
	})
	return crosstab(t, latest)
}

// latestPerContract selects one record per contract id. replaces reports
// whether candidate should displace the current pick; records with no
// contract id are ignored.
func latestPerContract(t *domain.Table, replaces func(candidate, current domain.Record) bool) []domain.Record {
	picked := make(map[string]int)
	var out []domain.Record
	for _, rec := range t.Records {
		id := t.Get(rec, domain.FieldContractID)
		if !id.Valid {
			continue
		}
		idx, ok := picked[id.String]
		if !ok {
			picked[id.String] = len(out)
			out = append(out, rec)
			continue
		}
		if replaces(rec, out[idx]) {
			out[idx] = rec
		}
	}
	return out
}

// crosstab counts one contract per record by (menu, product). Records with a
// missing menu or product are left out. Rows and columns are sorted, with
// TOTAL margins on both axes.
func crosstab(t *domain.Table, records []domain.Record) *domain.Pivot {
	counts := make(map[string]map[string]int)
	products := make(map[string]struct{})

	for _, rec := range records {
		menu, product := t.Get(rec, domain.FieldMenu), t.Get(rec, domain.FieldProduct)
		if !menu.Valid || !product.Valid {
			continue
		}
		row, ok := counts[menu.String]
		if !ok {
			row = make(map[string]int)
			counts[menu.String] = row
		}
		row[product.String]++
		products[product.String] = struct{}{}
	}

	p := &domain.Pivot{
		RowDimension:    t.Header(domain.FieldMenu),
		ColumnDimension: t.Header(domain.FieldProduct),
		Columns:         sortedKeys(products),
		Totals: domain.PivotRow{
			Label: domain.TotalLabel,
		},
	}
	p.Totals.Counts = make([]int, len(p.Columns))

	menus := make([]string, 0, len(counts))
	for m := range counts {
		menus = append(menus, m)
	}
	sort.Strings(menus)

	for _, m := range menus {
		row := domain.PivotRow{Label: m, Counts: make([]int, len(p.Columns))}
		for i, col := range p.Columns {
			n := counts[m][col]
			row.Counts[i] = n
			row.Total += n
			p.Totals.Counts[i] += n
		}
		p.Totals.Total += row.Total
		p.Rows = append(p.Rows, row)
	}
	return p
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
