package dataprocessing

import (
	"sort"

	"contractreport/pkg/contracts/domain"
)

// MultiMenuFields are the columns the multiple-menu detector needs.
var MultiMenuFields = []domain.Field{domain.FieldMenu, domain.FieldContractID}

// DetectMultiMenu returns the rows of every contract that went through more
// than one distinct menu, a missing menu counting as its own "" menu. It
// returns nil when a required column is absent.
func DetectMultiMenu(t *domain.Table) *domain.MultiMenuResult {
	if !t.Has(MultiMenuFields...) {
		return nil
	}

	menus := make(map[string]map[string]struct{})
	for _, rec := range t.Records {
		id := t.Get(rec, domain.FieldContractID)
		if !id.Valid {
			continue
		}
		set, ok := menus[id.String]
		if !ok {
			set = make(map[string]struct{})
			menus[id.String] = set
		}
		set[t.Get(rec, domain.FieldMenu).Or("")] = struct{}{}
	}

	flagged := make(map[string]bool)
	for id, set := range menus {
		if len(set) > 1 {
			flagged[id] = true
		}
	}

	columns := []string{
		t.Header(domain.FieldContractID),
		t.Header(domain.FieldMenu),
		t.Header(domain.FieldCreatedAt),
	}
	if t.Has(domain.FieldProduct) {
		columns = append(columns, t.Header(domain.FieldProduct))
	}

	result := &domain.MultiMenuResult{
		Contracts: len(flagged),
		Columns:   columns,
		Empty:     len(flagged) == 0,
	}
	if result.Empty {
		return result
	}

	for _, rec := range t.Records {
		id := t.Get(rec, domain.FieldContractID)
		if !id.Valid || !flagged[id.String] {
			continue
		}
		result.Rows = append(result.Rows, domain.MultiMenuRow{
			ContractID: id,
			Menu:       t.Get(rec, domain.FieldMenu),
			CreatedAt:  rec.CreatedAt,
			Product:    t.Get(rec, domain.FieldProduct),
		})
	}

	sort.SliceStable(result.Rows, func(i, j int) bool {
		a, b := result.Rows[i], result.Rows[j]
		if a.ContractID.String != b.ContractID.String {
			return a.ContractID.String < b.ContractID.String
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	return result
}
