package dataprocessing

import "contractreport/pkg/contracts/domain"

// Preview projects the first limit rows onto the known fields present in the
// table. Cells are returned as loaded, created_at included.
func Preview(t *domain.Table, limit int) *domain.PreviewResult {
	var fields []domain.Field
	for _, f := range domain.Fields {
		if t.Has(f) {
			fields = append(fields, f)
		}
	}

	result := &domain.PreviewResult{
		Columns:   make([]string, len(fields)),
		TotalRows: t.Rows(),
	}
	for i, f := range fields {
		result.Columns[i] = t.Header(f)
	}
	if len(fields) == 0 {
		return result
	}

	if limit < 0 || limit > t.Rows() {
		limit = t.Rows()
	}
	result.Rows = make([][]domain.Value, 0, limit)
	for _, rec := range t.Records[:limit] {
		row := make([]domain.Value, len(fields))
		for i, f := range fields {
			row[i] = t.Get(rec, f)
		}
		result.Rows = append(result.Rows, row)
	}
	return result
}
