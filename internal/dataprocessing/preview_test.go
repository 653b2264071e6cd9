package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview(t *testing.T) {
	t.Run("known columns in fixed order", func(t *testing.T) {
		p := Preview(sampleTable(t), 20)
		assert.Equal(t, []string{"NO KONTRAK", "dateCreated", "Produk", "CABANG", "MENU", "STATUS"}, p.Columns)
		assert.Equal(t, 7, p.TotalRows)
		require.Len(t, p.Rows, 7)
		assert.Equal(t, "2024-01-01 09:00:00", p.Rows[0][1].String)
		assert.Equal(t, "not a date", p.Rows[5][1].String)
	})

	t.Run("limit", func(t *testing.T) {
		p := Preview(sampleTable(t), 3)
		assert.Len(t, p.Rows, 3)
		assert.Equal(t, 7, p.TotalRows)
	})

	t.Run("unknown columns are left out", func(t *testing.T) {
		table := parseCSV(t, []string{"Catatan", "MENU", "NO KONTRAK"}, [][]string{
			{"note", "Approval DD", "C1"},
		})
		p := Preview(table, 20)
		assert.Equal(t, []string{"NO KONTRAK", "MENU"}, p.Columns)
		assert.Equal(t, "C1", p.Rows[0][0].String)
		assert.Equal(t, "Approval DD", p.Rows[0][1].String)
	})

	t.Run("no known columns", func(t *testing.T) {
		table := parseCSV(t, []string{"Catatan"}, [][]string{{"note"}})
		p := Preview(table, 20)
		assert.Empty(t, p.Columns)
		assert.Empty(t, p.Rows)
		assert.Equal(t, 1, p.TotalRows)
	})
}
