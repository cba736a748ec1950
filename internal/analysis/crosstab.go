// Package analysis computes the dashboard's aggregate views from a record
// subset: the classification-by-age-band cross-tabulation, the per-county
// geographic aggregate, and the scalar statistics summary. All functions
// are pure — the same subset always yields the same aggregates.
package analysis

import (
	"sort"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/pkg/dashboard"
)

// CrossTab builds the classification-by-age-band table over a subset.
// Rows are the distinct classification values present in the subset, sorted
// ascending; columns are the distinct age bands present, in band order. Each
// cell is the row-normalized percentage: the share of that classification's
// records falling in that band, times 100. A row always sums to 100 (up to
// rounding) unless the classification has no records at all, which cannot
// happen for rows drawn from the subset itself.
//
// An empty subset yields an empty table, not an error.
func CrossTab(subset dataset.Table) dashboard.CrossTab {
	rows := subset.Classifications()
	cols := subset.AgeBands()
	if len(rows) == 0 || len(cols) == 0 {
		return dashboard.CrossTab{}
	}

	rowIndex := make(map[int]int, len(rows))
	for i, r := range rows {
		rowIndex[r] = i
	}
	colIndex := make(map[string]int, len(cols))
	for i, c := range cols {
		colIndex[c] = i
	}

	counts := make([][]int, len(rows))
	totals := make([]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for _, r := range subset {
		ci, ok := colIndex[r.AgeBand]
		if !ok {
			// Records without a band (age outside range) carry no column.
			continue
		}
		ri := rowIndex[r.Classification]
		counts[ri][ci]++
		totals[ri]++
	}

	cells := make([][]float64, len(rows))
	for i := range cells {
		cells[i] = make([]float64, len(cols))
		if totals[i] == 0 {
			continue
		}
		for j := range cells[i] {
			cells[i][j] = float64(counts[i][j]) / float64(totals[i]) * 100
		}
	}

	return dashboard.CrossTab{Rows: rows, Columns: cols, Cells: cells}
}

// sortedKeys returns a map's string keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
