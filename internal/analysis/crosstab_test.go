package analysis

import (
	"math"
	"testing"

	"github.com/classmap/runtime/internal/dataset"
)

func analysisTable() dataset.Table {
	return dataset.Table{
		{Classification: 1, Age: 27, AgeBand: "25-29", County: "Fairfax", CountyCode: "51059", State: "VA"},
		{Classification: 1, Age: 28, AgeBand: "25-29", County: "Fairfax", CountyCode: "51059", State: "VA"},
		{Classification: 1, Age: 3, AgeBand: "0-4", County: "Accomack", CountyCode: "51001", State: "VA"},
		{Classification: 0, Age: 27, AgeBand: "25-29", County: "Fairfax", CountyCode: "51059", State: "VA"},
		{Classification: 0, Age: 80, AgeBand: "80-84", County: "Juneau", CountyCode: "02110", State: "AK"},
	}
}

// TestCrossTabAxes tests row and column derivation from the subset.
func TestCrossTabAxes(t *testing.T) {
	ct := CrossTab(analysisTable())

	wantRows := []int{0, 1}
	if len(ct.Rows) != len(wantRows) {
		t.Fatalf("rows = %v, want %v", ct.Rows, wantRows)
	}
	for i, r := range wantRows {
		if ct.Rows[i] != r {
			t.Errorf("rows[%d] = %d, want %d", i, ct.Rows[i], r)
		}
	}

	wantCols := []string{"0-4", "25-29", "80-84"}
	if len(ct.Columns) != len(wantCols) {
		t.Fatalf("columns = %v, want %v", ct.Columns, wantCols)
	}
	for i, c := range wantCols {
		if ct.Columns[i] != c {
			t.Errorf("columns[%d] = %q, want %q", i, ct.Columns[i], c)
		}
	}
}

// TestCrossTabRowNormalization tests that each row sums to 100 and cells
// carry the expected shares.
func TestCrossTabRowNormalization(t *testing.T) {
	ct := CrossTab(analysisTable())

	for i, row := range ct.Cells {
		sum := 0.0
		for _, cell := range row {
			sum += cell
		}
		if math.Abs(sum-100) > 1e-9 {
			t.Errorf("row %d sums to %v, want 100", i, sum)
		}
	}

	// Classification 1: 3 records, 1 in "0-4", 2 in "25-29".
	row1 := ct.Cells[1]
	if math.Abs(row1[0]-100.0/3) > 1e-9 {
		t.Errorf("cell[1][0-4] = %v, want %v", row1[0], 100.0/3)
	}
	if math.Abs(row1[1]-200.0/3) > 1e-9 {
		t.Errorf("cell[1][25-29] = %v, want %v", row1[1], 200.0/3)
	}
	if row1[2] != 0 {
		t.Errorf("cell[1][80-84] = %v, want 0", row1[2])
	}
}

// TestCrossTabCompleteGrid tests that every axis combination has a cell.
func TestCrossTabCompleteGrid(t *testing.T) {
	ct := CrossTab(analysisTable())

	if len(ct.Cells) != len(ct.Rows) {
		t.Fatalf("cells has %d rows, want %d", len(ct.Cells), len(ct.Rows))
	}
	for i, row := range ct.Cells {
		if len(row) != len(ct.Columns) {
			t.Errorf("row %d has %d cells, want %d", i, len(row), len(ct.Columns))
		}
	}
}

// TestCrossTabEmptySubset tests that an empty subset yields an empty table.
func TestCrossTabEmptySubset(t *testing.T) {
	ct := CrossTab(nil)
	if len(ct.Rows) != 0 || len(ct.Columns) != 0 || len(ct.Cells) != 0 {
		t.Errorf("empty subset should yield an empty table, got %+v", ct)
	}
}
