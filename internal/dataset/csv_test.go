package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/classmap/runtime/internal/errhandling"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// TestCSVSourceFetch tests a well-formed load with typed fields.
func TestCSVSourceFetch(t *testing.T) {
	path := writeCSV(t, `CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE
1,27,Fairfax,51059,VA
0,64.5,Accomack,51001,VA
1,3,Albemarle,51003,VA
`)

	src, err := NewCSVSource(path, nil, nil)
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	table, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(table) != 3 {
		t.Fatalf("len(table) = %d, want 3", len(table))
	}
	first := table[0]
	if first.Classification != 1 || first.Age != 27 || first.AgeBand != "25-29" {
		t.Errorf("first record mistyped: %+v", first)
	}
	if first.CountyCode != "51059" {
		t.Errorf("CountyCode = %q, want opaque string 51059", first.CountyCode)
	}
	if table[2].AgeBand != "0-4" {
		t.Errorf("age 3 should band to 0-4, got %q", table[2].AgeBand)
	}
}

// TestCSVSourceLeadingZeroCodes tests that county codes are never coerced
// to numbers.
func TestCSVSourceLeadingZeroCodes(t *testing.T) {
	path := writeCSV(t, `CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE
1,40,Autauga,01001,AL
`)

	src, err := NewCSVSource(path, nil, nil)
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	table, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if table[0].CountyCode != "01001" {
		t.Errorf("CountyCode = %q, leading zero must survive", table[0].CountyCode)
	}
}

// TestCSVSourceColumnMapping tests header overrides.
func TestCSVSourceColumnMapping(t *testing.T) {
	path := writeCSV(t, `class,years,name,geoid,st
1,30,Fairfax,51059,VA
`)

	src, err := NewCSVSource(path, map[string]string{
		FieldClassification: "class",
		FieldAge:            "years",
		FieldCounty:         "name",
		FieldCountyCode:     "geoid",
		FieldState:          "st",
	}, nil)
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	table, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if table[0].County != "Fairfax" || table[0].AgeBand != "30-34" {
		t.Errorf("mapped record wrong: %+v", table[0])
	}
}

// TestCSVSourceFatalErrors tests that malformed input aborts the load.
func TestCSVSourceFatalErrors(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantCategory errhandling.ErrorCategory
	}{
		{
			name:         "missing column",
			content:      "CLASSIFICATION,AGE,COUNTY,STATE\n1,2,x,VA\n",
			wantCategory: errhandling.CategorySchema,
		},
		{
			name:         "non-integer classification",
			content:      "CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE\nabc,2,x,1,VA\n",
			wantCategory: errhandling.CategorySchema,
		},
		{
			name:         "non-numeric age",
			content:      "CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE\n1,old,x,1,VA\n",
			wantCategory: errhandling.CategorySchema,
		},
		{
			name:         "empty dataset",
			content:      "CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE\n",
			wantCategory: errhandling.CategorySchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCSV(t, tt.content)
			src, err := NewCSVSource(path, nil, nil)
			if err != nil {
				t.Fatalf("NewCSVSource: %v", err)
			}
			_, err = src.Fetch(context.Background())
			if err == nil {
				t.Fatal("Fetch should fail")
			}
			if got := errhandling.GetCategory(err); got != tt.wantCategory {
				t.Errorf("category = %s, want %s", got, tt.wantCategory)
			}
		})
	}
}

// TestCSVSourceMissingFile tests the io classification of open failures.
func TestCSVSourceMissingFile(t *testing.T) {
	src, err := NewCSVSource(filepath.Join(t.TempDir(), "nope.csv"), nil, nil)
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	_, err = src.Fetch(context.Background())
	if err == nil {
		t.Fatal("Fetch should fail")
	}
	if got := errhandling.GetCategory(err); got != errhandling.CategoryIO {
		t.Errorf("category = %s, want io", got)
	}
}

// TestTableDistincts tests the option-list helpers.
func TestTableDistincts(t *testing.T) {
	table := Table{
		{Classification: 1, AgeBand: "25-29", County: "Fairfax", State: "VA"},
		{Classification: 0, AgeBand: "0-4", County: "Accomack", State: "VA"},
		{Classification: 1, AgeBand: "25-29", County: "Juneau", State: "AK"},
	}

	if got := table.Classifications(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Classifications() = %v", got)
	}
	if got := table.AgeBands(); len(got) != 2 || got[0] != "0-4" || got[1] != "25-29" {
		t.Errorf("AgeBands() = %v (want band-order)", got)
	}
	if got := table.Counties("VA"); len(got) != 2 || got[0] != "Accomack" {
		t.Errorf("Counties(VA) = %v", got)
	}
	if got := table.Counties(""); len(got) != 3 {
		t.Errorf("Counties(\"\") = %v, want all three", got)
	}
}
