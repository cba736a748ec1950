package dataset

import (
	"context"
	"strings"
	"testing"
)

// TestFieldScriptApply tests derived fields from a transform function.
func TestFieldScriptApply(t *testing.T) {
	script, err := NewFieldScript(`
		function transform(record) {
			return { senior: record.age >= 65, stateLower: record.state.toLowerCase() };
		}
	`)
	if err != nil {
		t.Fatalf("NewFieldScript: %v", err)
	}

	extra, err := script.Apply(map[string]interface{}{"age": 70.0, "state": "VA"})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if extra["senior"] != true {
		t.Errorf("senior = %v, want true", extra["senior"])
	}
	if extra["stateLower"] != "va" {
		t.Errorf("stateLower = %v, want va", extra["stateLower"])
	}
}

// TestFieldScriptCannotOverrideCanonical tests that canonical fields are protected.
func TestFieldScriptCannotOverrideCanonical(t *testing.T) {
	script, err := NewFieldScript(`
		function transform(record) {
			return { classification: 999, derived: 1 };
		}
	`)
	if err != nil {
		t.Fatalf("NewFieldScript: %v", err)
	}

	extra, err := script.Apply(map[string]interface{}{"classification": 1})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if _, ok := extra["classification"]; ok {
		t.Error("canonical field override should be dropped")
	}
	if _, ok := extra["derived"]; !ok {
		t.Error("non-canonical derived field should survive")
	}
}

// TestFieldScriptValidation tests compile-time rejection.
func TestFieldScriptValidation(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "empty", source: "   \n\t"},
		{name: "syntax error", source: "function transform( {"},
		{name: "missing transform", source: "var x = 1;"},
		{name: "transform not a function", source: "var transform = 42;"},
		{name: "too long", source: "function transform(r){return {};}\n" + strings.Repeat("//x\n", MaxScriptLength/4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFieldScript(tt.source); err == nil {
				t.Error("NewFieldScript should fail")
			}
		})
	}
}

// TestCSVSourceWithScript tests end-to-end derived fields during load.
func TestCSVSourceWithScript(t *testing.T) {
	path := writeCSV(t, `CLASSIFICATION,AGE,COUNTY,COUNTY_CODE,STATE
1,70,Fairfax,51059,VA
`)

	script, err := NewFieldScript(`function transform(r) { return { senior: r.age >= 65 }; }`)
	if err != nil {
		t.Fatalf("NewFieldScript: %v", err)
	}
	src, err := NewCSVSource(path, nil, script)
	if err != nil {
		t.Fatalf("NewCSVSource: %v", err)
	}
	table, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if table[0].Extra["senior"] != true {
		t.Errorf("Extra = %v, want senior=true", table[0].Extra)
	}
}
