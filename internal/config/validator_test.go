package config

import (
	"strings"
	"testing"
)

// TestValidateConfigValid tests a complete valid configuration.
func TestValidateConfigValid(t *testing.T) {
	result := ValidateConfig(map[string]interface{}{
		"schemaVersion": "1.0.0",
		"dashboard": map[string]interface{}{
			"name":    "County Health",
			"version": "1.0.0",
			"dataset": map[string]interface{}{
				"path": "data/records.csv",
			},
			"boundary": map[string]interface{}{
				"path":      "data/counties.geojson",
				"stateCode": "VA",
				"stateFips": "51",
			},
		},
	})
	if !result.Valid {
		t.Errorf("valid config rejected: %v", result.Errors)
	}
}

// TestValidateConfigErrors tests rejection with useful paths.
func TestValidateConfigErrors(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		wantPath string
	}{
		{
			name:     "nil data",
			data:     nil,
			wantPath: "/",
		},
		{
			name:     "empty data",
			data:     map[string]interface{}{},
			wantPath: "/",
		},
		{
			name: "missing dashboard",
			data: map[string]interface{}{
				"schemaVersion": "1.0.0",
			},
			wantPath: "/",
		},
		{
			name: "bad schema version",
			data: map[string]interface{}{
				"schemaVersion": "one",
				"dashboard": map[string]interface{}{
					"name":    "x",
					"version": "1.0.0",
					"dataset": map[string]interface{}{"path": "a.csv"},
					"boundary": map[string]interface{}{
						"path": "b.geojson", "stateCode": "VA", "stateFips": "51",
					},
				},
			},
			wantPath: "/schemaVersion",
		},
		{
			name: "missing dataset path",
			data: map[string]interface{}{
				"schemaVersion": "1.0.0",
				"dashboard": map[string]interface{}{
					"name":    "x",
					"version": "1.0.0",
					"dataset": map[string]interface{}{},
					"boundary": map[string]interface{}{
						"path": "b.geojson", "stateCode": "VA", "stateFips": "51",
					},
				},
			},
			wantPath: "/dashboard/dataset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateConfig(tt.data)
			if result.Valid {
				t.Fatal("should be invalid")
			}
			found := false
			for _, e := range result.Errors {
				if strings.HasPrefix(e.Path, tt.wantPath) {
					found = true
				}
			}
			if !found {
				t.Errorf("no error under path %q; got %v", tt.wantPath, result.Errors)
			}
		})
	}
}

// TestValidateConfigUnknownField tests additionalProperties rejection.
func TestValidateConfigUnknownField(t *testing.T) {
	result := ValidateConfig(map[string]interface{}{
		"schemaVersion": "1.0.0",
		"bogus":         true,
		"dashboard": map[string]interface{}{
			"name":    "x",
			"version": "1.0.0",
			"dataset": map[string]interface{}{"path": "a.csv"},
			"boundary": map[string]interface{}{
				"path": "b.geojson", "stateCode": "VA", "stateFips": "51",
			},
		},
	})
	if result.Valid {
		t.Error("unknown top-level field should be rejected")
	}
}

// TestGetEmbeddedSchema tests that the schema is embedded.
func TestGetEmbeddedSchema(t *testing.T) {
	if len(GetEmbeddedSchema()) == 0 {
		t.Fatal("embedded schema is empty")
	}
	if !strings.Contains(string(GetEmbeddedSchema()), "dashboard-schema") {
		t.Error("embedded schema missing identifier")
	}
}
