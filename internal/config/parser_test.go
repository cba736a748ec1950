package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validJSONConfig = `{
  "schemaVersion": "1.0.0",
  "dashboard": {
    "name": "County Health",
    "version": "1.0.0",
    "dataset": {"path": "data/records.csv"},
    "boundary": {"path": "data/counties.geojson", "stateCode": "VA", "stateFips": "51"}
  }
}`

const validYAMLConfig = `schemaVersion: "1.0.0"
dashboard:
  name: County Health
  version: "1.0.0"
  dataset:
    path: data/records.csv
  boundary:
    path: data/counties.geojson
    stateCode: VA
    stateFips: "51"
`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestParseConfigJSON tests end-to-end parse and validation of JSON.
func TestParseConfigJSON(t *testing.T) {
	path := writeConfig(t, "dashboard.json", validJSONConfig)

	result := ParseConfig(path)
	if !result.IsValid() {
		t.Fatalf("ParseConfig errors: %v", result.AllErrors())
	}
	if result.Format != "json" {
		t.Errorf("format = %q, want json", result.Format)
	}
	if result.Data["schemaVersion"] != "1.0.0" {
		t.Errorf("schemaVersion = %v", result.Data["schemaVersion"])
	}
}

// TestParseConfigYAML tests end-to-end parse and validation of YAML.
func TestParseConfigYAML(t *testing.T) {
	path := writeConfig(t, "dashboard.yaml", validYAMLConfig)

	result := ParseConfig(path)
	if !result.IsValid() {
		t.Fatalf("ParseConfig errors: %v", result.AllErrors())
	}
	if result.Format != "yaml" {
		t.Errorf("format = %q, want yaml", result.Format)
	}
}

// TestParseConfigMissingFile tests the IO error path.
func TestParseConfigMissingFile(t *testing.T) {
	result := ParseConfig(filepath.Join(t.TempDir(), "absent.json"))
	if result.IsValid() {
		t.Fatal("missing file should not be valid")
	}
	if result.ParseErrors[0].Type != ErrorTypeIO {
		t.Errorf("error type = %q, want io", result.ParseErrors[0].Type)
	}
}

// TestParseJSONStringErrors tests syntax and shape errors with location
// info.
func TestParseJSONStringErrors(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantType string
	}{
		{name: "empty", content: "", wantType: ErrorTypeSyntax},
		{name: "syntax error", content: "{\n  \"a\": ,\n}", wantType: ErrorTypeSyntax},
		{name: "array not object", content: `[1, 2]`, wantType: ErrorTypeFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseJSONString(tt.content)
			if result.IsValid() {
				t.Fatal("should not be valid")
			}
			if result.Errors[0].Type != tt.wantType {
				t.Errorf("type = %q, want %q", result.Errors[0].Type, tt.wantType)
			}
		})
	}
}

// TestParseJSONStringLineInfo tests line/column extraction for syntax
// errors.
func TestParseJSONStringLineInfo(t *testing.T) {
	result := ParseJSONString("{\n  \"a\": 1,\n  \"b\": ,\n}")
	if result.IsValid() {
		t.Fatal("should not be valid")
	}
	if result.Errors[0].Line != 3 {
		t.Errorf("line = %d, want 3", result.Errors[0].Line)
	}
}

// TestParseYAMLStringErrors tests YAML error paths.
func TestParseYAMLStringErrors(t *testing.T) {
	result := ParseYAMLString("key: [unclosed")
	if result.IsValid() {
		t.Fatal("should not be valid")
	}

	scalar := ParseYAMLString("just a scalar")
	if scalar.IsValid() {
		t.Fatal("scalar should not be a valid config")
	}
	if scalar.Errors[0].Type != ErrorTypeFormat {
		t.Errorf("type = %q, want format", scalar.Errors[0].Type)
	}
}

// TestDetectFormat tests extension-based detection.
func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "a.json", want: "json"},
		{path: "a.yaml", want: "yaml"},
		{path: "a.yml", want: "yaml"},
		{path: "a.YAML", want: "yaml"},
		{path: "a.txt", want: ""},
		{path: "a", want: ""},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

// TestParseConfigAutoDetect tests content sniffing for unknown extensions.
func TestParseConfigAutoDetect(t *testing.T) {
	path := writeConfig(t, "dashboard.conf", validJSONConfig)

	result := ParseConfig(path)
	if !result.IsValid() {
		t.Fatalf("ParseConfig errors: %v", result.AllErrors())
	}
	if result.Format != "json" {
		t.Errorf("format = %q, want json from sniffing", result.Format)
	}
}
