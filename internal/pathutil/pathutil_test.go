package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"empty", "", true},
		{"null byte", "a\x00b", true},
		{"simple segment", "..", true},
		{"leading segment", "../foo", true},
		{"middle segment", "foo/../bar", true},
		{"valid relative", "data/records.csv", false},
		{"valid nested", "state/va/counties.geojson", false},
		{"single segment", "records.csv", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilePath(%q) err = %v, wantErr %v", tt.path, err, tt.wantErr)
			}
		})
	}
}

func TestEnsureOutputDir(t *testing.T) {
	base := t.TempDir()

	// Creates missing directories, including intermediates.
	nested := filepath.Join(base, "snap", "views")
	if err := EnsureOutputDir(nested); err != nil {
		t.Fatalf("EnsureOutputDir(%q) = %v", nested, err)
	}
	info, err := os.Stat(nested)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	// Idempotent on an existing directory.
	if err := EnsureOutputDir(nested); err != nil {
		t.Errorf("EnsureOutputDir on existing dir = %v", err)
	}

	// A regular file in the way is an error.
	filePath := filepath.Join(base, "occupied")
	if err := os.WriteFile(filePath, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := EnsureOutputDir(filePath); err == nil {
		t.Error("EnsureOutputDir should fail when the path is a regular file")
	}

	if err := EnsureOutputDir(""); err == nil {
		t.Error("EnsureOutputDir should fail for an empty path")
	}
}
