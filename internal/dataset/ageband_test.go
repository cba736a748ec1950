package dataset

import "testing"

// TestDeriveAgeBand tests the right-open 5-year binning over [0,100).
func TestDeriveAgeBand(t *testing.T) {
	tests := []struct {
		name string
		age  float64
		want string
	}{
		{name: "zero", age: 0, want: "0-4"},
		{name: "upper edge of first band", age: 4.9, want: "0-4"},
		{name: "right-open boundary", age: 5, want: "5-9"},
		{name: "mid band", age: 27, want: "25-29"},
		{name: "last band", age: 99.99, want: "95-99"},
		{name: "out of range high", age: 100, want: ""},
		{name: "out of range negative", age: -1, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveAgeBand(tt.age); got != tt.want {
				t.Errorf("DeriveAgeBand(%v) = %q, want %q", tt.age, got, tt.want)
			}
		})
	}
}

// TestAllBands tests the full label sequence.
func TestAllBands(t *testing.T) {
	bands := AllBands()
	if len(bands) != 20 {
		t.Fatalf("len(AllBands()) = %d, want 20", len(bands))
	}
	if bands[0] != "0-4" || bands[19] != "95-99" {
		t.Errorf("band endpoints wrong: first %q last %q", bands[0], bands[19])
	}
}

// TestBandLowerBound tests ordering keys, including unparseable labels.
func TestBandLowerBound(t *testing.T) {
	if got := BandLowerBound("25-29"); got != 25 {
		t.Errorf("BandLowerBound(25-29) = %d, want 25", got)
	}
	if got := BandLowerBound("garbage"); got != 100 {
		t.Errorf("unparseable labels should sort last, got %d", got)
	}
}

// TestIsValidBand tests band label validation.
func TestIsValidBand(t *testing.T) {
	tests := []struct {
		label string
		want  bool
	}{
		{"0-4", true},
		{"95-99", true},
		{"25-29", true},
		{"25-30", false},
		{"3-7", false},
		{"100-104", false},
		{"All", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidBand(tt.label); got != tt.want {
			t.Errorf("IsValidBand(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}
