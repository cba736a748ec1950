package analysis

import (
	"testing"

	"github.com/classmap/runtime/internal/dataset"
)

// TestSummarize tests the summary over a worked example.
func TestSummarize(t *testing.T) {
	subset := make(dataset.Table, 0, 100)
	for i := 0; i < 100; i++ {
		cls := 0
		if i < 40 {
			cls = 1
		}
		subset = append(subset, dataset.Record{Classification: cls})
	}

	s := Summarize(subset, 1)
	if s.Total != 100 || s.Matching != 40 || s.Percent != 40.0 {
		t.Errorf("Summarize() = %+v, want total 100 matching 40 percent 40", s)
	}
}

// TestSummarizeEmpty tests the zero-denominator rule.
func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 1)
	if s.Total != 0 || s.Matching != 0 || s.Percent != 0 {
		t.Errorf("Summarize(nil) = %+v, want all zeros", s)
	}
}

// TestSummarizeDistinguishedClass tests that the distinguished class is
// configurable rather than hard-coded to 1.
func TestSummarizeDistinguishedClass(t *testing.T) {
	subset := dataset.Table{
		{Classification: 2},
		{Classification: 2},
		{Classification: 1},
		{Classification: 0},
	}
	s := Summarize(subset, 2)
	if s.Matching != 2 || s.Percent != 50.0 {
		t.Errorf("Summarize() = %+v, want matching 2 percent 50", s)
	}
}
