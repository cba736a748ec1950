package analysis

import (
	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Summarize computes the scalar summary over a subset: total record count,
// count of records with the distinguished classification, and the share as
// a percentage. An empty subset yields all zeros — never NaN.
func Summarize(subset dataset.Table, distinguishedClass int) dashboard.Stats {
	s := dashboard.Stats{Total: len(subset)}
	for _, r := range subset {
		if r.Classification == distinguishedClass {
			s.Matching++
		}
	}
	if s.Total > 0 {
		s.Percent = float64(s.Matching) / float64(s.Total) * 100
	}
	return s
}
