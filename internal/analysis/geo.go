package analysis

import (
	"math"
	"sort"

	"github.com/classmap/runtime/internal/boundary"
	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/pkg/dashboard"
)

// GeoCounts holds the per-county tallies before joining against the
// boundary catalog.
type GeoCounts struct {
	// Total is the number of subset records in the county.
	Total int

	// Matching is the number of those records carrying the distinguished
	// classification value.
	Matching int

	// Name is the county name as carried by the records.
	Name string
}

// CountByCounty tallies subset records per opaque county code, restricted
// to the given state. Matching counts records whose classification equals
// the distinguished class. County codes join as strings — "01001" and
// "1001" are different counties.
func CountByCounty(subset dataset.Table, stateCode string, distinguishedClass int) map[string]GeoCounts {
	counts := make(map[string]GeoCounts)
	for _, r := range subset {
		if stateCode != "" && r.State != stateCode {
			continue
		}
		c := counts[r.CountyCode]
		c.Total++
		if r.Classification == distinguishedClass {
			c.Matching++
		}
		if c.Name == "" {
			c.Name = r.County
		}
		counts[r.CountyCode] = c
	}
	return counts
}

// GeoAggregate joins per-county tallies against the boundary catalog with
// outer-join semantics: every catalog unit appears even with zero records,
// and every record county appears even without geometry. Percentages are
// matching/total*100 rounded to one decimal, and 0 when a county has no
// records — a zero denominator never yields NaN.
func GeoAggregate(subset dataset.Table, catalog *boundary.Catalog, stateCode string, distinguishedClass int) dashboard.GeoAggregate {
	counts := CountByCounty(subset, stateCode, distinguishedClass)

	var units []dashboard.GeoUnit
	seen := make(map[string]bool)

	if catalog != nil {
		for _, bu := range catalog.Units() {
			c := counts[bu.Code]
			units = append(units, dashboard.GeoUnit{
				Code:        bu.Code,
				Name:        bu.Name,
				Total:       c.Total,
				Matching:    c.Matching,
				Percent:     percentOf(c.Matching, c.Total),
				HasGeometry: true,
			})
			seen[bu.Code] = true
		}
	}

	// Counties present in the data but absent from the catalog still count;
	// they render without a shape.
	for _, code := range sortedKeys(counts) {
		if seen[code] {
			continue
		}
		c := counts[code]
		name := c.Name
		if name == "" {
			name = code
		}
		units = append(units, dashboard.GeoUnit{
			Code:     code,
			Name:     name,
			Total:    c.Total,
			Matching: c.Matching,
			Percent:  percentOf(c.Matching, c.Total),
		})
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Code < units[j].Code })
	return dashboard.GeoAggregate{State: stateCode, Units: units}
}

// percentOf returns matching/total*100 rounded to one decimal, and 0 when
// total is zero.
func percentOf(matching, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(matching)/float64(total)*1000) / 10
}
