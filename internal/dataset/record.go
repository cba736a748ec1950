// Package dataset provides the typed record table backing the dashboard.
// The full record set is loaded once at process start and is immutable
// afterwards; reloads swap the whole table atomically.
package dataset

import (
	"sort"
	"strconv"
)

// Record is one row of the source dataset. Fields are strongly typed at the
// load boundary so that filter-value type errors surface at the interface
// rather than deep inside aggregation.
type Record struct {
	// Classification is the numeric classification code.
	Classification int

	// Age is the numeric age used to derive the age band.
	Age float64

	// AgeBand is the derived 5-year age band label ("0-4".."95-99"),
	// empty for ages outside [0,100).
	AgeBand string

	// County is the county name.
	County string

	// CountyCode is the opaque geographic identifier (GEOID). It is never
	// parsed as a number, so codes with leading zeros survive intact.
	CountyCode string

	// State is the two-letter state code.
	State string

	// Extra holds derived fields added by the optional load-time script.
	Extra map[string]interface{}
}

// Table is an immutable slice of records.
type Table []Record

// Classifications returns the distinct classification values, ascending.
func (t Table) Classifications() []int {
	seen := make(map[int]bool)
	for _, r := range t {
		seen[r.Classification] = true
	}
	out := make([]int, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

// AgeBands returns the distinct non-empty age bands present in the table,
// ordered by band lower bound.
func (t Table) AgeBands() []string {
	seen := make(map[string]bool)
	for _, r := range t {
		if r.AgeBand != "" {
			seen[r.AgeBand] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		return BandLowerBound(out[i]) < BandLowerBound(out[j])
	})
	return out
}

// Counties returns the distinct county names for the given state, sorted.
// An empty state returns counties across all states.
func (t Table) Counties(state string) []string {
	seen := make(map[string]bool)
	for _, r := range t {
		if state != "" && r.State != state {
			continue
		}
		if r.County != "" {
			seen[r.County] = true
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// AsMap returns the record as a map for script and expression evaluation.
// Derived Extra fields are included; canonical fields win on collision.
func (r Record) AsMap() map[string]interface{} {
	m := make(map[string]interface{}, 6+len(r.Extra))
	for k, v := range r.Extra {
		m[k] = v
	}
	m["classification"] = r.Classification
	m["age"] = r.Age
	m["ageBand"] = r.AgeBand
	m["county"] = r.County
	m["countyCode"] = r.CountyCode
	m["state"] = r.State
	return m
}

// FormatClassification renders a classification value the way the
// dashboard's option lists do.
func FormatClassification(v int) string {
	return strconv.Itoa(v)
}
