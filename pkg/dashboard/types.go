// Package dashboard provides public types for the Classmap dashboard runtime.
// This package is intended to be importable by external projects that need
// to consume the derived tables or drive the pipeline programmatically.
package dashboard

import "time"

// SelectAll is the sentinel value meaning "no constraint" for a filter
// dimension. An empty string is equivalent.
const SelectAll = "All"

// Selection is the complete filter state of the dashboard. Each field is an
// optional exact-match constraint; "All" or "" means the dimension is
// unconstrained. Selections travel by value through the pipeline — there is
// no ambient "currently selected" state anywhere in the runtime.
type Selection struct {
	// Classification is the classification constraint as supplied by the
	// caller. When active it must be convertible to an integer; a
	// non-numeric value is a caller input error, not a silent no-op.
	Classification string `json:"classification,omitempty"`

	// AgeBand is the derived age-band constraint (e.g. "25-29").
	AgeBand string `json:"ageBand,omitempty"`

	// County is the county-name constraint.
	County string `json:"county,omitempty"`
}

// Normalized returns a copy with "All" collapsed to the empty string so
// that equivalent selections compare and hash identically.
func (s Selection) Normalized() Selection {
	if s.Classification == SelectAll {
		s.Classification = ""
	}
	if s.AgeBand == SelectAll {
		s.AgeBand = ""
	}
	if s.County == SelectAll {
		s.County = ""
	}
	return s
}

// IsUnconstrained reports whether the selection has no active constraint.
func (s Selection) IsUnconstrained() bool {
	n := s.Normalized()
	return n.Classification == "" && n.AgeBand == "" && n.County == ""
}

// Canonical returns the canonical string form of the selection, used as the
// memoization key. Equivalent selections produce identical strings.
func (s Selection) Canonical() string {
	n := s.Normalized()
	return "classification=" + n.Classification + "|ageBand=" + n.AgeBand + "|county=" + n.County
}

// CrossTab is a cross-tabulation of classification against age band,
// row-normalized to percentages. The grid is always complete: every
// row/column combination present in the axes has a cell, zero-filled when
// no records fall in it. A row whose classification has zero matching
// records is all zeros rather than undefined.
type CrossTab struct {
	// Rows holds the classification values forming the row axis, ascending.
	Rows []int `json:"rows"`

	// Columns holds the age-band labels forming the column axis, ordered by
	// band lower bound.
	Columns []string `json:"columns"`

	// Cells holds the percentages; Cells[i][j] is the share of row i's
	// records falling in column j. Non-empty rows sum to 100.
	Cells [][]float64 `json:"cells"`
}

// GeoUnit is one geographic unit (county) of a GeoAggregate.
type GeoUnit struct {
	// Code is the opaque geographic identifier (GEOID). Codes are never
	// treated as numbers so leading zeros survive.
	Code string `json:"code"`

	// Name is the human-readable unit name, from the boundary catalog when
	// available, otherwise from the records.
	Name string `json:"name"`

	// Total is the total record count for the unit.
	Total int `json:"total"`

	// Matching is the count of records with the distinguished classification.
	Matching int `json:"matching"`

	// Percent is Matching/Total*100 rounded to one decimal, 0 when Total is 0.
	Percent float64 `json:"percent"`

	// HasGeometry indicates whether the boundary catalog has a polygon for
	// this unit. Units present only in the records still appear, unmapped.
	HasGeometry bool `json:"hasGeometry"`
}

// GeoAggregate is the per-county aggregate for one state, with outer-join
// semantics: every boundary-catalog unit appears even with zero records,
// and every record's unit appears even without geometry.
type GeoAggregate struct {
	// State is the state code the aggregate is restricted to (e.g. "VA").
	State string `json:"state"`

	// Units holds one entry per geographic unit, sorted by code. The order
	// carries no meaning beyond rendering determinism.
	Units []GeoUnit `json:"units"`
}

// Stats is the summary produced by the statistics summarizer.
type Stats struct {
	// Total is the number of records in the filtered subset.
	Total int `json:"total"`

	// Matching is the count of records with the distinguished classification.
	Matching int `json:"matching"`

	// Percent is Matching/Total*100, 0 when Total is 0.
	Percent float64 `json:"percent"`
}

// DashboardData bundles every derived table for one selection. It is the
// unit of memoization: recomputing it for an identical selection against an
// unchanged dataset yields an identical value.
type DashboardData struct {
	// Selection is the normalized selection the tables were derived from.
	Selection Selection `json:"selection"`

	// CrossTab is the classification x age-band percentage grid.
	CrossTab CrossTab `json:"crossTab"`

	// Geo is the per-county aggregate.
	Geo GeoAggregate `json:"geo"`

	// Stats is the summary for the stats box.
	Stats Stats `json:"stats"`

	// Subset is the filtered record count (equals Stats.Total).
	Subset int `json:"subset"`
}

// Metrics carries per-stage timings for one pipeline run.
type Metrics struct {
	// FilterDuration is the time spent evaluating the selection.
	FilterDuration time.Duration `json:"filterDuration"`

	// CrossTabDuration is the time spent cross-tabulating.
	CrossTabDuration time.Duration `json:"crossTabDuration"`

	// GeoDuration is the time spent in the geographic aggregator.
	GeoDuration time.Duration `json:"geoDuration"`

	// TotalDuration is the end-to-end run time.
	TotalDuration time.Duration `json:"totalDuration"`

	// FromCache indicates the result was served from the memo table.
	FromCache bool `json:"fromCache"`
}

// Options lists the values offered by the dashboard's filter widgets.
// Each list starts with "All".
type Options struct {
	Classifications []string `json:"classifications"`
	AgeBands        []string `json:"ageBands"`
	Counties        []string `json:"counties"`
}

// Bookmark is a named, saved selection.
type Bookmark struct {
	// Name is the unique bookmark name.
	Name string `json:"name"`

	// Selection is the saved filter state.
	Selection Selection `json:"selection"`

	// SavedAt is when the bookmark was created or last overwritten.
	SavedAt time.Time `json:"savedAt"`
}

// SnapshotFile describes one rendered view written by the snapshot command.
type SnapshotFile struct {
	// View is the renderer type ("heatmap", "choropleth", ...).
	View string `json:"view"`

	// Path is the file the view was written to.
	Path string `json:"path"`

	// Bytes is the rendered size.
	Bytes int `json:"bytes"`
}

// SnapshotResult summarizes a snapshot run.
type SnapshotResult struct {
	// OutputDir is the directory the views were written to.
	OutputDir string `json:"outputDir"`

	// Files lists the rendered views.
	Files []SnapshotFile `json:"files"`

	// Stats is the summary for the rendered selection.
	Stats Stats `json:"stats"`

	// StartedAt is when rendering started.
	StartedAt time.Time `json:"startedAt"`

	// CompletedAt is when rendering completed.
	CompletedAt time.Time `json:"completedAt"`
}
