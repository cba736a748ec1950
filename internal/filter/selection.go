// Package filter evaluates dashboard filter selections against the record
// table. Constraints are conjunctive exact matches; "All" (or absence)
// means a dimension is unconstrained. Selections are passed by value — the
// package holds no state of its own.
package filter

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/errhandling"
	"github.com/classmap/runtime/pkg/dashboard"
)

// Error codes for selection handling
const (
	ErrCodeInvalidClassification = "INVALID_CLASSIFICATION"
	ErrCodeInvalidAgeBand        = "INVALID_AGE_BAND"
)

// Query parameter names understood by ParseQuery.
const (
	ParamClassification = "classification"
	ParamAgeBand        = "ageBand"
	ParamCounty         = "county"
	ParamWhere          = "q"
)

// Constraints is the typed, validated form of a dashboard.Selection.
// Conversion happens once at the interface boundary; by the time records
// are scanned every active constraint has its record type.
type Constraints struct {
	// Classification is the classification constraint; nil when inactive.
	Classification *int

	// AgeBand is the age-band constraint; empty when inactive.
	AgeBand string

	// County is the county-name constraint; empty when inactive.
	County string
}

// Compile validates a selection and converts it to typed constraints.
// A classification value that does not parse as an integer is a caller
// input error and is propagated — never silently coerced or ignored.
func Compile(sel dashboard.Selection) (Constraints, error) {
	n := sel.Normalized()
	c := Constraints{AgeBand: n.AgeBand, County: n.County}

	if n.Classification != "" {
		v, err := strconv.Atoi(n.Classification)
		if err != nil {
			return Constraints{}, errhandling.NewInputError(ErrCodeInvalidClassification,
				fmt.Sprintf("classification filter %q is not an integer", n.Classification), err)
		}
		c.Classification = &v
	}

	if c.AgeBand != "" && !dataset.IsValidBand(c.AgeBand) {
		return Constraints{}, errhandling.NewInputError(ErrCodeInvalidAgeBand,
			fmt.Sprintf("age band filter %q is not a valid band label", c.AgeBand), nil)
	}

	return c, nil
}

// Matches reports whether a record satisfies every active constraint.
func (c Constraints) Matches(r dataset.Record) bool {
	if c.Classification != nil && r.Classification != *c.Classification {
		return false
	}
	if c.AgeBand != "" && r.AgeBand != c.AgeBand {
		return false
	}
	if c.County != "" && r.County != c.County {
		return false
	}
	return true
}

// Apply returns the subset of the table satisfying the selection, plus the
// optional where predicate. With no active constraints and no predicate it
// returns the input table unchanged (identity, no copy).
func Apply(table dataset.Table, sel dashboard.Selection, where *Where) (dataset.Table, error) {
	c, err := Compile(sel)
	if err != nil {
		return nil, err
	}

	if c.Classification == nil && c.AgeBand == "" && c.County == "" && where == nil {
		return table, nil
	}

	subset := make(dataset.Table, 0, len(table))
	for i, r := range table {
		if !c.Matches(r) {
			continue
		}
		if where != nil {
			ok, err := where.Eval(r)
			if err != nil {
				return nil, errhandling.NewInputError(ErrCodeInvalidWhere,
					fmt.Sprintf("where predicate failed at record %d: %v", i, err), err)
			}
			if !ok {
				continue
			}
		}
		subset = append(subset, r)
	}
	return subset, nil
}

// ParseQuery extracts a selection from HTTP query parameters. Values are
// carried verbatim; validation happens in Compile so that parse errors
// surface with their error codes.
func ParseQuery(values url.Values) dashboard.Selection {
	return dashboard.Selection{
		Classification: values.Get(ParamClassification),
		AgeBand:        values.Get(ParamAgeBand),
		County:         values.Get(ParamCounty),
	}
}
