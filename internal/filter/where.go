package filter

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/classmap/runtime/internal/dataset"
	"github.com/classmap/runtime/internal/errhandling"
)

// Error codes for the where predicate
const (
	ErrCodeInvalidWhere = "INVALID_WHERE"
)

// Where is a compiled ad-hoc record predicate, ANDed with the selection.
// Record fields are available as variables (classification, age, ageBand,
// county, countyCode, state, plus any script-derived fields).
type Where struct {
	source  string
	program *vm.Program
}

// NewWhere compiles a predicate expression. An empty expression returns
// (nil, nil): no predicate.
// AllowUndefinedVariables keeps records without a derived field from
// failing evaluation outright; missing variables compare as nil.
func NewWhere(source string) (*Where, error) {
	if source == "" {
		return nil, nil
	}
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, errhandling.NewInputError(ErrCodeInvalidWhere,
			fmt.Sprintf("invalid where expression: %v", err), err)
	}
	return &Where{source: source, program: program}, nil
}

// Eval runs the predicate against one record. Non-boolean results are an
// input error — a predicate that yields a number is a caller mistake, not
// something to guess a truthiness for.
func (w *Where) Eval(r dataset.Record) (bool, error) {
	output, err := expr.Run(w.program, r.AsMap())
	if err != nil {
		return false, err
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("where expression %q returned %T, want bool", w.source, output)
	}
	return result, nil
}

// Source returns the original expression text.
func (w *Where) Source() string {
	return w.source
}
