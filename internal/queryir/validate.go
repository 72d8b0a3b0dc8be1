package queryir

import (
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
)

// ValidationResult contains portability analysis of a query.
type ValidationResult struct {
	// IsPortable indicates if the query uses only portable fragment
	// features.
	IsPortable bool

	// Warnings lists non-portable features used in the query. Empty
	// when IsPortable is true.
	Warnings []string
}

// Validate checks if a query conforms to the portable fragment rules:
//  1. No NULLs - all field comparisons must use explicit values
//  2. Explicit bindings - no SELECT * wildcards
//
// Non-portable queries are allowed and will execute correctly; Validate
// only surfaces warnings. Validate is a pure function with no side
// effects.
func Validate(query Query) ValidationResult {
	v := &validator{warnings: []string{}}
	v.validateQuery(query)

	return ValidationResult{
		IsPortable: len(v.warnings) == 0,
		Warnings:   v.warnings,
	}
}

type validator struct {
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	if q == nil {
		v.addWarning("nil query - portable fragment requires a valid query node")
		return
	}

	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	default:
		v.addWarning("unknown query type: %T - portability cannot be verified", q)
	}
}

func (v *validator) validateSelect(sel Select) {
	if len(sel.Bindings) == 0 {
		v.addWarning("empty bindings (SELECT *) - portable fragment requires explicit field selection")
	}
	if sel.Filter != nil {
		v.validatePredicate(sel.Filter)
	}
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return
	}

	switch pred := p.(type) {
	case Equals:
		v.validateEquals(pred)
	case *Equals:
		v.validateEquals(*pred)
	case And:
		v.validateAnd(pred)
	case *And:
		v.validateAnd(*pred)
	default:
		v.addWarning("unknown predicate type: %T - portability cannot be verified", p)
	}
}

func (v *validator) validateEquals(eq Equals) {
	if _, isNull := eq.Value.(ir.NullValue); isNull {
		v.addWarning("field %q compared to NULL - portable fragment requires explicit values", eq.Field)
	}
}

func (v *validator) validateAnd(and And) {
	for _, subPred := range and.Predicates {
		v.validatePredicate(subPred)
	}
}
