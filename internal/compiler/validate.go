package compiler

import (
	"fmt"

	"github.com/lexpattern/engine/internal/program"
)

// Validation error codes (E200-E299): a post-compile pass over the
// accumulated program.Table, run by Compiler.Compile in addition to the
// immediately fatal errors the stack-machine operations raise inline.
const (
	ErrNegativePositionRange = "E200" // program.PositionRange < 0
	ErrNonPositiveCount      = "E201" // ActionSlot.Count <= 0
	ErrTooManyKeyTriggers    = "E202" // more key trigger-defs than the runtime will accept
	ErrDuplicatePatternName  = "E203" // two visible programs published under the same name
	ErrUnreachableProgram    = "E204" // program has no trigger-defs at all
)

// maxKeyTriggerDefs mirrors engine.maxKeyTriggerDefs: the runtime's
// deterministic limit on identical key-event trigger-defs per program
// (spec §4.4.5). Validate catches a violation here, at compile time,
// instead of only as an engine.RuntimeError the first time the program
// installs.
const maxKeyTriggerDefs = 32

// ValidationError is one post-compile schema violation.
type ValidationError struct {
	Field   string
	Message string
	Code    string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks every program the compiler created against structural
// invariants that a well-formed program.Table must hold. It does not
// fail fast: every violation found is returned.
func Validate(programs *program.Table, refs []program.ProgramRef) []ValidationError {
	var errs []ValidationError
	seenNames := make(map[string]bool)

	for _, ref := range refs {
		p, err := programs.Get(ref)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("programs[%d]", ref),
				Message: err.Error(),
				Code:    ErrUnreachableProgram,
			})
			continue
		}

		if p.PositionRange < 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("programs[%s].position_range", p.Name),
				Message: fmt.Sprintf("position_range %d must not be negative", p.PositionRange),
				Code:    ErrNegativePositionRange,
			})
		}

		if p.SlotTemplate.Count <= 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("programs[%s].count", p.Name),
				Message: fmt.Sprintf("action slot count %d must be positive", p.SlotTemplate.Count),
				Code:    ErrNonPositiveCount,
			})
		}

		defs, err := programs.TriggerDefs().Values(p.TriggerDefHead)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("programs[%s].trigger_defs", p.Name),
				Message: err.Error(),
				Code:    ErrUnreachableProgram,
			})
			continue
		}
		if len(defs) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("programs[%s].trigger_defs", p.Name),
				Message: "program has no trigger-defs and can never install",
				Code:    ErrUnreachableProgram,
			})
		}

		keyCount := make(map[string]int)
		for _, td := range defs {
			if td.IsKey {
				keyCount[td.EventID.String()]++
			}
		}
		for event, n := range keyCount {
			if n > maxKeyTriggerDefs {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("programs[%s].trigger_defs[%s]", p.Name, event),
					Message: fmt.Sprintf("%d key trigger-defs on one event exceeds the runtime's limit of %d", n, maxKeyTriggerDefs),
					Code:    ErrTooManyKeyTriggers,
				})
			}
		}

		if p.Visible {
			if seenNames[p.Name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("programs[%s]", p.Name),
					Message: fmt.Sprintf("pattern name %q published by more than one visible program", p.Name),
					Code:    ErrDuplicatePatternName,
				})
			}
			seenNames[p.Name] = true
		}
	}

	return errs
}
