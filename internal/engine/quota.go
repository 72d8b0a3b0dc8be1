package engine

import "github.com/lexpattern/engine/internal/ir"

// TransitionBudget bounds how many follow-events a single do_transition
// call may process before aborting with an internal-invariant error.
//
// Spec §4.4.2 describes the follow-event queue as drained entirely
// "before returning to the next external event" but does not itself
// bound its size; a pathological program graph (a completion whose
// follow-event reinstalls a program that immediately completes again)
// could cascade without limit. This budget guards one do_transition
// call the way the teacher's QuotaEnforcer guarded one flow — an
// engineering addition, not a spec requirement.
type TransitionBudget struct {
	max     int
	current int
}

// NewTransitionBudget returns a budget allowing up to max follow-events
// per do_transition call.
func NewTransitionBudget(max int) *TransitionBudget {
	return &TransitionBudget{max: max}
}

// Consume counts one more follow-event processed and fails once the
// budget is exceeded.
func (b *TransitionBudget) Consume(eventID ir.EventID) error {
	b.current++
	if b.current > b.max {
		return NewInternalInvariant(eventID, "follow-event queue exceeded transition budget")
	}
	return nil
}

// Reset zeroes the step counter; called at the start of every
// do_transition call.
func (b *TransitionBudget) Reset() {
	b.current = 0
}

// Current returns the number of follow-events consumed so far in the
// current transition.
func (b *TransitionBudget) Current() int {
	return b.current
}
