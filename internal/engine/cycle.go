package engine

import "github.com/lexpattern/engine/internal/ir"

// cycleKey identifies one follow-event occurrence within a single
// do_transition call.
type cycleKey struct {
	eventID ir.EventID
	ordpos  int64
}

// cycleGuard detects a follow-event loop within one do_transition call:
// the same event id recurring at the same ordinal position more than
// once signals a program graph feeding its own follow-event back to
// itself, rather than genuine cascading completions. A fresh guard is
// built for every do_transition call.
type cycleGuard struct {
	seen map[cycleKey]bool
}

func newCycleGuard() *cycleGuard {
	return &cycleGuard{seen: make(map[cycleKey]bool)}
}

// wouldCycle reports whether (eventID, ordpos) has already been
// processed as a follow-event in this transition.
func (g *cycleGuard) wouldCycle(eventID ir.EventID, ordpos int64) bool {
	return g.seen[cycleKey{eventID, ordpos}]
}

// record marks (eventID, ordpos) as processed in this transition.
func (g *cycleGuard) record(eventID ir.EventID, ordpos int64) {
	g.seen[cycleKey{eventID, ordpos}] = true
}
