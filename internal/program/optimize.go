package program

import "github.com/lexpattern/engine/internal/ir"

// Options configures Optimize (spec §4.3 "Optimiser").
type Options struct {
	// StopwordOccurrenceFactor: an event whose key-event occurrence count
	// exceeds total_programs × this factor is a stopword candidate.
	StopwordOccurrenceFactor float64
	// WeightFactor multiplies an alternative key candidate's weight
	// before comparing it against the original key's weight.
	WeightFactor float64
	// MaxRange bounds program.PositionRange for a program to be eligible
	// for relinking.
	MaxRange int64
}

// DefaultOptions returns the spec's documented defaults.
func DefaultOptions() Options {
	return Options{
		StopwordOccurrenceFactor: 0.01,
		WeightFactor:             10.0,
		MaxRange:                 5,
	}
}

// Optimize rewrites which event is the key event for a program when the
// current key is too frequent, per the four-step procedure in spec
// §4.3.
func (t *Table) Optimize(opts Options) {
	t.dropUnusedInstallEdges()

	totalPrograms := float64(t.programs.Len())
	threshold := totalPrograms * opts.StopwordOccurrenceFactor

	var stopwordCandidates []ir.EventID
	for eventID, occ := range t.keyOccurrence {
		if float64(occ) > threshold {
			t.stopwords[eventID] = true
			stopwordCandidates = append(stopwordCandidates, eventID)
		}
	}

	for _, keyEvent := range stopwordCandidates {
		refs, _ := t.EventProgramList(keyEvent)
		for _, pt := range refs {
			t.tryRelink(ProgramRef(pt.ProgramRef), keyEvent, opts)
		}
	}
}

// dropUnusedInstallEdges removes installation edges for events no
// trigger-def anywhere references (step 1). An event only ever reaches
// the install index via CreateTrigger(isKey=true), and keyOccurrence is
// only ever incremented there, so an event with zero recorded key
// occurrence has no install edge to drop in this implementation; this
// pass exists for the relink path, which may leave stale install edges
// under the original key after a program moves to an alternative key.
func (t *Table) dropUnusedInstallEdges() {
	for eventID, head := range t.installHead {
		kept, err := t.install.Values(head)
		if err != nil || len(kept) == 0 {
			delete(t.installHead, eventID)
		}
	}
}

// tryRelink examines keyEvent's installed program for an alternative key
// candidate and, if one qualifies, moves the program's installation
// edge to that event (spec §4.3 step 3).
func (t *Table) tryRelink(ref ProgramRef, keyEvent ir.EventID, opts Options) {
	p, err := t.programs.Get(int32(ref))
	if err != nil || p.PositionRange > opts.MaxRange {
		return
	}

	candidate, ok := t.bestAlternativeKey(p, keyEvent)
	if !ok {
		return
	}

	originalWeight := t.weight(keyEvent)
	altWeight := t.weight(candidate) * opts.WeightFactor
	if altWeight >= originalWeight {
		return
	}

	t.installOn(candidate, ref, keyEvent)

	// Step 4: delimiter events of relinked programs are stopwords too,
	// so the state machine remembers their data for replay.
	_ = t.triggerDefs.Walk(p.TriggerDefHead, func(td ir.TriggerDef) bool {
		if td.SigType == ir.SigDel {
			t.stopwords[td.EventID] = true
		}
		return true
	})
}

// bestAlternativeKey finds the highest-sig_val Sequence-or-Within
// trigger whose event differs from keyEvent, rejecting the program
// entirely if any of its triggers is an Any (an Any trigger disqualifies
// alternation because every event is already effectively a key).
func (t *Table) bestAlternativeKey(p *ir.Program, keyEvent ir.EventID) (ir.EventID, bool) {
	var (
		best    ir.EventID
		bestSig uint32
		found   bool
		sawAny  bool
	)
	_ = t.triggerDefs.Walk(p.TriggerDefHead, func(td ir.TriggerDef) bool {
		switch {
		case td.SigType == ir.SigAny:
			sawAny = true
		case td.EventID == keyEvent:
			// not an alternative, it's the event we're trying to replace
		case td.SigType != ir.SigSequence && td.SigType != ir.SigWithin:
			// only Sequence/Within triggers are eligible alternative keys
		case !found || td.SigVal > bestSig:
			best, bestSig, found = td.EventID, td.SigVal, true
		}
		return true
	})
	if sawAny || !found {
		return 0, false
	}
	return best, true
}
