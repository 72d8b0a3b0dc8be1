package engine

import (
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
)

// stopwordEntry is the most recent remembered occurrence of a stopword
// event, kept so a relinked program can replay it once it installs on
// its alternative key (spec §4.5).
type stopwordEntry struct {
	data      ir.EventData
	timestamp int64
}

// replayPastEvent implements spec §4.5: when a relinked program installs
// on its alternative key event, the state machine replays the most
// recent remembered occurrence of the program's original key event
// (pastEventID) against the freshly built rule, provided it is still
// within the program's position range. If a SigDel delimiter for this
// program fired more recently than the replayed occurrence, the rule is
// deactivated instead: a delimiter intervened between the remembered
// occurrence and now.
//
// Replay is defensive, not generative: it must never itself produce a
// follow-event. A program whose slot completes during replay with a
// follow-event pending signals ErrCodeInternalInvariant.
func (m *Machine) replayPastEvent(ruleRef int32, p *ir.Program, pastEventID ir.EventID) error {
	entry, ok := m.stopwordLog[pastEventID]
	if !ok {
		return nil
	}
	if entry.data.StartOrdpos+p.PositionRange < m.clock.Current() {
		return nil
	}

	rule, err := m.rules.Get(ruleRef)
	if err != nil {
		return fmt.Errorf("engine: replay_past_event: %w", err)
	}
	slot, err := m.slots.Get(rule.ActionSlotRef)
	if err != nil {
		return fmt.Errorf("engine: replay_past_event: %w", err)
	}

	defs, err := m.programs.TriggerDefs().Values(p.TriggerDefHead)
	if err != nil {
		return fmt.Errorf("engine: replay_past_event: %w", err)
	}

	// A delimiter that fired more recently than the replayed occurrence
	// means evidence intervened between it and now: check every SigDel
	// before firing anything, so a disqualified rule never completes on
	// stale evidence.
	for _, td := range defs {
		if td.SigType != ir.SigDel {
			continue
		}
		del, ok := m.stopwordLog[td.EventID]
		if ok && del.timestamp > entry.timestamp {
			return m.disposeRule(ruleRef)
		}
	}

	for _, td := range defs {
		if td.SigType == ir.SigDel || td.EventID != pastEventID {
			continue
		}
		fr, err := fireTrigger(m.data, slot, &rule.EventDataRef,
			ir.Trigger{SlotRef: rule.ActionSlotRef, SigType: td.SigType, SigVal: td.SigVal, VariableID: td.VariableID},
			pastEventID, entry.data)
		if err != nil {
			return err
		}
		if fr.disposed {
			return m.disposeRule(ruleRef)
		}
		if fr.completed {
			// nil queue is never consumed: forbidFollowEvent=true makes
			// completeRule fail instead of pushing to it.
			if err := m.completeRule(ruleRef, entry.data, nil, true); err != nil {
				return err
			}
			return nil
		}
	}
	return nil
}
