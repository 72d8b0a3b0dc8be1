package engine

import (
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
	"github.com/lexpattern/engine/internal/trigindex"
)

// maxKeyTriggerDefs is the deterministic limit on identical key-event
// trigger-defs per program (spec §4.4.5).
const maxKeyTriggerDefs = 32

// installProgram implements spec §4.4.5: allocate a rule and its action
// slot from pt's program template, register every non-key trigger in
// the trigger index, defer the program's key-event trigger-defs for
// immediate firing against the data that caused installation, replay
// past-event evidence if pt was relinked, then fire the deferred key
// triggers.
func (m *Machine) installProgram(pt ir.ProgramTrigger, eventID ir.EventID, data ir.EventData, q *followQueue) error {
	p, err := m.programs.Get(program.ProgramRef(pt.ProgramRef))
	if err != nil {
		return fmt.Errorf("engine: install_program: %w", err)
	}

	slotRef := m.slots.Add(p.SlotTemplate)
	slot, err := m.slots.Get(slotRef)
	if err != nil {
		return fmt.Errorf("engine: install_program: %w", err)
	}

	ruleRef := m.rules.Add(ir.Rule{
		ActionSlotRef:        slotRef,
		EventTriggerListHead: -1,
		EventDataRef:         -1,
		ExpiryOrdpos:         data.StartOrdpos + p.PositionRange,
		ProgramRef:           pt.ProgramRef,
	})
	slot.RuleRef = ruleRef
	rule, err := m.rules.Get(ruleRef)
	if err != nil {
		return fmt.Errorf("engine: install_program: %w", err)
	}
	m.registerDispose(ruleRef, rule.ExpiryOrdpos)

	defs, err := m.programs.TriggerDefs().Values(p.TriggerDefHead)
	if err != nil {
		return fmt.Errorf("engine: install_program: %w", err)
	}

	var keyTriggers []ir.TriggerDef
	keyHandled := false
	keyDefCount := 0
	for _, td := range defs {
		isThisKey := td.EventID == eventID && td.IsKey
		if isThisKey {
			keyDefCount++
			if keyDefCount > maxKeyTriggerDefs {
				return NewOverflow(fmt.Sprintf("program %q: more than %d key-event trigger-defs on event %s", p.Name, maxKeyTriggerDefs, eventID))
			}
		}
		// A key trigger-def is deferred for immediate firing rather than
		// installed as waiting, except an Any with count > 1: it still
		// needs further occurrences, so it also installs as waiting.
		deferOnly := isThisKey && !keyHandled
		if deferOnly {
			keyHandled = true
			keyTriggers = append(keyTriggers, td)
			if !(td.SigType == ir.SigAny && p.SlotTemplate.Count > 1) {
				continue
			}
		}
		ref := m.triggerIndex.Add(td.EventID, ir.Trigger{SlotRef: slotRef, SigType: td.SigType, SigVal: td.SigVal, VariableID: td.VariableID})
		rule.EventTriggerListHead = m.ruleTriggerRefs.Push(rule.EventTriggerListHead, int32(ref))
	}

	if pt.PastEventID != ir.NoEvent {
		if err := m.replayPastEvent(ruleRef, p, pt.PastEventID); err != nil {
			return err
		}
		// replay may have deactivated the rule already.
		if !m.rules.IsLive(ruleRef) {
			return nil
		}
	}

	for _, td := range keyTriggers {
		if !m.rules.IsLive(ruleRef) {
			break
		}
		fr, err := fireTrigger(m.data, slot, &rule.EventDataRef, ir.Trigger{SlotRef: slotRef, SigType: td.SigType, SigVal: td.SigVal, VariableID: td.VariableID}, eventID, data)
		if err != nil {
			return err
		}
		if fr.disposed {
			if err := m.disposeRule(ruleRef); err != nil {
				return err
			}
			break
		}
		if fr.completed {
			if err := m.completeRule(ruleRef, data, q, false); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// completeRule implements the completion half of spec §4.4.4: a
// follow-event is enqueued and/or a Result is published, the rule is
// marked done, then deactivated. endData supplies the firing event's
// end-position coordinates (the action slot itself tracks only the
// start). forbidFollowEvent is set during past-event replay (spec
// §4.5), which must never generate a follow-event.
func (m *Machine) completeRule(ruleRef int32, endData ir.EventData, q *followQueue, forbidFollowEvent bool) error {
	rule, err := m.rules.Get(ruleRef)
	if err != nil {
		return fmt.Errorf("engine: complete_rule: %w", err)
	}
	slot, err := m.slots.Get(rule.ActionSlotRef)
	if err != nil {
		return fmt.Errorf("engine: complete_rule: %w", err)
	}

	if slot.HasFollowEvent {
		if forbidFollowEvent {
			return NewInternalInvariant(slot.FollowEvent, "past-event replay produced a follow-event")
		}
		if err := m.data.retain(rule.EventDataRef); err != nil {
			return err
		}
		q.push(slot.FollowEvent, ir.EventData{
			StartOrigseg: slot.StartOrigseg,
			StartOrigpos: slot.StartOrigpos,
			EndOrigseg:   endData.EndOrigseg,
			EndOrigpos:   endData.EndOrigpos,
			StartOrdpos:  slot.StartOrdpos,
			EndOrdpos:    slot.EndOrdpos,
			SubdataRef:   rule.EventDataRef,
		})
	}

	if slot.HasResult {
		p, err := m.programs.Get(program.ProgramRef(rule.ProgramRef))
		if err != nil {
			return fmt.Errorf("engine: complete_rule: %w", err)
		}
		if p.Visible {
			if err := m.data.retain(rule.EventDataRef); err != nil {
				return err
			}
			m.results = append(m.results, ir.Result{
				Name:         p.Name,
				ResultHandle: slot.ResultHandle,
				EventDataRef: rule.EventDataRef,
				StartOrdpos:  slot.StartOrdpos,
				EndOrdpos:    slot.EndOrdpos,
				StartOrigseg: slot.StartOrigseg,
				StartOrigpos: slot.StartOrigpos,
				EndOrigseg:   endData.EndOrigseg,
				EndOrigpos:   endData.EndOrigpos,
			})
		}
	}

	rule.Done = true
	return m.disposeRule(ruleRef)
}

// disposeRule deactivates a rule: every waiting trigger it registered in
// the event-trigger index is removed, its event-data hold is released,
// and its slot and rule records return to the free list (spec §4.4.4,
// §8 "every rule disposed exactly once").
func (m *Machine) disposeRule(ruleRef int32) error {
	rule, err := m.rules.Get(ruleRef)
	if err != nil {
		return fmt.Errorf("engine: dispose_rule: %w", err)
	}

	refs, err := m.ruleTriggerRefs.Values(rule.EventTriggerListHead)
	if err != nil {
		return fmt.Errorf("engine: dispose_rule: %w", err)
	}
	for _, ref := range refs {
		if err := m.triggerIndex.Remove(trigindex.TriggerRef(ref)); err != nil {
			return fmt.Errorf("engine: dispose_rule: %w", err)
		}
	}
	if err := m.ruleTriggerRefs.Dispose(rule.EventTriggerListHead); err != nil {
		return fmt.Errorf("engine: dispose_rule: %w", err)
	}
	if err := m.data.release(rule.EventDataRef); err != nil {
		return fmt.Errorf("engine: dispose_rule: %w", err)
	}
	if err := m.slots.Remove(rule.ActionSlotRef); err != nil {
		return fmt.Errorf("engine: dispose_rule: %w", err)
	}
	return m.rules.Remove(ruleRef)
}
