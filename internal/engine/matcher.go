package engine

import "github.com/lexpattern/engine/internal/ir"

// fireResult reports what happened when a trigger fired against a slot.
type fireResult struct {
	fired     bool // the trigger's condition matched; slot state changed
	completed bool // the slot reached its completion point on this fire
	disposed  bool // a SigDel trigger fired; the rule must be deactivated with no result
}

// captureStart applies spec §4.4.4 "start-position capture": the
// smallest ordpos observed for a rule fixes start_ordpos and the
// corresponding start_origpos. Per spec §9's open question, this
// re-checks on every fire and updates only when smaller, matching the
// documented source behaviour rather than "first assignment wins".
func captureStart(slot *ir.ActionSlot, data ir.EventData) {
	if !slot.StartCaptured || data.StartOrdpos < slot.StartOrdpos {
		slot.StartOrdpos = data.StartOrdpos
		slot.StartOrigseg = data.StartOrigseg
		slot.StartOrigpos = data.StartOrigpos
		slot.StartCaptured = true
	}
}

// bindOrSplice implements the variable-binding half of spec §4.4.4: a
// named trigger appends an event-item to the rule's list; an unnamed
// trigger whose data carries sub-evidence splices that sub-ref's items
// in instead.
func bindOrSplice(ds *dataStore, ref *int32, variableID uint32, eventID ir.EventID, data ir.EventData) error {
	if variableID != 0 {
		return ds.bindVariable(ref, variableID, eventID, data)
	}
	if data.SubdataRef != -1 {
		return ds.spliceSub(ref, data.SubdataRef)
	}
	return nil
}

// fireTrigger applies trig's signal semantics (spec §4.4.4) to slot,
// given the firing event's id and data. eventDataRef is the rule's
// event-data list head, updated in place by variable binding.
func fireTrigger(ds *dataStore, slot *ir.ActionSlot, eventDataRef *int32, trig ir.Trigger, eventID ir.EventID, data ir.EventData) (fireResult, error) {
	switch trig.SigType {
	case ir.SigAny:
		return fireAny(ds, slot, eventDataRef, trig, eventID, data)
	case ir.SigSequence:
		return fireSequence(ds, slot, eventDataRef, trig, eventID, data, true)
	case ir.SigSequenceImm:
		return fireSequence(ds, slot, eventDataRef, trig, eventID, data, false)
	case ir.SigWithin:
		return fireWithin(ds, slot, eventDataRef, trig, eventID, data)
	case ir.SigAnd:
		return fireAnd(ds, slot, eventDataRef, trig, eventID, data)
	case ir.SigDel:
		return fireResult{fired: true, disposed: true}, nil
	default:
		return fireResult{}, NewInternalInvariant(ir.NoEvent, "unknown sig_type")
	}
}

func fireAny(ds *dataStore, slot *ir.ActionSlot, eventDataRef *int32, trig ir.Trigger, eventID ir.EventID, data ir.EventData) (fireResult, error) {
	if slot.Count <= 0 {
		return fireResult{}, nil
	}
	captureStart(slot, data)
	if err := bindOrSplice(ds, eventDataRef, trig.VariableID, eventID, data); err != nil {
		return fireResult{}, err
	}
	if data.EndOrdpos > slot.EndOrdpos {
		slot.EndOrdpos = data.EndOrdpos
	}
	slot.Count--
	return fireResult{fired: true, completed: slot.Count == 0}, nil
}

// fireSequence handles both Sequence (requirePredecessor=true, strict
// progression: slot.end_ordpos < data.ordpos) and SequenceImm's
// non-first arguments (requirePredecessor=false, no-gap proximity:
// data.ordpos == slot.end_ordpos+1).
func fireSequence(ds *dataStore, slot *ir.ActionSlot, eventDataRef *int32, trig ir.Trigger, eventID ir.EventID, data ir.EventData, requirePredecessor bool) (fireResult, error) {
	if trig.SigVal != uint32(slot.Value) {
		return fireResult{}, nil
	}
	if requirePredecessor {
		if !(slot.EndOrdpos < data.StartOrdpos) {
			return fireResult{}, nil
		}
	} else if data.StartOrdpos != slot.EndOrdpos+1 {
		return fireResult{}, nil
	}
	captureStart(slot, data)
	if err := bindOrSplice(ds, eventDataRef, trig.VariableID, eventID, data); err != nil {
		return fireResult{}, err
	}
	slot.EndOrdpos = data.EndOrdpos
	slot.Value--
	if slot.Count > 0 {
		slot.Count--
	}
	completed := slot.Value <= 0 || slot.Count == 0
	return fireResult{fired: true, completed: completed}, nil
}

func fireWithin(ds *dataStore, slot *ir.ActionSlot, eventDataRef *int32, trig ir.Trigger, eventID ir.EventID, data ir.EventData) (fireResult, error) {
	bit := trig.SigVal
	if bit&uint32(slot.Value) == 0 {
		return fireResult{}, nil
	}
	if !(slot.EndOrdpos < data.StartOrdpos) {
		return fireResult{}, nil
	}
	captureStart(slot, data)
	if err := bindOrSplice(ds, eventDataRef, trig.VariableID, eventID, data); err != nil {
		return fireResult{}, err
	}
	slot.Value &^= int32(bit)
	if data.EndOrdpos > slot.EndOrdpos {
		slot.EndOrdpos = data.EndOrdpos
	}
	if slot.Count > 0 {
		slot.Count--
	}
	completed := slot.Value == 0 || slot.Count == 0
	return fireResult{fired: true, completed: completed}, nil
}

// fireAnd requires every argument to appear at the same ordinal
// position (spec §4.4.4): the first argument observed at a rule locks
// its ordinal position; later arguments must match it exactly.
func fireAnd(ds *dataStore, slot *ir.ActionSlot, eventDataRef *int32, trig ir.Trigger, eventID ir.EventID, data ir.EventData) (fireResult, error) {
	if slot.StartCaptured && data.StartOrdpos != slot.EndOrdpos {
		return fireResult{}, nil
	}
	captureStart(slot, data)
	if err := bindOrSplice(ds, eventDataRef, trig.VariableID, eventID, data); err != nil {
		return fireResult{}, err
	}
	slot.EndOrdpos = data.EndOrdpos
	if slot.Count > 0 {
		slot.Count--
	}
	return fireResult{fired: true, completed: slot.Count == 0}, nil
}
