package program

import (
	"fmt"

	"github.com/lexpattern/engine/internal/arena"
	"github.com/lexpattern/engine/internal/ir"
)

// ProgramRef is a stable reference to a compiled program.
type ProgramRef int32

// Table is the program table: compiled programs, their trigger-def
// lists, and the event→program installation index (spec §4.3).
type Table struct {
	programs    *arena.Table[ir.Program]
	triggerDefs *arena.StackPool[ir.TriggerDef]
	install     *arena.StackPool[ir.ProgramTrigger]
	installHead map[ir.EventID]int32

	frequency     map[ir.EventID]float64
	keyOccurrence map[ir.EventID]int
	stopwords     map[ir.EventID]bool

	allRefs []ProgramRef // every ref CreateProgram has ever returned, in creation order
}

// New returns an empty program table.
func New() *Table {
	return &Table{
		programs:      arena.NewTable[ir.Program](256),
		triggerDefs:   arena.NewStackPool[ir.TriggerDef](1024),
		install:       arena.NewStackPool[ir.ProgramTrigger](256),
		installHead:   make(map[ir.EventID]int32),
		frequency:     make(map[ir.EventID]float64),
		keyOccurrence: make(map[ir.EventID]int),
		stopwords:     make(map[ir.EventID]bool),
	}
}

// CreateProgram allocates a new program with the given position range
// (the ordinal-position span the program must complete within) and slot
// template (the ActionSlot shape every Rule instance of this program
// starts from).
func (t *Table) CreateProgram(positionRange int64, slotTemplate ir.ActionSlot, name string) ProgramRef {
	ref := t.programs.Add(ir.Program{
		SlotTemplate:   slotTemplate,
		TriggerDefHead: -1,
		PositionRange:  positionRange,
		Name:           name,
		Visible:        true,
	})
	programRef := ProgramRef(ref)
	t.allRefs = append(t.allRefs, programRef)
	return programRef
}

// AllRefs returns every program ref this table has ever created, in
// creation order. Used by tooling (internal/cli, internal/compiler's
// Validate) that needs to walk every compiled program rather than only
// ones reachable from a specific event.
func (t *Table) AllRefs() []ProgramRef {
	return t.allRefs
}

// CreateTrigger appends a trigger-def to programRef's list. If isKey,
// eventID is also recorded in the installation index so the state
// machine can find this program when eventID first occurs.
func (t *Table) CreateTrigger(programRef ProgramRef, eventID ir.EventID, isKey bool, sigType ir.SigType, sigVal, variableID uint32) error {
	p, err := t.programs.Get(int32(programRef))
	if err != nil {
		return fmt.Errorf("program: create_trigger: %w", err)
	}
	p.TriggerDefHead = t.triggerDefs.Push(p.TriggerDefHead, ir.TriggerDef{
		EventID:    eventID,
		IsKey:      isKey,
		SigType:    sigType,
		SigVal:     sigVal,
		VariableID: variableID,
		Next:       -1,
	})
	if isKey {
		t.installOn(eventID, programRef, ir.NoEvent)
		t.keyOccurrence[eventID]++
	}
	return nil
}

func (t *Table) installOn(eventID ir.EventID, ref ProgramRef, pastEventID ir.EventID) {
	head := t.installHead[eventID]
	if _, ok := t.installHead[eventID]; !ok {
		head = -1
	}
	t.installHead[eventID] = t.install.Push(head, ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: pastEventID})
}

// DoneProgram finalises programRef: no more triggers may be added.
func (t *Table) DoneProgram(programRef ProgramRef) error {
	p, err := t.programs.Get(int32(programRef))
	if err != nil {
		return fmt.Errorf("program: done_program: %w", err)
	}
	p.Done = true
	return nil
}

// DefineProgramResult sets what a program's action slot emits on
// completion: the follow-event it still needs (if any) and the result
// handle identifying which named pattern fired.
func (t *Table) DefineProgramResult(programRef ProgramRef, followEvent ir.EventID, hasFollowEvent bool, resultHandle uint32) error {
	p, err := t.programs.Get(int32(programRef))
	if err != nil {
		return fmt.Errorf("program: define_program_result: %w", err)
	}
	p.SlotTemplate.FollowEvent = followEvent
	p.SlotTemplate.HasFollowEvent = hasFollowEvent
	p.SlotTemplate.ResultHandle = resultHandle
	p.SlotTemplate.HasResult = true
	return nil
}

// SetVisible overrides a program's visibility (spec §6: a `.`-prefixed
// pattern name compiles to an invisible program, one whose completion
// still republishes a follow-event for other triggers but never
// appears as a top-level engine Result). CreateProgram defaults every
// program to visible.
func (t *Table) SetVisible(programRef ProgramRef, visible bool) error {
	p, err := t.programs.Get(int32(programRef))
	if err != nil {
		return fmt.Errorf("program: set_visible: %w", err)
	}
	p.Visible = visible
	return nil
}

// Rename overrides a program's display name, used when a node compiled
// anonymously (push_expression's synthetic expr#N name) is later
// published under a user-supplied pattern name via define_pattern.
func (t *Table) Rename(programRef ProgramRef, name string) error {
	p, err := t.programs.Get(int32(programRef))
	if err != nil {
		return fmt.Errorf("program: rename: %w", err)
	}
	p.Name = name
	return nil
}

// DefineEventFrequency records an externally supplied document-frequency
// estimate for eventID, consumed by Optimize.
func (t *Table) DefineEventFrequency(eventID ir.EventID, df float64) {
	t.frequency[eventID] = df
}

// Get returns the program at ref.
func (t *Table) Get(ref ProgramRef) (*ir.Program, error) {
	p, err := t.programs.Get(int32(ref))
	if err != nil {
		return nil, fmt.Errorf("program: get: %w", err)
	}
	return p, nil
}

// TriggerDefs returns the shared trigger-def pool, for walking a
// program's TriggerDefHead list.
func (t *Table) TriggerDefs() *arena.StackPool[ir.TriggerDef] {
	return t.triggerDefs
}

// EventProgramList returns every {program, past_event_id} pair
// installed on eventID.
func (t *Table) EventProgramList(eventID ir.EventID) ([]ir.ProgramTrigger, error) {
	head, ok := t.installHead[eventID]
	if !ok {
		return nil, nil
	}
	return t.install.Values(head)
}

// IsStopword reports whether eventID has been marked a stopword, either
// because it is a high-frequency key event (Optimize step 2) or because
// it is a delimiter event of a relinked program (Optimize step 4).
func (t *Table) IsStopword(eventID ir.EventID) bool {
	return t.stopwords[eventID]
}

// Weight exposes w(e) = max(1, freq(e)) × max(1, key_occurrence(e)) (spec
// §4.3 "Event weight") for spec §4.4.6 result-item weighting.
func (t *Table) Weight(eventID ir.EventID) float64 {
	return t.weight(eventID)
}

// weight computes w(e) = max(1, freq(e)) × max(1, key_occurrence(e))
// (spec §4.3 "Event weight").
func (t *Table) weight(eventID ir.EventID) float64 {
	freq := t.frequency[eventID]
	if freq < 1 {
		freq = 1
	}
	occ := float64(t.keyOccurrence[eventID])
	if occ < 1 {
		occ = 1
	}
	return freq * occ
}
