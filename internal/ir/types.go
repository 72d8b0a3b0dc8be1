package ir

import "fmt"

// EventTag is the 2-bit discriminator packed into the top of an EventID.
type EventTag uint8

const (
	// TagTerm marks an event id produced by the lexer (a token id).
	TagTerm EventTag = iota
	// TagExpression marks an internally allocated intermediate event,
	// created when the compiler reduces an operator expression.
	TagExpression
	// TagReference marks a named pattern event (a define_pattern result).
	TagReference
)

func (t EventTag) String() string {
	switch t {
	case TagTerm:
		return "Term"
	case TagExpression:
		return "Expression"
	case TagReference:
		return "Reference"
	default:
		return fmt.Sprintf("EventTag(%d)", t)
	}
}

// EventID is a 32-bit event identifier: the top two bits hold an EventTag,
// the low 30 bits hold a per-tag dense index. Event ids are globally
// comparable regardless of tag.
type EventID uint32

const (
	eventTagShift = 30
	eventTagMask  = uint32(0b11) << eventTagShift
	eventIdxMask  = uint32(1<<eventTagShift) - 1
	// MaxEventIndex is the largest index representable in the 30-bit
	// per-tag index space.
	MaxEventIndex = eventIdxMask
)

// NewEventID packs a tag and index into an EventID. Returns an overflow
// error (spec §7 kind 2) if index exceeds the 30-bit index space.
func NewEventID(tag EventTag, index uint32) (EventID, error) {
	if index > MaxEventIndex {
		return 0, fmt.Errorf("ir: event index %d overflows 30-bit index space", index)
	}
	return EventID(uint32(tag)<<eventTagShift | (index & eventIdxMask)), nil
}

// Tag returns the event's tag.
func (e EventID) Tag() EventTag {
	return EventTag((uint32(e) & eventTagMask) >> eventTagShift)
}

// Index returns the event's per-tag dense index.
func (e EventID) Index() uint32 {
	return uint32(e) & eventIdxMask
}

func (e EventID) String() string {
	return fmt.Sprintf("%s(%d)", e.Tag(), e.Index())
}

// NoEvent is the zero EventID (Term tag, index 0), used where an EventID
// field is optional; callers track "is present" separately (see
// ActionSlot.HasFollowEvent) rather than relying on this sentinel alone,
// since Term(0) is itself a legitimate lexer token id.
const NoEvent EventID = 0

// LexemEvent is the narrow event shape produced by the lexer (spec §6):
// an id, an ordinal position, and byte coordinates in the source document.
type LexemEvent struct {
	ID       EventID `json:"id"`
	Ordpos   int64   `json:"ordpos"`
	Origseg  uint32  `json:"origseg"`
	Origpos  uint32  `json:"origpos"`
	Origsize uint32  `json:"origsize"`
}

// EventData is the richer event-data tuple used internally by rules and
// results (spec §3): a span of origin coordinates and ordinal positions,
// plus an optional reference to sub-evidence (variable-bound fragments).
type EventData struct {
	StartOrigseg uint32 `json:"start_origseg"`
	StartOrigpos uint32 `json:"start_origpos"`
	EndOrigseg   uint32 `json:"end_origseg"`
	EndOrigpos   uint32 `json:"end_origpos"`
	StartOrdpos  int64  `json:"start_ordpos"`
	EndOrdpos    int64  `json:"end_ordpos"`
	// SubdataRef is an index into the event-data-ref arena, or -1 if this
	// event data carries no sub-evidence.
	SubdataRef int32 `json:"subdata_ref"`
}

// FromLexem builds a zero-width EventData (start == end) from a raw lexem
// event: the starting point before any Sequence/Within extension.
func FromLexem(ev LexemEvent) EventData {
	return EventData{
		StartOrigseg: ev.Origseg,
		StartOrigpos: ev.Origpos,
		EndOrigseg:   ev.Origseg,
		EndOrigpos:   ev.Origpos + ev.Origsize,
		StartOrdpos:  ev.Ordpos,
		EndOrdpos:    ev.Ordpos,
		SubdataRef:   -1,
	}
}

// EventItem is a variable binding attached to a sub-evidence fragment.
type EventItem struct {
	VariableID uint32    `json:"variable_id"`
	EventID    EventID   `json:"event_id"`
	Data       EventData `json:"data"`
	// Next is the arena index of the next item in this item list, or -1.
	Next int32 `json:"next"`
}

// EventDataRef is a reference-counted handle to an item-list chain.
type EventDataRef struct {
	ItemListHead int32 `json:"item_list_head"` // head index into the event-item arena, -1 if empty
	RefCount     int32 `json:"ref_count"`
}

// SigType discriminates how a Trigger reacts when its event fires.
type SigType uint8

const (
	// SigAny fires while slot.Count > 0; "at-least-N of a set".
	SigAny SigType = iota
	// SigSequence requires trigger.SigVal == slot.Value and strict
	// ordinal progression (slot.EndOrdpos < data.Ordpos).
	SigSequence
	// SigSequenceImm is Sequence without a predecessor-progression
	// requirement on the first argument.
	SigSequenceImm
	// SigWithin clears one bit of a missing-arguments bitmask.
	SigWithin
	// SigDel is an immediate short-circuit: disposes the rule with no result.
	SigDel
	// SigAnd requires every argument at the same ordinal position.
	SigAnd
)

func (s SigType) String() string {
	switch s {
	case SigAny:
		return "Any"
	case SigSequence:
		return "Sequence"
	case SigSequenceImm:
		return "SequenceImm"
	case SigWithin:
		return "Within"
	case SigDel:
		return "Del"
	case SigAnd:
		return "And"
	default:
		return fmt.Sprintf("SigType(%d)", s)
	}
}

// Trigger is a compiled reaction attached to one event: when the event
// occurs, update one action slot's state (spec §3).
type Trigger struct {
	SlotRef    int32   `json:"slot_ref"`
	SigType    SigType `json:"sig_type"`
	SigVal     uint32  `json:"sig_val"`
	VariableID uint32  `json:"variable_id"`
}

// ActionSlot is the running state of one rule instance (spec §3).
type ActionSlot struct {
	Value          int32   `json:"value"`
	Count          int32   `json:"count"`
	FollowEvent    EventID `json:"follow_event"`
	HasFollowEvent bool    `json:"has_follow_event"`
	ResultHandle   uint32  `json:"result_handle"`
	HasResult      bool    `json:"has_result"`
	RuleRef        int32   `json:"rule_ref"`
	StartOrdpos    int64   `json:"start_ordpos"`
	EndOrdpos      int64   `json:"end_ordpos"`
	StartOrigseg   uint32  `json:"start_origseg"`
	StartOrigpos   uint32  `json:"start_origpos"`
	StartCaptured  bool    `json:"start_captured"`
}

// Rule is one live instance of a program (spec §3).
type Rule struct {
	ActionSlotRef        int32 `json:"action_slot_ref"`
	EventTriggerListHead int32 `json:"event_trigger_list_head"` // head index into the trigger-ref pool, -1 if empty
	EventDataRef         int32 `json:"event_data_ref"`          // index into the event-data-ref arena, -1 if none
	Done                 bool  `json:"done"`
	ExpiryOrdpos         int64 `json:"expiry_ordpos"`
	ProgramRef           int32 `json:"program_ref"`
}

// TriggerDef is one entry in a program's compile-time trigger-def list
// (spec §4.3 create_trigger): the event it reacts to, its signal shape,
// and whether it is the program's key event.
type TriggerDef struct {
	EventID    EventID `json:"event_id"`
	IsKey      bool    `json:"is_key"`
	SigType    SigType `json:"sig_type"`
	SigVal     uint32  `json:"sig_val"`
	VariableID uint32  `json:"variable_id"`
	Next       int32   `json:"next"` // arena index of next trigger-def, -1 if last
}

// Program is a compile-time template for a rule (spec §3).
type Program struct {
	SlotTemplate   ActionSlot `json:"slot_template"`
	TriggerDefHead int32      `json:"trigger_def_head"` // head of this program's TriggerDef list, -1 if empty
	PositionRange  int64      `json:"position_range"`
	Done           bool       `json:"done"` // true once done_program has been called
	Name           string     `json:"name"`
	Visible        bool       `json:"visible"`
}

// ProgramTrigger attaches a program to an event as its key event (spec §3).
// PastEventID is non-zero when the optimiser relinked this program: the
// program's "real" first event has already passed and must be replayed
// (spec §4.5) once the rule installs on the (rarer) alternative key event.
type ProgramTrigger struct {
	ProgramRef  int32   `json:"program_ref"`
	PastEventID EventID `json:"past_event_id"`
}

// Result is a published match (spec §3).
type Result struct {
	Name         string `json:"name"`
	ResultHandle uint32 `json:"result_handle"`
	EventDataRef int32  `json:"event_data_ref"`
	StartOrdpos  int64  `json:"start_ordpos"`
	EndOrdpos    int64  `json:"end_ordpos"`
	StartOrigseg uint32 `json:"start_origseg"`
	StartOrigpos uint32 `json:"start_origpos"`
	EndOrigseg   uint32 `json:"end_origseg"`
	EndOrigpos   uint32 `json:"end_origpos"`
}

// ResultItem is one row of a Result's item gathering (spec §4.4.6).
type ResultItem struct {
	VariableName string  `json:"variable_name"`
	Ordpos       int64   `json:"ordpos"`
	Origseg      uint32  `json:"origseg"`
	Origpos      uint32  `json:"origpos"`
	Origsize     uint32  `json:"origsize"`
	Weight       float64 `json:"weight"`
}
