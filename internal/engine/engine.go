package engine

import (
	"container/heap"
	"fmt"

	"github.com/lexpattern/engine/internal/arena"
	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
	"github.com/lexpattern/engine/internal/trigindex"
)

// SymbolTable resolves a variable id to its source name, for gathering
// a Result's items (spec §4.4.6). The compiler owns the id↔name
// mapping; the state machine only ever looks names up by id.
type SymbolTable interface {
	NameOf(variableID uint32) string
}

// DefaultTransitionBudget bounds follow-event cascades within a single
// DoTransition call (see TransitionBudget).
const DefaultTransitionBudget = 10000

// Machine is the state machine of spec §4: a single-threaded,
// event-driven automaton that matches a compiled program table against
// an incoming event stream. One Machine is bound to one document and
// must never be shared across goroutines (spec §5); a worker pool above
// the core typically runs one Machine per document per thread.
type Machine struct {
	clock   *Clock
	docID   string
	symbols SymbolTable

	programs     *program.Table
	triggerIndex *trigindex.Index[ir.Trigger]

	slots           *arena.Table[ir.ActionSlot]
	rules           *arena.Table[ir.Rule]
	ruleTriggerRefs *arena.StackPool[int32]

	data *dataStore

	window    [disposeWindow]int32 // bucket p%W -> head of dispose-rule list
	disposals *arena.StackPool[int32]
	farFuture disposeHeap

	stopwordLog map[ir.EventID]stopwordEntry
	logicalTime int64

	budget *TransitionBudget
	results []ir.Result
}

// Option configures a new Machine.
type Option func(*Machine)

// WithDocumentID attaches an external document identifier used only for
// tracing; the core itself never reads it.
func WithDocumentID(gen DocumentIDGenerator) Option {
	return func(m *Machine) { m.docID = gen.Generate() }
}

// WithTransitionBudget overrides DefaultTransitionBudget.
func WithTransitionBudget(max int) Option {
	return func(m *Machine) { m.budget = NewTransitionBudget(max) }
}

// NewMachine returns a Machine ready to process events against programs.
// symbols resolves variable ids to names for ResultItems; it may be nil
// if the caller never calls ResultItems.
func NewMachine(programs *program.Table, symbols SymbolTable, opts ...Option) *Machine {
	m := &Machine{
		clock:           NewClock(),
		symbols:         symbols,
		programs:        programs,
		triggerIndex:    trigindex.New[ir.Trigger](),
		slots:           arena.NewTable[ir.ActionSlot](256),
		rules:           arena.NewTable[ir.Rule](256),
		ruleTriggerRefs: arena.NewStackPool[int32](512),
		data:            newDataStore(),
		disposals:       arena.NewStackPool[int32](256),
		stopwordLog:     make(map[ir.EventID]stopwordEntry),
		budget:          NewTransitionBudget(DefaultTransitionBudget),
	}
	for i := range m.window {
		m.window[i] = -1
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// DocumentID returns the external identifier set via WithDocumentID, or
// the empty string if none was configured.
func (m *Machine) DocumentID() string {
	return m.docID
}

// Current returns the machine's current ordinal position.
func (m *Machine) Current() int64 {
	return m.clock.Current()
}

// Results returns every Result published so far. The returned slice
// aliases the machine's internal storage; callers must not mutate it.
func (m *Machine) Results() []ir.Result {
	return m.results
}

// ResultItems gathers the variable-bound items of a Result (spec
// §4.4.6), recursing into nested sub-evidence chains and resolving
// variable ids to names via the configured SymbolTable.
func (m *Machine) ResultItems(r ir.Result) ([]ir.ResultItem, error) {
	var out []ir.ResultItem
	if err := m.gatherItems(r.EventDataRef, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Machine) gatherItems(ref int32, out *[]ir.ResultItem) error {
	items, err := m.data.values(ref)
	if err != nil {
		return fmt.Errorf("engine: gather_items: %w", err)
	}
	for _, item := range items {
		name := ""
		if m.symbols != nil {
			name = m.symbols.NameOf(item.VariableID)
		}
		var origsize uint32
		if item.Data.StartOrigseg == item.Data.EndOrigseg && item.Data.EndOrigpos >= item.Data.StartOrigpos {
			origsize = item.Data.EndOrigpos - item.Data.StartOrigpos
		}
		*out = append(*out, ir.ResultItem{
			VariableName: name,
			Ordpos:       item.Data.StartOrdpos,
			Origseg:      item.Data.StartOrigseg,
			Origpos:      item.Data.StartOrigpos,
			Origsize:     origsize,
			Weight:       m.programs.Weight(item.EventID),
		})
		if item.Data.SubdataRef != -1 {
			if err := m.gatherItems(item.Data.SubdataRef, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// Clear resets the machine for reuse: every arena table's used size is
// zero afterward (spec §8 invariant), the clock returns to 0, and all
// published results are discarded.
func (m *Machine) Clear() {
	m.clock.Reset()
	m.slots.Clear()
	m.rules.Clear()
	m.ruleTriggerRefs.Clear()
	m.data.refs.Clear()
	m.data.items.Clear()
	m.disposals.Clear()
	m.triggerIndex = trigindex.New[ir.Trigger]()
	for i := range m.window {
		m.window[i] = -1
	}
	m.farFuture = nil
	m.stopwordLog = make(map[ir.EventID]stopwordEntry)
	m.logicalTime = 0
	m.results = nil
}

// SetCurrentPos advances the machine's ordinal position, sweeping the
// dispose window and far-future heap for any rule whose expiry has now
// passed (spec §4.4.3). The sweep covers positions from the old current
// position up to, but not including, pos: a rule expiring at E is
// disposed once pos moves past E, i.e. before events at E+1.
func (m *Machine) SetCurrentPos(pos int64) error {
	current := m.clock.Current()
	if err := m.clock.Advance(pos); err != nil {
		return err
	}
	return m.sweep(current, pos)
}

func (m *Machine) sweep(from, to int64) error {
	span := to - from
	iterations := span
	if iterations > disposeWindow {
		iterations = disposeWindow
	}
	for i := int64(0); i < iterations; i++ {
		p := from + i
		bucket := int(p % disposeWindow)
		if p%disposeWindow == 0 {
			if err := m.drainHeapInto(from + disposeWindow); err != nil {
				return err
			}
		}
		if err := m.disposeBucket(bucket); err != nil {
			return err
		}
	}
	if span > disposeWindow {
		if err := m.drainHeapBefore(to); err != nil {
			return err
		}
	}
	return nil
}

// registerDispose schedules ruleRef for disposal once the ordinal
// position reaches expiry: into the sliding window if within reach, or
// the far-future heap otherwise (spec §4.4.3).
func (m *Machine) registerDispose(ruleRef int32, expiry int64) {
	current := m.clock.Current()
	if expiry < current+disposeWindow {
		bucket := int(expiry % disposeWindow)
		m.window[bucket] = m.disposals.Push(m.window[bucket], ruleRef)
		return
	}
	heap.Push(&m.farFuture, farFutureEntry{expiryOrdpos: expiry, ruleRef: ruleRef})
}

func (m *Machine) disposeBucket(bucket int) error {
	head := m.window[bucket]
	rules, err := m.disposals.Values(head)
	if err != nil {
		return fmt.Errorf("engine: dispose_bucket: %w", err)
	}
	if err := m.disposals.Dispose(head); err != nil {
		return fmt.Errorf("engine: dispose_bucket: %w", err)
	}
	m.window[bucket] = -1
	for _, ruleRef := range rules {
		if !m.rules.IsLive(ruleRef) {
			continue // already completed and disposed earlier
		}
		if err := m.disposeRule(ruleRef); err != nil {
			return err
		}
	}
	return nil
}

// drainHeapInto moves every far-future entry whose expiry is now within
// reach of the sliding window into the window.
func (m *Machine) drainHeapInto(horizon int64) error {
	for len(m.farFuture) > 0 && m.farFuture[0].expiryOrdpos < horizon {
		e := heap.Pop(&m.farFuture).(farFutureEntry)
		bucket := int(e.expiryOrdpos % disposeWindow)
		m.window[bucket] = m.disposals.Push(m.window[bucket], e.ruleRef)
	}
	return nil
}

// drainHeapBefore disposes every far-future entry whose expiry is
// strictly before upto, used when SetCurrentPos jumps further than the
// window can sweep in one call.
func (m *Machine) drainHeapBefore(upto int64) error {
	for len(m.farFuture) > 0 && m.farFuture[0].expiryOrdpos < upto {
		e := heap.Pop(&m.farFuture).(farFutureEntry)
		if !m.rules.IsLive(e.ruleRef) {
			continue
		}
		if err := m.disposeRule(e.ruleRef); err != nil {
			return err
		}
	}
	return nil
}

// DoTransition feeds one external event into the machine (spec §4.4.2):
// it seeds the follow-event queue with id/data, then drains the queue
// entirely before returning, running the four-step procedure — trigger
// fanout, program installation, deferred rule disposal, stopword memory
// — for each event in turn.
func (m *Machine) DoTransition(id ir.EventID, data ir.EventData) error {
	if data.StartOrdpos < m.clock.Current() {
		return NewOrderViolation(data.StartOrdpos, m.clock.Current())
	}
	m.budget.Reset()
	cg := newCycleGuard()
	q := newFollowQueue()
	q.push(id, data)

	for {
		ev, ok := q.pop()
		if !ok {
			break
		}
		if err := m.budget.Consume(ev.id); err != nil {
			return err
		}
		cg.record(ev.id, ev.data.StartOrdpos)
		if err := m.stepEvent(ev.id, ev.data, q); err != nil {
			return err
		}
	}
	return nil
}

func (m *Machine) stepEvent(id ir.EventID, data ir.EventData, q *followQueue) error {
	// Step 1: trigger fanout. Firing is applied immediately; disposal of
	// a completed or deactivated rule is deferred to step 3 so mutating
	// the trigger index mid-scan never invalidates Scan's own snapshot
	// from affecting a different bucket's entries under iteration.
	triggers, err := m.triggerIndex.Scan(id)
	if err != nil {
		return fmt.Errorf("engine: step_event: %w", err)
	}

	var toDispose []int32
	var toComplete []int32
	for _, trig := range triggers {
		slot, err := m.slots.Get(trig.SlotRef)
		if err != nil {
			continue
		}
		ruleRef := slot.RuleRef
		if !m.rules.IsLive(ruleRef) {
			continue
		}
		rule, err := m.rules.Get(ruleRef)
		if err != nil {
			return fmt.Errorf("engine: step_event: %w", err)
		}
		fr, err := fireTrigger(m.data, slot, &rule.EventDataRef, trig, id, data)
		if err != nil {
			return err
		}
		switch {
		case fr.disposed:
			toDispose = append(toDispose, ruleRef)
		case fr.completed:
			toComplete = append(toComplete, ruleRef)
		}
	}

	// Step 2: program installation.
	installs, err := m.programs.EventProgramList(id)
	if err != nil {
		return fmt.Errorf("engine: step_event: %w", err)
	}
	for _, pt := range installs {
		if err := m.installProgram(pt, id, data, q); err != nil {
			return err
		}
	}

	// Step 3: deferred rule disposal.
	for _, ruleRef := range toDispose {
		if !m.rules.IsLive(ruleRef) {
			continue
		}
		if err := m.disposeRule(ruleRef); err != nil {
			return err
		}
	}
	for _, ruleRef := range toComplete {
		if !m.rules.IsLive(ruleRef) {
			continue
		}
		if err := m.completeRule(ruleRef, data, q, false); err != nil {
			return err
		}
	}

	// Step 4: stopword memory / data release.
	if m.programs.IsStopword(id) {
		if old, ok := m.stopwordLog[id]; ok && old.data.SubdataRef != -1 {
			if err := m.data.release(old.data.SubdataRef); err != nil {
				return err
			}
		}
		if data.SubdataRef != -1 {
			if err := m.data.retain(data.SubdataRef); err != nil {
				return err
			}
		}
		m.stopwordLog[id] = stopwordEntry{data: data, timestamp: m.logicalTime}
		m.logicalTime++
	} else if data.SubdataRef != -1 {
		if err := m.data.release(data.SubdataRef); err != nil {
			return err
		}
	}
	return nil
}
