package compiler

import (
	"fmt"
	"sort"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
)

// Operator is a join operator recognised by push_expression (spec §4.6).
type Operator int

const (
	OpSequence Operator = iota
	OpSequenceImm
	OpSequenceStruct
	OpWithin
	OpWithinStruct
	OpAny
	OpAnd
)

func (o Operator) String() string {
	switch o {
	case OpSequence:
		return "sequence"
	case OpSequenceImm:
		return "sequence_imm"
	case OpSequenceStruct:
		return "sequence_struct"
	case OpWithin:
		return "within"
	case OpWithinStruct:
		return "within_struct"
	case OpAny:
		return "any"
	case OpAnd:
		return "and"
	default:
		return fmt.Sprintf("Operator(%d)", o)
	}
}

// node is one entry of the compiler's working stack: either a leaf
// (a term or an unresolved pattern reference) or the result of a prior
// push_expression reduction.
type node struct {
	eventID     ir.EventID
	programRef  program.ProgramRef
	hasProgram  bool
	variableID  uint32
	hasVariable bool
	// refs is the set of pattern names transitively referenced beneath
	// this node, propagated through push_expression so define_pattern
	// can record a reference edge for cycle detection.
	refs map[string]bool
}

// Compiler is the stack machine of spec §4.6: push_term, push_pattern,
// push_expression, attach_variable and define_pattern build programs
// and triggers directly into a program.Table as the working stack
// reduces.
type Compiler struct {
	programs *program.Table
	options  Options

	vars     *NameTable
	patterns *NameTable

	stack []*node

	refIndex   map[string]uint32
	nextRefIdx uint32

	nextExprIdx uint32

	defined map[string]bool
	graph   map[string][]string // pattern reference DAG, for cycle detection

	allPrograms []program.ProgramRef // every program this compile created, for Validate
}

// New returns a Compiler that writes into programs. vars and patterns
// are the two symbol tables spec §6 requires (variable names, and
// pattern/result names); callers typically keep them around afterward
// to resolve engine.Result items back to source names.
func New(programs *program.Table, vars, patterns *NameTable, opts ...Option) *Compiler {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Compiler{
		programs: programs,
		options:  o,
		vars:     vars,
		patterns: patterns,
		refIndex: make(map[string]uint32),
		defined:  make(map[string]bool),
		graph:    make(map[string][]string),
	}
}

// PushTerm pushes a leaf node for a lexer token id (spec §4.6 push_term).
func (c *Compiler) PushTerm(tokenID uint32) error {
	id, err := ir.NewEventID(ir.TagTerm, tokenID)
	if err != nil {
		return engine.NewOverflow(err.Error())
	}
	c.stack = append(c.stack, &node{eventID: id})
	return nil
}

// PushPattern pushes a leaf node for a named pattern reference,
// allocating a dense reference index on first use; the reference may
// resolve later via DefinePattern (forward reference), or never, which
// Compile reports as an unresolved reference (spec §7 kind 4).
func (c *Compiler) PushPattern(name string) error {
	idx, ok := c.refIndex[name]
	if !ok {
		idx = c.nextRefIdx
		c.nextRefIdx++
		c.refIndex[name] = idx
	}
	id, err := ir.NewEventID(ir.TagReference, idx)
	if err != nil {
		return engine.NewOverflow(err.Error())
	}
	c.stack = append(c.stack, &node{eventID: id, refs: map[string]bool{name: true}})
	return nil
}

// AttachVariable binds name (assigning it a dense variable id on first
// use) to the top-of-stack node. weight, if non-zero, is recorded as a
// document-frequency hint for this node's event id (program.Table has
// no dedicated per-variable weight field; spec.md §4.3's event weight
// is exactly this frequency statistic, so an explicit compile-time
// weight is wired through DefineEventFrequency rather than invented as
// a new field).
func (c *Compiler) AttachVariable(name string, weight float64) error {
	top, err := c.peek()
	if err != nil {
		return err
	}
	if top.hasVariable {
		return engine.NewDoubleVariableAssignment(name)
	}
	top.variableID = c.vars.GetOrCreate(name)
	top.hasVariable = true
	if weight != 0 {
		c.programs.DefineEventFrequency(top.eventID, weight)
	}
	return nil
}

// PushExpression reduces the top argc stack entries into one program
// (spec §4.6): it allocates a fresh internal event id, creates the
// program with the operator's slot template, attaches a trigger per
// popped argument with the per-operator sig_type/sig_val/is_key marks,
// and pushes a node carrying the new event id.
func (c *Compiler) PushExpression(op Operator, argc int, posRange int64, cardinality int32) error {
	if argc <= 0 {
		return engine.NewMissingArguments(op.String(), 1, 0)
	}
	if len(c.stack) < argc {
		return engine.NewMissingArguments(op.String(), argc, len(c.stack))
	}

	if op == OpSequenceImm && posRange == 0 {
		posRange = int64(argc - 1)
	}
	if min := minRange(op, int32(argc)); posRange < min {
		return engine.NewOverflow(fmt.Sprintf("%s: range %d is smaller than the structural minimum %d", op, posRange, min))
	}

	args := make([]*node, argc)
	copy(args, c.stack[len(c.stack)-argc:])
	c.stack = c.stack[:len(c.stack)-argc]

	id, err := ir.NewEventID(ir.TagExpression, c.nextExprIdx)
	if err != nil {
		return engine.NewOverflow(err.Error())
	}
	c.nextExprIdx++

	name := fmt.Sprintf("expr#%d", id.Index())
	ref := c.programs.CreateProgram(posRange, slotTemplate(op, int32(argc), cardinality), name)
	c.allPrograms = append(c.allPrograms, ref)

	refs := make(map[string]bool)
	for i, arg := range args {
		sigType, sigVal, isKey := sigFor(op, i, argc)
		if arg.hasProgram {
			if err := c.finalizeChild(arg); err != nil {
				return err
			}
		}
		variableID := uint32(0)
		if arg.hasVariable {
			variableID = arg.variableID
		}
		if err := c.programs.CreateTrigger(ref, arg.eventID, isKey, sigType, sigVal, variableID); err != nil {
			return err
		}
		for name := range arg.refs {
			refs[name] = true
		}
	}

	c.stack = append(c.stack, &node{eventID: id, programRef: ref, hasProgram: true, refs: refs})
	return nil
}

// finalizeChild closes out a sub-expression node consumed as another
// expression's argument: its program's only consumer is the parent
// trigger just attached above, so its completion must republish its own
// event id as a follow-event (spec §4.4.4's follow-event mechanism is
// how an intermediate reduction result reaches a trigger keyed on it),
// and it must never appear as a top-level engine.Result.
func (c *Compiler) finalizeChild(n *node) error {
	if err := c.programs.DefineProgramResult(n.programRef, n.eventID, true, 0); err != nil {
		return err
	}
	if err := c.programs.SetVisible(n.programRef, false); err != nil {
		return err
	}
	return c.programs.DoneProgram(n.programRef)
}

// DefinePattern publishes the top-of-stack node under name (spec §4.6
// define_pattern): a bare leaf is first wrapped in a single-trigger Any
// program. visible controls whether the published pattern's completion
// appears in engine.Machine.Results(); invisible patterns still
// republish their event id as a reference for other expressions to
// trigger on.
func (c *Compiler) DefinePattern(name string, visible bool) error {
	top, err := c.pop()
	if err != nil {
		return err
	}

	idx, ok := c.refIndex[name]
	if !ok {
		idx = c.nextRefIdx
		c.nextRefIdx++
		c.refIndex[name] = idx
	}
	aliasID, err := ir.NewEventID(ir.TagReference, idx)
	if err != nil {
		return engine.NewOverflow(err.Error())
	}
	resultHandle := c.patterns.GetOrCreate(name)

	if top.hasProgram {
		if err := c.programs.DefineProgramResult(top.programRef, aliasID, true, resultHandle); err != nil {
			return err
		}
		if err := c.programs.SetVisible(top.programRef, visible); err != nil {
			return err
		}
		if err := c.programs.Rename(top.programRef, name); err != nil {
			return err
		}
		if err := c.programs.DoneProgram(top.programRef); err != nil {
			return err
		}
	} else {
		variableID := uint32(0)
		if top.hasVariable {
			variableID = top.variableID
		}
		wrapRef := c.programs.CreateProgram(0, ir.ActionSlot{Count: 1}, name)
		c.allPrograms = append(c.allPrograms, wrapRef)
		if err := c.programs.CreateTrigger(wrapRef, top.eventID, true, ir.SigAny, 0, variableID); err != nil {
			return err
		}
		if err := c.programs.DefineProgramResult(wrapRef, aliasID, true, resultHandle); err != nil {
			return err
		}
		if err := c.programs.SetVisible(wrapRef, visible); err != nil {
			return err
		}
		if err := c.programs.DoneProgram(wrapRef); err != nil {
			return err
		}
	}

	c.defined[name] = true
	refs := make([]string, 0, len(top.refs))
	for r := range top.refs {
		refs = append(refs, r)
	}
	sort.Strings(refs)
	c.graph[name] = refs
	return nil
}

// Compile finalises the compiler: it fails on any pattern name
// referenced (via PushPattern) but never defined, fails on any cycle
// among pattern definitions, then runs the optimiser (spec §4.3) over
// the accumulated program table.
func (c *Compiler) Compile() error {
	if len(c.stack) != 0 {
		return engine.NewInternalInvariant(ir.NoEvent, fmt.Sprintf("compile: %d node(s) left on the stack, expected 0", len(c.stack)))
	}

	var unresolved []string
	for name := range c.refIndex {
		if !c.defined[name] {
			unresolved = append(unresolved, name)
		}
	}
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return engine.NewUnresolvedReference(unresolved[0])
	}

	if cycle := detectReferenceCycle(c.graph); len(cycle) > 0 {
		return engine.NewInternalInvariant(ir.NoEvent, fmt.Sprintf("pattern reference cycle: %s", joinPath(cycle)))
	}

	if errs := Validate(c.programs, c.allPrograms); len(errs) > 0 {
		return fmt.Errorf("compile: %d validation error(s), first: %w", len(errs), errs[0])
	}

	c.programs.Optimize(c.options.toProgramOptions())
	return nil
}

func (c *Compiler) peek() (*node, error) {
	if len(c.stack) == 0 {
		return nil, engine.NewMissingArguments("attach_variable", 1, 0)
	}
	return c.stack[len(c.stack)-1], nil
}

func (c *Compiler) pop() (*node, error) {
	n, err := c.peek()
	if err != nil {
		return nil, engine.NewMissingArguments("define_pattern", 1, 0)
	}
	c.stack = c.stack[:len(c.stack)-1]
	return n, nil
}

// sigFor returns the per-argument sig_type/sig_val/is_key triple for
// argument index i of an argc-ary operator reduction (spec §4.6's
// key-event marking table).
func sigFor(op Operator, i, argc int) (ir.SigType, uint32, bool) {
	switch op {
	case OpSequence:
		return ir.SigSequence, uint32(argc - i), i == 0
	case OpSequenceImm:
		if i == 0 {
			return ir.SigSequence, uint32(argc - i), true
		}
		return ir.SigSequenceImm, uint32(argc - i), false
	case OpSequenceStruct:
		if i == 0 {
			return ir.SigDel, 0, false
		}
		return ir.SigSequence, uint32(argc - i), i == 1
	case OpWithin:
		return ir.SigWithin, uint32(1) << uint(argc-i-1), true
	case OpWithinStruct:
		if i == 0 {
			return ir.SigDel, 0, false
		}
		return ir.SigWithin, uint32(1) << uint(argc-i), true
	case OpAny:
		return ir.SigAny, 0, true
	case OpAnd:
		return ir.SigAnd, 0, true
	default:
		return ir.SigAny, 0, true
	}
}

// slotTemplate computes the operator's action-slot initialisation
// (spec §4.6's slot-template table). cardinality of 0 means unset,
// defaulting per-operator as the table specifies.
func slotTemplate(op Operator, argc, cardinality int32) ir.ActionSlot {
	switch op {
	case OpSequence, OpSequenceImm:
		count := cardinality
		if count == 0 {
			count = argc
		}
		return ir.ActionSlot{Count: count, Value: argc}
	case OpSequenceStruct:
		count := cardinality
		if count == 0 {
			count = argc
		}
		return ir.ActionSlot{Count: count - 1, Value: argc - 1}
	case OpWithin:
		count := cardinality
		if count == 0 {
			count = argc
		}
		return ir.ActionSlot{Count: count, Value: int32(1<<uint(argc)) - 1}
	case OpWithinStruct:
		count := cardinality
		if count == 0 {
			count = argc
		}
		return ir.ActionSlot{Count: count - 1, Value: int32(1<<uint(argc)) - 1}
	case OpAny:
		count := cardinality
		if count == 0 {
			count = 1
		}
		return ir.ActionSlot{Count: count, Value: 0}
	case OpAnd:
		count := cardinality
		if count == 0 {
			count = argc
		}
		return ir.ActionSlot{Count: count, Value: 0}
	default:
		return ir.ActionSlot{Count: 1}
	}
}

// minRange returns the structural minimum position_range for an argc
// -ary operator reduction (spec §4.6 "Position-range check").
func minRange(op Operator, argc int32) int64 {
	switch op {
	case OpSequence, OpSequenceImm:
		if argc < 1 {
			return 0
		}
		return int64(argc - 1)
	case OpSequenceStruct:
		if argc < 2 {
			return 0
		}
		return int64(argc - 2)
	default:
		return 0
	}
}
