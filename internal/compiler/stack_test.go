package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
)

func newCompiler() (*Compiler, *program.Table, *NameTable, *NameTable) {
	pt := program.New()
	vars := NewNameTable()
	patterns := NewNameTable()
	return New(pt, vars, patterns), pt, vars, patterns
}

func TestCompiler_PushTerm_SingleLeafDefinePattern(t *testing.T) {
	c, pt, _, patterns := newCompiler()

	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.DefinePattern("single", true))
	require.NoError(t, c.Compile())

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "single", m.Results()[0].Name)
}

func TestCompiler_PushExpression_Sequence_CompletesInRange(t *testing.T) {
	c, pt, _, patterns := newCompiler()

	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.PushTerm(2))
	require.NoError(t, c.PushExpression(OpSequence, 2, 3, 0))
	require.NoError(t, c.DefinePattern("seq", true))
	require.NoError(t, c.Compile())

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	evB, err := ir.NewEventID(ir.TagTerm, 2)
	require.NoError(t, err)

	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.NoError(t, m.DoTransition(evB, ir.EventData{StartOrdpos: 2, EndOrdpos: 2}))
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "seq", m.Results()[0].Name)
}

func TestCompiler_PushExpression_RejectsBelowStructuralMinimumRange(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.PushTerm(2))
	require.NoError(t, c.PushTerm(3))

	err := c.PushExpression(OpSequence, 3, 1, 0)
	require.Error(t, err)
	assert.True(t, engine.IsOverflow(err))
}

func TestCompiler_PushExpression_SequenceImm_DefaultsRangeToStructuralMinimum(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.PushTerm(2))
	require.NoError(t, c.PushTerm(3))

	require.NoError(t, c.PushExpression(OpSequenceImm, 3, 0, 0))
}

func TestCompiler_PushExpression_MissingArguments(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushTerm(1))

	err := c.PushExpression(OpSequence, 2, 1, 0)
	require.Error(t, err)
	assert.True(t, engine.IsMissingArguments(err))
}

func TestCompiler_AttachVariable_DoubleAssignmentFails(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.AttachVariable("x", 0))

	err := c.AttachVariable("y", 0)
	require.Error(t, err)
	assert.True(t, engine.IsDoubleVariableAssignment(err))
}

func TestCompiler_PushPattern_ForwardReferenceResolvesAtDefinition(t *testing.T) {
	c, pt, _, patterns := newCompiler()

	// rule: alpha := term(1); beta := sequence(alpha, term(2), range=2)
	require.NoError(t, c.PushPattern("alpha"))
	require.NoError(t, c.PushTerm(2))
	require.NoError(t, c.PushExpression(OpSequence, 2, 2, 0))
	require.NoError(t, c.DefinePattern("beta", true))

	require.NoError(t, c.PushTerm(1))
	require.NoError(t, c.DefinePattern("alpha", false))

	require.NoError(t, c.Compile())

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	evB, err := ir.NewEventID(ir.TagTerm, 2)
	require.NoError(t, err)

	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.NoError(t, m.DoTransition(evB, ir.EventData{StartOrdpos: 2, EndOrdpos: 2}))
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "beta", m.Results()[0].Name)
}

func TestCompiler_Compile_UnresolvedReferenceFails(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushPattern("never-defined"))
	require.NoError(t, c.DefinePattern("user", true))

	err := c.Compile()
	require.Error(t, err)
	assert.True(t, engine.IsUnresolvedReference(err))
}

func TestCompiler_Compile_PatternReferenceCycleFails(t *testing.T) {
	c, _, _, _ := newCompiler()

	require.NoError(t, c.PushPattern("b"))
	require.NoError(t, c.DefinePattern("a", true))

	require.NoError(t, c.PushPattern("a"))
	require.NoError(t, c.DefinePattern("b", true))

	err := c.Compile()
	require.Error(t, err)
	assert.True(t, engine.IsInternalInvariant(err))
}

func TestCompiler_Compile_LeavesNonEmptyStackFails(t *testing.T) {
	c, _, _, _ := newCompiler()
	require.NoError(t, c.PushTerm(1))

	err := c.Compile()
	require.Error(t, err)
	assert.True(t, engine.IsInternalInvariant(err))
}
