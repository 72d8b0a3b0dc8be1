package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
)

func TestLoadGrammar_SimpleTermPattern(t *testing.T) {
	c, pt, _, patterns := newCompiler()

	_, err := LoadGrammar(c, `greeting = 1;`)
	require.NoError(t, err)
	require.NoError(t, c.Compile())

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "greeting", m.Results()[0].Name)
}

func TestLoadGrammar_SequenceExpressionAndOption(t *testing.T) {
	c, pt, _, patterns := newCompiler()

	_, err := LoadGrammar(c, `
%maxRange = 8;
checkout = sequence(1, 2 | 3);
`)
	require.NoError(t, err)
	require.NoError(t, c.Compile())
	assert.Equal(t, int64(8), c.options.MaxRange)

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	evB, err := ir.NewEventID(ir.TagTerm, 2)
	require.NoError(t, err)

	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.NoError(t, m.DoTransition(evB, ir.EventData{StartOrdpos: 2, EndOrdpos: 2}))
	require.Len(t, m.Results(), 1)
	assert.Equal(t, "checkout", m.Results()[0].Name)
}

func TestLoadGrammar_InvisiblePatternPrefix(t *testing.T) {
	c, pt, _, _ := newCompiler()
	_, err := LoadGrammar(c, `.hidden = 1;`)
	require.NoError(t, err)
	require.NotEmpty(t, c.allPrograms)

	p, err := pt.Get(c.allPrograms[len(c.allPrograms)-1])
	require.NoError(t, err)
	assert.False(t, p.Visible)
}

func TestLoadGrammar_VariableBindingAndReference(t *testing.T) {
	c, pt, _, patterns := newCompiler()
	_, err := LoadGrammar(c, `
base = [head] 1;
combined = sequence(base, 2 | 2);
`)
	require.NoError(t, err)
	require.NoError(t, c.Compile())

	m := engine.NewMachine(pt, patterns)
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	evB, err := ir.NewEventID(ir.TagTerm, 2)
	require.NoError(t, err)

	require.NoError(t, m.DoTransition(evA, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}))
	require.NoError(t, m.DoTransition(evB, ir.EventData{StartOrdpos: 2, EndOrdpos: 2}))
	require.Len(t, m.Results(), 1)
}

func TestLoadGrammar_UnknownOperatorFails(t *testing.T) {
	c, _, _, _ := newCompiler()
	_, err := LoadGrammar(c, `bad = nonsense(1);`)
	require.Error(t, err)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
}
