package program

import (
	"testing"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func termEvent(id uint32) ir.EventID {
	eid, err := ir.NewEventID(ir.TagTerm, id)
	if err != nil {
		panic(err)
	}
	return eid
}

func TestCreateProgramAndTrigger(t *testing.T) {
	tbl := New()
	ref := tbl.CreateProgram(4, ir.ActionSlot{}, "greeting")

	err := tbl.CreateTrigger(ref, termEvent(1), true, ir.SigAny, 0, 0)
	require.NoError(t, err)

	p, err := tbl.Get(ref)
	require.NoError(t, err)
	assert.NotEqual(t, int32(-1), p.TriggerDefHead)
	assert.Equal(t, "greeting", p.Name)
}

func TestCreateTriggerRegistersKeyEventInstall(t *testing.T) {
	tbl := New()
	ref := tbl.CreateProgram(4, ir.ActionSlot{}, "greeting")
	require.NoError(t, tbl.CreateTrigger(ref, termEvent(1), true, ir.SigAny, 0, 0))

	list, err := tbl.EventProgramList(termEvent(1))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int32(ref), list[0].ProgramRef)
	assert.Equal(t, ir.NoEvent, list[0].PastEventID)
}

func TestNonKeyTriggerDoesNotInstall(t *testing.T) {
	tbl := New()
	ref := tbl.CreateProgram(4, ir.ActionSlot{}, "greeting")
	require.NoError(t, tbl.CreateTrigger(ref, termEvent(2), false, ir.SigSequence, 0, 1))

	list, err := tbl.EventProgramList(termEvent(2))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDoneProgramMarksFinal(t *testing.T) {
	tbl := New()
	ref := tbl.CreateProgram(4, ir.ActionSlot{}, "p")
	require.NoError(t, tbl.DoneProgram(ref))

	p, err := tbl.Get(ref)
	require.NoError(t, err)
	assert.True(t, p.Done)
}

func TestDefineProgramResult(t *testing.T) {
	tbl := New()
	ref := tbl.CreateProgram(4, ir.ActionSlot{}, "p")
	require.NoError(t, tbl.DefineProgramResult(ref, ir.NoEvent, false, 7))

	p, err := tbl.Get(ref)
	require.NoError(t, err)
	assert.True(t, p.SlotTemplate.HasResult)
	assert.Equal(t, uint32(7), p.SlotTemplate.ResultHandle)
}

func TestIsStopwordDefaultsFalse(t *testing.T) {
	tbl := New()
	assert.False(t, tbl.IsStopword(termEvent(99)))
}

func TestEventProgramListUnknownEventIsEmpty(t *testing.T) {
	tbl := New()
	list, err := tbl.EventProgramList(termEvent(123))
	require.NoError(t, err)
	assert.Empty(t, list)
}
