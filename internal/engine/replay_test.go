package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
)

func TestReplayPastEvent_WithinReachCompletes(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(100, ir.ActionSlot{Count: 1}, "relinked")
	require.NoError(t, pt.CreateTrigger(ref, evA, false, ir.SigAny, 0, 1))
	require.NoError(t, pt.DefineProgramResult(ref, ir.NoEvent, false, 1))
	require.NoError(t, pt.DoneProgram(ref))

	m := NewMachine(pt, nil)
	require.NoError(t, m.SetCurrentPos(10))
	m.stopwordLog[evA] = stopwordEntry{data: ir.EventData{StartOrdpos: 5, EndOrdpos: 5}, timestamp: 0}

	q := newFollowQueue()
	require.NoError(t, m.installProgram(ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: evA}, evB, ir.EventData{StartOrdpos: 10, EndOrdpos: 10}, q))

	require.Len(t, m.Results(), 1, "replay within reach should complete the rule")
	assert.Equal(t, 0, m.rules.Len(), "the completed rule should be disposed")
}

func TestReplayPastEvent_OutOfReachDoesNothing(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(2, ir.ActionSlot{Count: 1}, "relinked")
	require.NoError(t, pt.CreateTrigger(ref, evA, false, ir.SigAny, 0, 1))
	require.NoError(t, pt.DefineProgramResult(ref, ir.NoEvent, false, 1))
	require.NoError(t, pt.DoneProgram(ref))

	m := NewMachine(pt, nil)
	require.NoError(t, m.SetCurrentPos(10))
	m.stopwordLog[evA] = stopwordEntry{data: ir.EventData{StartOrdpos: 1, EndOrdpos: 1}, timestamp: 0}

	q := newFollowQueue()
	require.NoError(t, m.installProgram(ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: evA}, evB, ir.EventData{StartOrdpos: 10, EndOrdpos: 10}, q))

	assert.Empty(t, m.Results(), "a stopword occurrence outside position_range must not be replayed")
	assert.Equal(t, 1, m.rules.Len(), "the rule should still be live, waiting on evA")
}

func TestReplayPastEvent_NoStopwordEntryIsNoop(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(100, ir.ActionSlot{Count: 1}, "relinked")
	require.NoError(t, pt.CreateTrigger(ref, evA, false, ir.SigAny, 0, 1))
	require.NoError(t, pt.DefineProgramResult(ref, ir.NoEvent, false, 1))
	require.NoError(t, pt.DoneProgram(ref))

	m := NewMachine(pt, nil)
	q := newFollowQueue()
	require.NoError(t, m.installProgram(ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: evA}, evB, ir.EventData{StartOrdpos: 1, EndOrdpos: 1}, q))

	assert.Empty(t, m.Results())
	assert.Equal(t, 1, m.rules.Len(), "with no remembered evA occurrence, the rule stays live waiting for one")
}

func TestReplayPastEvent_DelimiterIntervenedDeactivates(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(100, ir.ActionSlot{Count: 1}, "relinked")
	require.NoError(t, pt.CreateTrigger(ref, evA, false, ir.SigAny, 0, 1))
	require.NoError(t, pt.CreateTrigger(ref, evC, false, ir.SigDel, 0, 0))
	require.NoError(t, pt.DefineProgramResult(ref, ir.NoEvent, false, 1))
	require.NoError(t, pt.DoneProgram(ref))

	m := NewMachine(pt, nil)
	require.NoError(t, m.SetCurrentPos(10))
	m.stopwordLog[evA] = stopwordEntry{data: ir.EventData{StartOrdpos: 5, EndOrdpos: 5}, timestamp: 0}
	m.stopwordLog[evC] = stopwordEntry{data: ir.EventData{StartOrdpos: 7, EndOrdpos: 7}, timestamp: 1}

	q := newFollowQueue()
	require.NoError(t, m.installProgram(ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: evA}, evB, ir.EventData{StartOrdpos: 10, EndOrdpos: 10}, q))

	assert.Empty(t, m.Results(), "a delimiter that fired more recently than the replayed occurrence deactivates the rule")
	assert.Equal(t, 0, m.rules.Len())
}

func TestReplayPastEvent_ForbidsFollowEvent(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(100, ir.ActionSlot{Count: 1}, "relinked")
	require.NoError(t, pt.CreateTrigger(ref, evA, false, ir.SigAny, 0, 1))
	require.NoError(t, pt.DefineProgramResult(ref, evC, true, 1))
	require.NoError(t, pt.DoneProgram(ref))

	m := NewMachine(pt, nil)
	require.NoError(t, m.SetCurrentPos(10))
	m.stopwordLog[evA] = stopwordEntry{data: ir.EventData{StartOrdpos: 5, EndOrdpos: 5}, timestamp: 0}

	q := newFollowQueue()
	err := m.installProgram(ir.ProgramTrigger{ProgramRef: int32(ref), PastEventID: evA}, evB, ir.EventData{StartOrdpos: 10, EndOrdpos: 10}, q)
	require.Error(t, err)
	assert.True(t, IsInternalInvariant(err))
}
