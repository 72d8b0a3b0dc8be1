package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/ir"
)

func TestCaptureStart_FirstFire(t *testing.T) {
	slot := &ir.ActionSlot{}
	captureStart(slot, ir.EventData{StartOrdpos: 10, StartOrigseg: 1, StartOrigpos: 2})

	assert.True(t, slot.StartCaptured)
	assert.Equal(t, int64(10), slot.StartOrdpos)
	assert.Equal(t, uint32(1), slot.StartOrigseg)
	assert.Equal(t, uint32(2), slot.StartOrigpos)
}

func TestCaptureStart_UpdatesOnlyWhenSmaller(t *testing.T) {
	slot := &ir.ActionSlot{StartCaptured: true, StartOrdpos: 10}

	captureStart(slot, ir.EventData{StartOrdpos: 15})
	assert.Equal(t, int64(10), slot.StartOrdpos, "a later ordpos should not move start backward")

	captureStart(slot, ir.EventData{StartOrdpos: 3, StartOrigseg: 9, StartOrigpos: 9})
	assert.Equal(t, int64(3), slot.StartOrdpos, "an earlier ordpos should replace start")
	assert.Equal(t, uint32(9), slot.StartOrigseg)
}

func TestFireAny_CountsDown(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Count: 2}
	var ref int32 = -1
	trig := ir.Trigger{SigType: ir.SigAny, VariableID: 1}

	fr, err := fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 1, EndOrdpos: 1})
	require.NoError(t, err)
	assert.True(t, fr.fired)
	assert.False(t, fr.completed)
	assert.Equal(t, int32(1), slot.Count)

	fr, err = fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 2, EndOrdpos: 2})
	require.NoError(t, err)
	assert.True(t, fr.completed, "count reaching zero completes the slot")
}

func TestFireAny_ZeroCountDoesNothing(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Count: 0}
	var ref int32 = -1

	fr, err := fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigAny}, ir.EventID(1), ir.EventData{})
	require.NoError(t, err)
	assert.False(t, fr.fired)
}

func TestFireSequence_RequiresMatchingValue(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 3, Count: 3}
	var ref int32 = -1
	trig := ir.Trigger{SigType: ir.SigSequence, SigVal: 99}

	fr, err := fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 1, EndOrdpos: 1})
	require.NoError(t, err)
	assert.False(t, fr.fired, "a mismatched sig_val should not fire")
}

func TestFireSequence_StrictProgression(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 2, Count: 2, EndOrdpos: 5}
	var ref int32 = -1
	trig := ir.Trigger{SigType: ir.SigSequence, SigVal: 2}

	fr, err := fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 5, EndOrdpos: 5})
	require.NoError(t, err)
	assert.False(t, fr.fired, "sequence requires strict progression past end_ordpos")

	fr, err = fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 6, EndOrdpos: 6})
	require.NoError(t, err)
	assert.True(t, fr.fired)
	assert.Equal(t, int32(1), slot.Value)
}

func TestFireSequence_CompletesAtZeroValue(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 1, Count: 1, EndOrdpos: 0}
	var ref int32 = -1
	trig := ir.Trigger{SigType: ir.SigSequence, SigVal: 1}

	fr, err := fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 1, EndOrdpos: 1})
	require.NoError(t, err)
	assert.True(t, fr.completed)
}

func TestFireSequenceImm_RequiresNoGap(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 2, Count: 2, EndOrdpos: 5}
	var ref int32 = -1
	trig := ir.Trigger{SigType: ir.SigSequenceImm, SigVal: 2}

	fr, err := fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 7, EndOrdpos: 7})
	require.NoError(t, err)
	assert.False(t, fr.fired, "a gap should not fire SequenceImm")

	fr, err = fireTrigger(ds, slot, &ref, trig, ir.EventID(1), ir.EventData{StartOrdpos: 6, EndOrdpos: 6})
	require.NoError(t, err)
	assert.True(t, fr.fired)
}

func TestFireWithin_ClearsBitOutOfOrder(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 0b11, Count: 2}
	var ref int32 = -1

	fr, err := fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigWithin, SigVal: 0b10}, ir.EventID(1), ir.EventData{StartOrdpos: 1, EndOrdpos: 1})
	require.NoError(t, err)
	assert.True(t, fr.fired)
	assert.Equal(t, int32(0b01), slot.Value)
	assert.False(t, fr.completed)

	fr, err = fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigWithin, SigVal: 0b01}, ir.EventID(1), ir.EventData{StartOrdpos: 2, EndOrdpos: 2})
	require.NoError(t, err)
	assert.True(t, fr.completed, "clearing the last bit completes the slot")
}

func TestFireWithin_AlreadyClearedBitDoesNothing(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Value: 0b01, Count: 2}
	var ref int32 = -1

	fr, err := fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigWithin, SigVal: 0b10}, ir.EventID(1), ir.EventData{StartOrdpos: 1, EndOrdpos: 1})
	require.NoError(t, err)
	assert.False(t, fr.fired)
}

func TestFireAnd_RequiresSameOrdpos(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{Count: 2}
	var ref int32 = -1

	fr, err := fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigAnd, VariableID: 1}, ir.EventID(1), ir.EventData{StartOrdpos: 5, EndOrdpos: 5})
	require.NoError(t, err)
	assert.True(t, fr.fired)

	fr, err = fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigAnd, VariableID: 2}, ir.EventID(2), ir.EventData{StartOrdpos: 6, EndOrdpos: 6})
	require.NoError(t, err)
	assert.False(t, fr.fired, "a later argument at a different ordpos should not fire And")

	fr, err = fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigAnd, VariableID: 2}, ir.EventID(2), ir.EventData{StartOrdpos: 5, EndOrdpos: 5})
	require.NoError(t, err)
	assert.True(t, fr.fired)
	assert.True(t, fr.completed)
}

func TestFireTrigger_SigDel_Disposes(t *testing.T) {
	ds := newDataStore()
	slot := &ir.ActionSlot{}
	var ref int32 = -1

	fr, err := fireTrigger(ds, slot, &ref, ir.Trigger{SigType: ir.SigDel}, ir.EventID(1), ir.EventData{})
	require.NoError(t, err)
	assert.True(t, fr.disposed)
}

func TestBindOrSplice_NamedVariableBinds(t *testing.T) {
	ds := newDataStore()
	var ref int32 = -1

	require.NoError(t, bindOrSplice(ds, &ref, 7, ir.EventID(3), ir.EventData{StartOrdpos: 1}))

	items, err := ds.values(ref)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint32(7), items[0].VariableID)
}

func TestBindOrSplice_UnnamedWithSubdataSplices(t *testing.T) {
	ds := newDataStore()

	var subRef int32 = -1
	require.NoError(t, ds.bindVariable(&subRef, 1, ir.EventID(1), ir.EventData{}))

	var ref int32 = -1
	require.NoError(t, bindOrSplice(ds, &ref, 0, ir.EventID(2), ir.EventData{SubdataRef: subRef}))

	items, err := ds.values(ref)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestBindOrSplice_UnnamedNoSubdataIsNoop(t *testing.T) {
	ds := newDataStore()
	var ref int32 = -1

	require.NoError(t, bindOrSplice(ds, &ref, 0, ir.EventID(1), ir.EventData{SubdataRef: -1}))
	assert.Equal(t, int32(-1), ref)
}
