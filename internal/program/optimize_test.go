package program

import (
	"testing"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildStopwordCorpus creates enough programs keyed on "the" that it
// crosses the stopword_occurrence_factor threshold, each with a rarer
// Sequence trigger on a distinct content word as an alternative key.
func buildStopwordCorpus(t *testing.T, n int) *Table {
	t.Helper()
	tbl := New()
	theEvent := termEvent(1)
	tbl.DefineEventFrequency(theEvent, 1000) // very common

	for i := 0; i < n; i++ {
		contentEvent := termEvent(uint32(100 + i))
		tbl.DefineEventFrequency(contentEvent, 1) // rare

		ref := tbl.CreateProgram(3, ir.ActionSlot{}, "phrase")
		require.NoError(t, tbl.CreateTrigger(ref, theEvent, true, ir.SigSequence, 2, 0))
		require.NoError(t, tbl.CreateTrigger(ref, contentEvent, false, ir.SigSequence, 1, 1))
		require.NoError(t, tbl.DoneProgram(ref))
	}
	return tbl
}

func TestOptimizeMarksHighOccurrenceEventStopword(t *testing.T) {
	tbl := buildStopwordCorpus(t, 50)
	tbl.Optimize(DefaultOptions())

	assert.True(t, tbl.IsStopword(termEvent(1)), "frequent key event should become a stopword")
}

func TestOptimizeRelinksToRarerAlternative(t *testing.T) {
	tbl := buildStopwordCorpus(t, 50)
	tbl.Optimize(DefaultOptions())

	list, err := tbl.EventProgramList(termEvent(100))
	require.NoError(t, err)
	require.Len(t, list, 1, "program should have been relinked under its rarer content-word key")
	assert.Equal(t, termEvent(1), list[0].PastEventID, "relinked program records its original key as past_event_id")
}

func TestOptimizeDoesNotRelinkWhenAnyTriggerPresent(t *testing.T) {
	tbl := New()
	theEvent := termEvent(1)
	tbl.DefineEventFrequency(theEvent, 1000)
	contentEvent := termEvent(200)
	tbl.DefineEventFrequency(contentEvent, 1)

	for i := 0; i < 50; i++ {
		ref := tbl.CreateProgram(3, ir.ActionSlot{}, "phrase")
		require.NoError(t, tbl.CreateTrigger(ref, theEvent, true, ir.SigAny, 0, 0))
		require.NoError(t, tbl.CreateTrigger(ref, contentEvent, false, ir.SigAny, 0, 1))
		require.NoError(t, tbl.DoneProgram(ref))
	}

	tbl.Optimize(DefaultOptions())

	list, err := tbl.EventProgramList(contentEvent)
	require.NoError(t, err)
	assert.Empty(t, list, "an Any trigger disqualifies alternation entirely")
}

func TestOptimizeRespectsMaxRange(t *testing.T) {
	tbl := New()
	theEvent := termEvent(1)
	tbl.DefineEventFrequency(theEvent, 1000)
	contentEvent := termEvent(300)
	tbl.DefineEventFrequency(contentEvent, 1)

	for i := 0; i < 50; i++ {
		ref := tbl.CreateProgram(99, ir.ActionSlot{}, "phrase") // exceeds MaxRange
		require.NoError(t, tbl.CreateTrigger(ref, theEvent, true, ir.SigAny, 0, 0))
		require.NoError(t, tbl.CreateTrigger(ref, contentEvent, false, ir.SigSequence, 1, 1))
		require.NoError(t, tbl.DoneProgram(ref))
	}

	tbl.Optimize(DefaultOptions())

	list, err := tbl.EventProgramList(contentEvent)
	require.NoError(t, err)
	assert.Empty(t, list, "programs exceeding max_range are not eligible for relinking")
}

func TestWeightFormula(t *testing.T) {
	tbl := New()
	e := termEvent(5)

	// No explicit frequency and no key occurrence: weight = max(1,0) * max(1,0) = 1.
	assert.Equal(t, float64(1), tbl.weight(e))

	tbl.DefineEventFrequency(e, 4)
	tbl.keyOccurrence[e] = 3
	assert.Equal(t, float64(12), tbl.weight(e))
}
