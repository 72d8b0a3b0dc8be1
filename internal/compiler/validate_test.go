package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
)

func TestValidate_NegativePositionRange(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(-1, ir.ActionSlot{Count: 1}, "bad-range")
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	require.NoError(t, pt.CreateTrigger(ref, evA, true, ir.SigAny, 0, 0))

	errs := Validate(pt, []program.ProgramRef{ref})
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrNegativePositionRange, errs[0].Code)
}

func TestValidate_NonPositiveCount(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(1, ir.ActionSlot{Count: 0}, "bad-count")
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	require.NoError(t, pt.CreateTrigger(ref, evA, true, ir.SigAny, 0, 0))

	errs := Validate(pt, []program.ProgramRef{ref})
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == ErrNonPositiveCount {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_UnreachableProgram(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(1, ir.ActionSlot{Count: 1}, "no-triggers")

	errs := Validate(pt, []program.ProgramRef{ref})
	require.NotEmpty(t, errs)
	assert.Equal(t, ErrUnreachableProgram, errs[0].Code)
}

func TestValidate_TooManyKeyTriggers(t *testing.T) {
	pt := program.New()
	ref := pt.CreateProgram(1, ir.ActionSlot{Count: 1}, "too-many-keys")
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	for i := 0; i < maxKeyTriggerDefs+1; i++ {
		require.NoError(t, pt.CreateTrigger(ref, evA, true, ir.SigAny, 0, uint32(i)))
	}

	errs := Validate(pt, []program.ProgramRef{ref})
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == ErrTooManyKeyTriggers {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_DuplicatePatternName(t *testing.T) {
	pt := program.New()
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)
	evB, err := ir.NewEventID(ir.TagTerm, 2)
	require.NoError(t, err)

	ref1 := pt.CreateProgram(1, ir.ActionSlot{Count: 1}, "dup")
	require.NoError(t, pt.CreateTrigger(ref1, evA, true, ir.SigAny, 0, 0))

	ref2 := pt.CreateProgram(1, ir.ActionSlot{Count: 1}, "dup")
	require.NoError(t, pt.CreateTrigger(ref2, evB, true, ir.SigAny, 0, 0))

	errs := Validate(pt, []program.ProgramRef{ref1, ref2})
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Code == ErrDuplicatePatternName {
			found = true
		}
	}
	assert.True(t, found)
}

func TestValidate_WellFormedProgramHasNoErrors(t *testing.T) {
	pt := program.New()
	evA, err := ir.NewEventID(ir.TagTerm, 1)
	require.NoError(t, err)

	ref := pt.CreateProgram(1, ir.ActionSlot{Count: 1}, "fine")
	require.NoError(t, pt.CreateTrigger(ref, evA, true, ir.SigAny, 0, 0))

	errs := Validate(pt, []program.ProgramRef{ref})
	assert.Empty(t, errs)
}
