package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/ir"
)

func TestTransitionBudget_WithinLimit(t *testing.T) {
	b := NewTransitionBudget(10)

	for i := 0; i < 10; i++ {
		err := b.Consume(ir.EventID(1))
		assert.NoError(t, err, "step %d should be allowed", i+1)
	}

	assert.Equal(t, 10, b.Current())
}

func TestTransitionBudget_ExceedsLimit(t *testing.T) {
	b := NewTransitionBudget(5)

	for i := 0; i < 5; i++ {
		assert.NoError(t, b.Consume(ir.EventID(1)))
	}

	err := b.Consume(ir.EventID(1))
	require.Error(t, err)
	assert.True(t, IsInternalInvariant(err))
}

func TestTransitionBudget_Reset(t *testing.T) {
	b := NewTransitionBudget(5)

	for i := 0; i < 5; i++ {
		b.Consume(ir.EventID(1))
	}
	assert.Equal(t, 5, b.Current())

	b.Reset()
	assert.Equal(t, 0, b.Current())

	for i := 0; i < 5; i++ {
		assert.NoError(t, b.Consume(ir.EventID(1)))
	}
}

func TestTransitionBudget_ZeroLimit(t *testing.T) {
	b := NewTransitionBudget(0)

	err := b.Consume(ir.EventID(1))
	require.Error(t, err)
	assert.True(t, IsInternalInvariant(err))
}

func TestTransitionBudget_SingleStep(t *testing.T) {
	b := NewTransitionBudget(1)

	assert.NoError(t, b.Consume(ir.EventID(1)))

	err := b.Consume(ir.EventID(1))
	require.Error(t, err)
	assert.True(t, IsInternalInvariant(err))
}
