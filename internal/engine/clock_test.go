package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClock_NewClock(t *testing.T) {
	c := NewClock()
	assert.Equal(t, int64(0), c.Current())
}

func TestClock_NewClockAt(t *testing.T) {
	c := NewClockAt(100)
	assert.Equal(t, int64(100), c.Current())
}

func TestClock_Advance(t *testing.T) {
	c := NewClock()
	assert.NoError(t, c.Advance(5))
	assert.Equal(t, int64(5), c.Current())
	assert.NoError(t, c.Advance(5), "advancing to the same position is allowed")
}

func TestClock_Advance_RejectsOrderViolation(t *testing.T) {
	c := NewClockAt(10)
	err := c.Advance(9)
	assert.Error(t, err)
	assert.True(t, IsOrderViolation(err))
}

func TestClock_Reset(t *testing.T) {
	c := NewClockAt(42)
	c.Reset()
	assert.Equal(t, int64(0), c.Current())
}
