package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableAddGet(t *testing.T) {
	tbl := NewTable[string](0)
	idx := tbl.Add("hello")

	got, err := tbl.Get(idx)
	require.NoError(t, err)
	assert.Equal(t, "hello", *got)
	assert.Equal(t, 1, tbl.Len())
}

func TestTableRemoveReusesSlot(t *testing.T) {
	tbl := NewTable[int](0)
	a := tbl.Add(1)
	b := tbl.Add(2)

	require.NoError(t, tbl.Remove(a))
	assert.Equal(t, 1, tbl.Len())

	c := tbl.Add(3)
	assert.Equal(t, a, c, "freed slot should be reused before growing")

	got, err := tbl.Get(b)
	require.NoError(t, err)
	assert.Equal(t, 2, *got)
}

func TestTableIndicesStableWhileLive(t *testing.T) {
	tbl := NewTable[int](0)
	a := tbl.Add(10)
	b := tbl.Add(20)
	c := tbl.Add(30)

	require.NoError(t, tbl.Remove(b))

	gotA, err := tbl.Get(a)
	require.NoError(t, err)
	assert.Equal(t, 10, *gotA)

	gotC, err := tbl.Get(c)
	require.NoError(t, err)
	assert.Equal(t, 30, *gotC)
}

func TestTableGetOutOfRange(t *testing.T) {
	tbl := NewTable[int](0)
	_, err := tbl.Get(5)
	assert.Error(t, err)
}

func TestTableUseAfterFreeDetected(t *testing.T) {
	tbl := NewTable[int](0)
	idx := tbl.Add(1)
	require.NoError(t, tbl.Remove(idx))

	_, err := tbl.Get(idx)
	assert.Error(t, err, "reading a freed index must fail, not return stale data")
}

func TestTableDoubleFreeDetected(t *testing.T) {
	tbl := NewTable[int](0)
	idx := tbl.Add(1)
	require.NoError(t, tbl.Remove(idx))

	err := tbl.Remove(idx)
	assert.Error(t, err, "removing an already-free index must fail")
}

func TestTableClearResetsUsedSize(t *testing.T) {
	tbl := NewTable[int](0)
	tbl.Add(1)
	tbl.Add(2)
	tbl.Clear()

	assert.Equal(t, 0, tbl.Len())
}

func TestTableIsLive(t *testing.T) {
	tbl := NewTable[int](0)
	idx := tbl.Add(1)
	assert.True(t, tbl.IsLive(idx))

	require.NoError(t, tbl.Remove(idx))
	assert.False(t, tbl.IsLive(idx))
	assert.False(t, tbl.IsLive(999))
}

func TestTableNoAllocationOnceWarmed(t *testing.T) {
	tbl := NewTable[int](4)
	idx := tbl.Add(1)
	require.NoError(t, tbl.Remove(idx))

	before := cap(tbl.records)
	tbl.Add(2)
	assert.Equal(t, before, cap(tbl.records), "reusing a freed slot must not grow the backing slice")
}
