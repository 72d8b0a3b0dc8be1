package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameTable_GetOrCreate_AssignsDenseIDs(t *testing.T) {
	nt := NewNameTable()
	assert.Equal(t, uint32(0), nt.GetOrCreate("a"))
	assert.Equal(t, uint32(1), nt.GetOrCreate("b"))
	assert.Equal(t, uint32(0), nt.GetOrCreate("a"))
	assert.Equal(t, 2, nt.Len())
}

func TestNameTable_NameOf(t *testing.T) {
	nt := NewNameTable()
	id := nt.GetOrCreate("hello")
	assert.Equal(t, "hello", nt.NameOf(id))
	assert.Equal(t, "", nt.NameOf(id+1))
}
