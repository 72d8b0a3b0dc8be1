package engine

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDv7Generator_ProducesValidV7(t *testing.T) {
	g := UUIDv7Generator{}

	id := g.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDv7Generator_ProducesDistinctIDs(t *testing.T) {
	g := UUIDv7Generator{}

	a := g.Generate()
	b := g.Generate()
	assert.NotEqual(t, a, b)
}

func TestFixedGenerator_YieldsTokensInOrder(t *testing.T) {
	g := NewFixedGenerator("a", "b", "c")

	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Equal(t, "c", g.Generate())
}

func TestFixedGenerator_PanicsOnExhaustion(t *testing.T) {
	g := NewFixedGenerator("only")
	g.Generate()

	assert.Panics(t, func() { g.Generate() })
}
