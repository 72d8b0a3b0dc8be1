package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectReferenceCycle_Empty(t *testing.T) {
	assert.Empty(t, detectReferenceCycle(nil))
}

func TestDetectReferenceCycle_DAG(t *testing.T) {
	graph := referenceGraph{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {},
	}
	assert.Empty(t, detectReferenceCycle(graph))
}

func TestDetectReferenceCycle_SelfLoop(t *testing.T) {
	graph := referenceGraph{"a": {"a"}}
	cycle := detectReferenceCycle(graph)
	require.Len(t, cycle, 2)
	assert.Equal(t, []string{"a", "a"}, cycle)
}

func TestDetectReferenceCycle_TwoNode(t *testing.T) {
	graph := referenceGraph{
		"a": {"b"},
		"b": {"a"},
	}
	cycle := detectReferenceCycle(graph)
	require.Len(t, cycle, 3)
	assert.Equal(t, cycle[0], cycle[2])
}

func TestDetectReferenceCycle_ThreeNode(t *testing.T) {
	graph := referenceGraph{
		"a": {"b"},
		"b": {"c"},
		"c": {"a"},
	}
	cycle := detectReferenceCycle(graph)
	require.Len(t, cycle, 4)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
}

func TestHasSelfLoop(t *testing.T) {
	graph := referenceGraph{
		"self-loop": {"self-loop"},
		"no-loop":   {"other"},
		"no-edges":  {},
	}
	assert.True(t, hasSelfLoop("self-loop", graph))
	assert.False(t, hasSelfLoop("no-loop", graph))
	assert.False(t, hasSelfLoop("no-edges", graph))
}

func TestTarjanSCC_DAG(t *testing.T) {
	graph := referenceGraph{
		"a": {"b", "c"},
		"b": {"c"},
		"c": {},
	}
	sccs := tarjanSCC(graph)
	assert.Len(t, sccs, 3)
	for _, scc := range sccs {
		assert.Len(t, scc, 1)
	}
}

func TestTarjanSCC_TwoNodeCycle(t *testing.T) {
	graph := referenceGraph{
		"a": {"b"},
		"b": {"a"},
	}
	sccs := tarjanSCC(graph)
	require.Len(t, sccs, 1)
	assert.Len(t, sccs[0], 2)
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "a -> b -> a", joinPath([]string{"a", "b", "a"}))
}
