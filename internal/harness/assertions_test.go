package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/store"
)

func newSeededStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.WriteFrequencyRecord(context.Background(), ir.FrequencyRecord{EventID: 7, Corpus: "default", DF: 1000}))
	return st
}

func TestAssertFinalStatePasses(t *testing.T) {
	st := newSeededStore(t)
	actx := &AssertionContext{Store: st, Ctx: context.Background()}

	errs := EvaluateAssertions([]Assertion{{
		Type:   AssertFinalState,
		Table:  "frequency_records",
		Where:  map[string]interface{}{"event_id": 7},
		Expect: map[string]interface{}{"df": 1000.0},
	}}, actx)

	assert.Empty(t, errs)
}

func TestAssertFinalStateFailsOnMismatch(t *testing.T) {
	st := newSeededStore(t)
	actx := &AssertionContext{Store: st, Ctx: context.Background()}

	errs := EvaluateAssertions([]Assertion{{
		Type:   AssertFinalState,
		Table:  "frequency_records",
		Where:  map[string]interface{}{"event_id": 7},
		Expect: map[string]interface{}{"df": 1.0},
	}}, actx)

	require.Len(t, errs, 1)
}

func TestAssertFinalStateRejectsBadTableName(t *testing.T) {
	st := newSeededStore(t)
	actx := &AssertionContext{Store: st, Ctx: context.Background()}

	errs := EvaluateAssertions([]Assertion{{
		Type:   AssertFinalState,
		Table:  "frequency_records; DROP TABLE frequency_records",
		Expect: map[string]interface{}{"df": 1.0},
	}}, actx)

	require.Len(t, errs, 1)
}

func TestAssertFinalStateRowNotFound(t *testing.T) {
	st := newSeededStore(t)
	actx := &AssertionContext{Store: st, Ctx: context.Background()}

	errs := EvaluateAssertions([]Assertion{{
		Type:   AssertFinalState,
		Table:  "frequency_records",
		Where:  map[string]interface{}{"event_id": 999},
		Expect: map[string]interface{}{"df": 1.0},
	}}, actx)

	require.Len(t, errs, 1)
}
