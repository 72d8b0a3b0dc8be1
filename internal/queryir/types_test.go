package queryir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexpattern/engine/internal/ir"
)

func TestSelect_ImplementsQuery(t *testing.T) {
	var q Query = Select{From: "frequency_records"}
	assert.NotNil(t, q)
}

func TestEquals_ImplementsPredicate(t *testing.T) {
	var p Predicate = Equals{Field: "corpus", Value: ir.StringValue("corpus-a")}
	assert.NotNil(t, p)
}

func TestAnd_ImplementsPredicate(t *testing.T) {
	var p Predicate = And{Predicates: []Predicate{
		Equals{Field: "corpus", Value: ir.StringValue("corpus-a")},
		Equals{Field: "event_id", Value: ir.IntValue(1)},
	}}
	assert.NotNil(t, p)
}

func TestSelect_BindingsCarryThrough(t *testing.T) {
	sel := Select{
		From:     "frequency_records",
		Bindings: map[string]string{"event_id": "eventID", "df": "documentFrequency"},
	}
	assert.Equal(t, "eventID", sel.Bindings["event_id"])
	assert.Equal(t, "documentFrequency", sel.Bindings["df"])
}
