package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lexpattern/engine/internal/ir"
)

// TraceSnapshot captures the complete trace and final match multiset
// for a scenario execution, serialized canonically for deterministic
// golden-file comparison.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
	Matches      []Match      `json:"matches"`
}

// toCanonicalMap converts a TraceSnapshot to a map[string]any, since
// ir.MarshalCanonical only handles IR types and plain JSON primitives.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		entry := map[string]any{
			"ordpos": ev.Ordpos,
			"term":   ev.Term,
		}
		if len(ev.NewResults) > 0 {
			names := make([]any, len(ev.NewResults))
			for j, n := range ev.NewResults {
				names[j] = n
			}
			entry["new_results"] = names
		}
		traceList[i] = entry
	}

	matchList := make([]any, len(s.Matches))
	for i, m := range s.Matches {
		matchList[i] = map[string]any{
			"name":         m.Name,
			"start_ordpos": m.StartOrdpos,
			"end_ordpos":   m.EndOrdpos,
		}
	}

	return map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         traceList,
		"matches":       matchList,
	}
}

// RunWithGolden executes a scenario and compares its trace and final
// match multiset against a golden file at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-produced result's trace and match
// multiset against a golden file, without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
		Matches:      result.Matches,
	}

	traceJSON, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
