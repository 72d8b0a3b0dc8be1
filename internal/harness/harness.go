// Package harness provides a conformance testing framework for the
// token-pattern matching engine: scenarios declare a program bundle and
// an ordered lexem-event stream in YAML, Run feeds that stream through
// a real engine.Machine, and the harness compares the published
// results against the scenario's expectations (spec §8 "TESTABLE
// PROPERTIES").
//
// Unlike an invocation/completion conformance framework for a
// request-response engine, a pattern-matching machine has no handler
// to mock: DoTransition is a pure state transition over the compiled
// program table, so Run drives the genuine engine directly. There is
// no tautology risk here - the harness does not manufacture matches,
// it collects whatever the machine actually publishes.
package harness

import (
	"context"
	"fmt"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/store"
)

// Run executes a scenario and returns the result.
//
// Execution flow:
//  1. Compile the scenario's program bundle into a fresh program.Table.
//  2. Feed the scenario's event stream through a fresh engine.Machine,
//     advancing the clock to each event's ordpos before feeding it and
//     recording per-event trace entries.
//  3. Sweep the clock one position past the last event so any
//     still-open dispose window resolves.
//  4. Compare the machine's final published results against the
//     scenario's expected multiset.
//  5. Seed and query an in-memory store for any final_state
//     assertions.
func Run(scenario *Scenario) (*Result, error) {
	bundle, err := loadProgramBundle(scenario.Program)
	if err != nil {
		return nil, fmt.Errorf("failed to load program bundle: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seedStore(ctx, st, scenario.Seed); err != nil {
		return nil, fmt.Errorf("failed to seed store: %w", err)
	}

	m := engine.NewMachine(bundle.programs, bundle.variables)
	result := NewResult()

	for _, step := range scenario.Events {
		id, err := ir.NewEventID(ir.TagTerm, step.Term)
		if err != nil {
			return nil, fmt.Errorf("event at ordpos %d: %w", step.Ordpos, err)
		}

		before := len(m.Results())
		data := ir.EventData{
			StartOrigseg: step.Origseg,
			StartOrigpos: step.Origpos,
			EndOrigseg:   step.Origseg,
			EndOrigpos:   step.Origpos + step.Origsize,
			StartOrdpos:  step.Ordpos,
			EndOrdpos:    step.Ordpos,
			SubdataRef:   -1,
		}
		if err := m.SetCurrentPos(step.Ordpos); err != nil {
			return nil, fmt.Errorf("event at ordpos %d: %w", step.Ordpos, err)
		}
		if err := m.DoTransition(id, data); err != nil {
			return nil, fmt.Errorf("event at ordpos %d: %w", step.Ordpos, err)
		}

		var newNames []string
		for _, r := range m.Results()[before:] {
			newNames = append(newNames, r.Name)
		}
		result.AddTrace(step.Ordpos, step.Term, newNames)
	}

	if len(scenario.Events) > 0 {
		last := scenario.Events[len(scenario.Events)-1]
		if err := m.SetCurrentPos(last.Ordpos + 1); err != nil {
			return nil, fmt.Errorf("final sweep: %w", err)
		}
	}

	for _, r := range m.Results() {
		result.Matches = append(result.Matches, Match{Name: r.Name, StartOrdpos: r.StartOrdpos, EndOrdpos: r.EndOrdpos})
	}

	for _, errMsg := range evaluateExpectedMatches(result.Matches, scenario.Expect) {
		result.AddError(errMsg)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, errMsg := range EvaluateAssertions(scenario.Assertions, actx) {
		result.AddError(errMsg)
	}

	return result, nil
}

// seedStore writes a scenario's declared frequency and stopword rows
// into st before the run, so final_state assertions have something to
// query.
func seedStore(ctx context.Context, st *store.Store, seed Seed) error {
	for _, f := range seed.Frequencies {
		rec := ir.FrequencyRecord{EventID: f.EventID, Corpus: f.Corpus, DF: f.DF}
		if err := st.WriteFrequencyRecord(ctx, rec); err != nil {
			return fmt.Errorf("seed frequency %d: %w", f.EventID, err)
		}
	}
	for _, s := range seed.Stopwords {
		rec := ir.StopwordLogRecord{EventID: s.EventID, Corpus: s.Corpus, Ordpos: s.Ordpos, Timestamp: s.Timestamp}
		if err := st.WriteStopwordOccurrence(ctx, rec); err != nil {
			return fmt.Errorf("seed stopword %d: %w", s.EventID, err)
		}
	}
	return nil
}

// evaluateExpectedMatches compares the actual published matches
// against a scenario's expected multiset, order-independent.
func evaluateExpectedMatches(actual []Match, expected []ExpectedMatch) []string {
	var errs []string

	remaining := make([]Match, len(actual))
	copy(remaining, actual)

	for _, want := range expected {
		found := false
		for i, got := range remaining {
			if got.Name == want.Name && got.StartOrdpos == want.StartOrdpos && got.EndOrdpos == want.EndOrdpos {
				remaining = append(remaining[:i], remaining[i+1:]...)
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, fmt.Sprintf("expected result %q [%d,%d] was not published",
				want.Name, want.StartOrdpos, want.EndOrdpos))
		}
	}

	for _, extra := range remaining {
		errs = append(errs, fmt.Sprintf("unexpected result %q [%d,%d] was published",
			extra.Name, extra.StartOrdpos, extra.EndOrdpos))
	}

	return errs
}
