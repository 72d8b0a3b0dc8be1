package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// MatchSummary is one published result, compared structurally (without
// the internal EventDataRef, which is an implementation detail of the
// machine that produced it) across the two replay runs.
type MatchSummary struct {
	Name        string        `json:"name"`
	StartOrdpos int64         `json:"start_ordpos"`
	EndOrdpos   int64         `json:"end_ordpos"`
	Items       []ItemSummary `json:"items,omitempty"`
}

// ReplayResult holds the determinism-verification outcome of feeding
// one event fixture through two independent engine.Machine instances
// (spec §4.7 "Determinism": "feeding the same ordered event stream
// through the engine twice must produce identical results").
type ReplayResult struct {
	EventsFed     int            `json:"events_fed"`
	FirstRun      []MatchSummary `json:"first_run"`
	SecondRun     []MatchSummary `json:"second_run"`
	Deterministic bool           `json:"deterministic"`
	Divergences   []string       `json:"divergences,omitempty"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <program-path> <events-path>",
		Short: "Verify replay determinism by running a fixture twice",
		Long: `Compile a program bundle and feed it the same lexem-event
fixture through two independent engine.Machine instances, then compare
the published results structurally. Any difference is a determinism
violation (spec §4.7).

Exit codes:
  0 - the two runs produced identical results
  1 - a divergence was detected
  2 - command error (bad path, compile failure, etc.)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	return cmd
}

func runReplay(opts *ReplayOptions, programPath, eventsPath string, cmd *cobra.Command) error {
	loadResult, loadErrors := LoadProgramBundle(programPath, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return WrapExitError(ExitCommandError, "failed to compile program bundle", loadErr)
		}
		return WrapExitError(ExitCommandError, "failed to compile program bundle", loadErrors[0])
	}

	events, err := LoadEventFixture(eventsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load event fixture", err)
	}

	first, err := replayOnce(loadResult, events)
	if err != nil {
		return WrapExitError(ExitFailure, "first run", err)
	}
	second, err := replayOnce(loadResult, events)
	if err != nil {
		return WrapExitError(ExitFailure, "second run", err)
	}

	result := compareReplayRuns(len(events), first, second)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return outputReplayResult(formatter, result)
}

// replayOnce builds a fresh engine.Machine over loadResult's program
// table and symbol table and feeds it events, returning the published
// matches.
func replayOnce(loadResult *LoadResult, events []ir.LexemEvent) ([]MatchSummary, error) {
	m := engine.NewMachine(loadResult.Programs, loadResult.Variables)
	if err := FeedEvents(m, events); err != nil {
		return nil, err
	}

	var matches []MatchSummary
	for _, r := range m.Results() {
		items, err := m.ResultItems(r)
		if err != nil {
			return nil, fmt.Errorf("result items for %q: %w", r.Name, err)
		}
		summary := MatchSummary{Name: r.Name, StartOrdpos: r.StartOrdpos, EndOrdpos: r.EndOrdpos}
		for _, it := range items {
			summary.Items = append(summary.Items, ItemSummary{
				Variable: it.VariableName,
				Ordpos:   it.Ordpos,
				Weight:   it.Weight,
			})
		}
		matches = append(matches, summary)
	}
	return matches, nil
}

func compareReplayRuns(eventsFed int, first, second []MatchSummary) ReplayResult {
	result := ReplayResult{
		EventsFed:     eventsFed,
		FirstRun:      first,
		SecondRun:     second,
		Deterministic: true,
	}

	if len(first) != len(second) {
		result.Deterministic = false
		result.Divergences = append(result.Divergences,
			fmt.Sprintf("result count differs: first run %d, second run %d", len(first), len(second)))
		return result
	}

	for i := range first {
		if !matchesEqual(first[i], second[i]) {
			result.Deterministic = false
			result.Divergences = append(result.Divergences,
				fmt.Sprintf("result %d differs: %+v vs %+v", i, first[i], second[i]))
		}
	}

	return result
}

func matchesEqual(a, b MatchSummary) bool {
	if a.Name != b.Name || a.StartOrdpos != b.StartOrdpos || a.EndOrdpos != b.EndOrdpos {
		return false
	}
	if len(a.Items) != len(b.Items) {
		return false
	}
	for i := range a.Items {
		if a.Items[i] != b.Items[i] {
			return false
		}
	}
	return true
}

func outputReplayResult(formatter *OutputFormatter, result ReplayResult) error {
	if formatter.Format == "json" {
		if !result.Deterministic {
			response := CLIResponse{
				Status: "error",
				Data:   result,
				Error:  &CLIError{Code: "E_DETERMINISM", Message: "determinism verification failed"},
			}
			encoder := json.NewEncoder(formatter.Writer)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(response); err != nil {
				return err
			}
			return NewExitError(ExitFailure, "determinism verification failed")
		}
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Replayed %d event(s) twice, %d result(s)\n\n", result.EventsFed, len(result.FirstRun))
	if result.Deterministic {
		fmt.Fprintln(formatter.Writer, "✓ Both runs produced identical results")
		return nil
	}

	fmt.Fprintln(formatter.Writer, "✗ Determinism verification failed")
	for _, d := range result.Divergences {
		fmt.Fprintf(formatter.Writer, "  %s\n", d)
	}
	return NewExitError(ExitFailure, "determinism verification failed")
}
