package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Stopwords bool // include stopword suppressions in the timeline
}

// TraceEvent represents one fed lexem event and whatever the machine
// published as a direct consequence of it.
type TraceEvent struct {
	Ordpos     int64    `json:"ordpos"`
	Term       uint32   `json:"term"`
	Stopword   bool     `json:"stopword,omitempty"`
	NewResults []string `json:"new_results,omitempty"`
}

// TraceResult holds the complete event-by-event trace of a fixture run.
type TraceResult struct {
	EventsFed int            `json:"events_fed"`
	Timeline  []TraceEvent   `json:"timeline"`
	Matches   []MatchSummary `json:"matches"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <program-path> <events-path>",
		Short: "Show an event-by-event timeline of a fixture run",
		Long: `Compile a program bundle and feed it the lexem events in
events-path through a single engine.Machine, one event at a time,
recording which pattern names the machine newly publishes after each
event and, optionally, which events the optimiser treated as
stopwords (spec §4.6 "Frequency-Weighted Optimisation").

Unlike "run", which only reports the final published results, trace
shows exactly which event triggered which result - useful for
debugging why a pattern did or did not match.

Examples:
  lexpattern trace ./testdata/specs/sequence3 ./events.json
  lexpattern trace ./testdata/specs/sequence3 ./events.json --stopwords
  lexpattern trace ./testdata/specs/sequence3 ./events.json --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Stopwords, "stopwords", false, "mark events the optimiser suppressed as stopwords")

	return cmd
}

func runTrace(opts *TraceOptions, programPath, eventsPath string, cmd *cobra.Command) error {
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

	m := engine.NewMachine(loadResult.Programs, loadResult.Variables)

	result := TraceResult{EventsFed: len(events)}
	for _, ev := range events {
		before := len(m.Results())
		stopword := loadResult.Programs.IsStopword(ev.ID)

		if err := m.DoTransition(ev.ID, ir.FromLexem(ev)); err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("ordpos %d", ev.Ordpos), err)
		}

		after := m.Results()
		trace := TraceEvent{Ordpos: ev.Ordpos, Term: ev.ID.Index()}
		if opts.Stopwords {
			trace.Stopword = stopword
		}
		for _, r := range after[before:] {
			trace.NewResults = append(trace.NewResults, r.Name)
		}
		result.Timeline = append(result.Timeline, trace)
	}

	if len(events) > 0 {
		if err := m.SetCurrentPos(events[len(events)-1].Ordpos + 1); err != nil {
			return WrapExitError(ExitFailure, "final sweep", err)
		}
	}

	for _, r := range m.Results() {
		items, err := m.ResultItems(r)
		if err != nil {
			return WrapExitError(ExitFailure, fmt.Sprintf("result items for %q", r.Name), err)
		}
		summary := MatchSummary{Name: r.Name, StartOrdpos: r.StartOrdpos, EndOrdpos: r.EndOrdpos}
		for _, it := range items {
			summary.Items = append(summary.Items, ItemSummary{
				Variable: it.VariableName,
				Ordpos:   it.Ordpos,
				Weight:   it.Weight,
			})
		}
		result.Matches = append(result.Matches, summary)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return outputTraceResult(formatter, result)
}

// outputTraceResult renders the trace, delegating JSON encoding to the
// shared CLIResponse envelope the other commands use.
func outputTraceResult(formatter *OutputFormatter, result TraceResult) error {
	if formatter.Format == "json" {
		response := CLIResponse{Status: "ok", Data: result}
		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(response)
	}

	fmt.Fprintf(formatter.Writer, "Traced %d event(s)\n\n", result.EventsFed)
	for _, ev := range result.Timeline {
		marker := " "
		if ev.Stopword {
			marker = "S"
		}
		fmt.Fprintf(formatter.Writer, "[%s] ordpos=%d term=%d", marker, ev.Ordpos, ev.Term)
		if len(ev.NewResults) > 0 {
			fmt.Fprintf(formatter.Writer, " -> %v", ev.NewResults)
		}
		fmt.Fprintln(formatter.Writer)
	}

	fmt.Fprintln(formatter.Writer)
	fmt.Fprintf(formatter.Writer, "%d result(s):\n", len(result.Matches))
	for _, m := range result.Matches {
		fmt.Fprintf(formatter.Writer, "  %s [%d,%d]\n", m.Name, m.StartOrdpos, m.EndOrdpos)
	}

	return nil
}
