package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lexpattern/engine/internal/engine"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	DocumentID string
}

// RunResult holds the outcome of running one document's event stream
// through a compiled program table.
type RunResult struct {
	DocumentID  string          `json:"document_id,omitempty"`
	EventsFed   int             `json:"events_fed"`
	FinalOrdpos int64           `json:"final_ordpos"`
	Results     []ResultSummary `json:"results"`
}

// ResultSummary is one published match, with its items resolved to
// source variable names.
type ResultSummary struct {
	Name        string        `json:"name"`
	StartOrdpos int64         `json:"start_ordpos"`
	EndOrdpos   int64         `json:"end_ordpos"`
	Items       []ItemSummary `json:"items,omitempty"`
}

// ItemSummary is one ir.ResultItem rendered for display.
type ItemSummary struct {
	Variable string  `json:"variable"`
	Ordpos   int64   `json:"ordpos"`
	Weight   float64 `json:"weight"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <program-path> <events-path>",
		Short: "Compile a program bundle and run it over a lexem-event fixture",
		Long: `Compile a program bundle (CUE directory or program-language
source file) and feed it the lexem events in events-path (a JSON array
of {term, ordpos, origseg, origpos, origsize} objects) through a single
engine.Machine, reporting every published result.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEngine(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DocumentID, "document-id", "", "external document id for tracing (defaults to a random uuid)")

	return cmd
}

func runEngine(opts *RunOptions, programPath, eventsPath string, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: logLevel})
	log := slog.New(handler)

	log.Info("compiling program bundle", "path", programPath)
	loadResult, loadErrors := LoadProgramBundle(programPath, LoadModeFailFast)
	if len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			return WrapExitError(ExitCommandError, "failed to compile program bundle", loadErr)
		}
		return WrapExitError(ExitCommandError, "failed to compile program bundle", loadErrors[0])
	}
	log.Info("program bundle compiled", "patterns", len(loadResult.Programs.AllRefs()))

	log.Info("loading event fixture", "path", eventsPath)
	events, err := LoadEventFixture(eventsPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load event fixture", err)
	}
	log.Info("event fixture loaded", "events", len(events))

	var docGen engine.DocumentIDGenerator = engine.UUIDv7Generator{}
	if opts.DocumentID != "" {
		docGen = engine.NewFixedGenerator(opts.DocumentID)
	}
	m := engine.NewMachine(loadResult.Programs, loadResult.Variables, engine.WithDocumentID(docGen))

	if err := FeedEvents(m, events); err != nil {
		return WrapExitError(ExitFailure, "feeding events", err)
	}

	result := summarizeRun(m, len(events))

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	return outputRunResult(formatter, result)
}

func summarizeRun(m *engine.Machine, fed int) RunResult {
	result := RunResult{
		DocumentID:  m.DocumentID(),
		EventsFed:   fed,
		FinalOrdpos: m.Current(),
	}

	for _, r := range m.Results() {
		items, _ := m.ResultItems(r)
		summary := ResultSummary{
			Name:        r.Name,
			StartOrdpos: r.StartOrdpos,
			EndOrdpos:   r.EndOrdpos,
		}
		for _, it := range items {
			summary.Items = append(summary.Items, ItemSummary{
				Variable: it.VariableName,
				Ordpos:   it.Ordpos,
				Weight:   it.Weight,
			})
		}
		result.Results = append(result.Results, summary)
	}

	return result
}

func outputRunResult(formatter *OutputFormatter, result RunResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Fed %d event(s), final ordpos %d\n\n", result.EventsFed, result.FinalOrdpos)
	if len(result.Results) == 0 {
		fmt.Fprintln(formatter.Writer, "(no results)")
		return nil
	}
	for _, r := range result.Results {
		fmt.Fprintf(formatter.Writer, "%s [%d,%d]\n", r.Name, r.StartOrdpos, r.EndOrdpos)
		for _, it := range r.Items {
			fmt.Fprintf(formatter.Writer, "  %s @ %d (weight %.2f)\n", it.Variable, it.Ordpos, it.Weight)
		}
	}
	return nil
}
