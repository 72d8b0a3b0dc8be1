package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/queryir"
	"github.com/lexpattern/engine/internal/querysql"
	"github.com/lexpattern/engine/internal/store"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Database string
	EventID  uint32
}

// FrequencyStats reports the frequency store's view of one corpus.
type FrequencyStats struct {
	Corpus      string                `json:"corpus"`
	Frequencies []ir.FrequencyRecord  `json:"frequencies"`
	Stopwords   []ir.StopwordLogRecord `json:"stopwords,omitempty"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats <db-path> <corpus>",
		Short: "Report document-frequency and stopword-log statistics for a corpus",
		Long: `Report the document-frequency estimates and (optionally) the
stopword occurrence log internal/store has persisted for a corpus,
the durable counterpart of the optimiser's in-memory event weights
(spec §4.3 "Event weight").

With --event-id, the stopword log is fetched through a portable
queryir.Select compiled to SQL by internal/querysql, rather than the
store's own ReadStopwordLog convenience method.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Uint32Var(&opts.EventID, "event-id", 0, "restrict the stopword log to one event id, via the queryir/querysql path")

	return cmd
}

func runStats(opts *StatsOptions, dbPath, corpus string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return outputCompileError(formatter, ErrCodeNotFound, fmt.Sprintf("opening store: %v", err), nil)
	}
	defer s.Close()

	ctx := context.Background()

	freqs, err := s.ReadFrequencyRecords(ctx, corpus)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("reading frequency records: %v", err), nil)
	}

	result := FrequencyStats{Corpus: corpus, Frequencies: freqs}

	if opts.EventID != 0 {
		stopwords, err := readStopwordsViaQueryIR(ctx, s, corpus, opts.EventID, formatter)
		if err != nil {
			return outputCompileError(formatter, ErrCodeGeneric, fmt.Sprintf("reading stopword log: %v", err), nil)
		}
		result.Stopwords = stopwords
	}

	return outputStatsResult(formatter, result)
}

// readStopwordsViaQueryIR fetches the stopword log for one event,
// using the portable Select/Equals/And query fragment (internal/queryir)
// compiled to parameterized SQLite SQL (internal/querysql) rather than
// internal/store's own hand-written query.
func readStopwordsViaQueryIR(ctx context.Context, s *store.Store, corpus string, eventID uint32, formatter *OutputFormatter) ([]ir.StopwordLogRecord, error) {
	query := queryir.Select{
		From: "stopword_log",
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "corpus", Value: ir.StringValue(corpus)},
			queryir.Equals{Field: "event_id", Value: ir.IntValue(eventID)},
		}},
		Bindings: map[string]string{
			"id":        "id",
			"event_id":  "event_id",
			"corpus":    "corpus",
			"ordpos":    "ordpos",
			"timestamp": "timestamp",
		},
	}

	if result := queryir.Validate(query); !result.IsPortable {
		for _, w := range result.Warnings {
			formatter.VerboseLog("queryir: %s", w)
		}
	}

	sqlText, params, err := querysql.NewSQLCompiler().Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile query: %w", err)
	}

	rows, err := s.Query(ctx, sqlText, params...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	var records []ir.StopwordLogRecord
	for rows.Next() {
		var rec ir.StopwordLogRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Corpus, &rec.Ordpos, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func outputStatsResult(formatter *OutputFormatter, result FrequencyStats) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "Corpus %q: %d frequency record(s)\n", result.Corpus, len(result.Frequencies))
	for _, f := range result.Frequencies {
		fmt.Fprintf(formatter.Writer, "  event %d: df=%.4f\n", f.EventID, f.DF)
	}
	if result.Stopwords != nil {
		fmt.Fprintf(formatter.Writer, "\n%d stopword occurrence(s)\n", len(result.Stopwords))
		for _, sw := range result.Stopwords {
			fmt.Fprintf(formatter.Writer, "  ordpos %d at %d\n", sw.Ordpos, sw.Timestamp)
		}
	}
	return nil
}
