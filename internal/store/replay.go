package store

import (
	"context"
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
	"github.com/lexpattern/engine/internal/program"
)

// SeedFrequencies replays every persisted frequency record for corpus
// into programs via DefineEventFrequency, so Optimize (spec §4.3) sees
// document-frequency estimates carried over from previous runs instead
// of the zero value a cold process would otherwise start from. It
// returns the number of records replayed.
func SeedFrequencies(ctx context.Context, s *Store, programs *program.Table, corpus string) (int, error) {
	records, err := s.ReadFrequencyRecords(ctx, corpus)
	if err != nil {
		return 0, fmt.Errorf("seed frequencies: %w", err)
	}
	for _, rec := range records {
		programs.DefineEventFrequency(ir.EventID(rec.EventID), rec.DF)
	}
	return len(records), nil
}

// PersistFrequency writes eventID's current weight back to corpus's
// frequency record, the inverse of SeedFrequencies: a corpus that has
// just finished a run captures what it learned so the next run starts
// warm. Overwrites any prior estimate for eventID in corpus.
func PersistFrequency(ctx context.Context, s *Store, programs *program.Table, corpus string, eventID ir.EventID) error {
	df := programs.Weight(eventID)
	return s.WriteFrequencyRecord(ctx, ir.FrequencyRecord{
		EventID: uint32(eventID),
		Corpus:  corpus,
		DF:      df,
	})
}
