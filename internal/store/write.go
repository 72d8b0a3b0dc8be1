package store

import (
	"context"
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
)

// WriteFrequencyRecord upserts a document-frequency estimate for an
// event id within a corpus. Uses ON CONFLICT(event_id, corpus) DO
// UPDATE so a later observation simply overwrites the stored estimate;
// callers own when an overwrite is warranted (spec §4.3 "Event weight"
// treats freq(e) as a single externally supplied value, not an
// average).
func (s *Store) WriteFrequencyRecord(ctx context.Context, rec ir.FrequencyRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO frequency_records (event_id, corpus, df)
		VALUES (?, ?, ?)
		ON CONFLICT(event_id, corpus) DO UPDATE SET df = excluded.df
	`,
		rec.EventID,
		rec.Corpus,
		rec.DF,
	)
	if err != nil {
		return fmt.Errorf("write frequency record: %w", err)
	}
	return nil
}

// WriteStopwordOccurrence appends a stopword-log entry. The log is
// append-only: every firing of a stopword event is its own row, unlike
// WriteFrequencyRecord which overwrites in place.
func (s *Store) WriteStopwordOccurrence(ctx context.Context, rec ir.StopwordLogRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stopword_log (event_id, corpus, ordpos, timestamp)
		VALUES (?, ?, ?, ?)
	`,
		rec.EventID,
		rec.Corpus,
		rec.Ordpos,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("write stopword occurrence: %w", err)
	}
	return nil
}
