package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
)

// ReadFrequencyRecords returns every frequency record for corpus,
// ordered by event_id for deterministic iteration.
func (s *Store) ReadFrequencyRecords(ctx context.Context, corpus string) ([]ir.FrequencyRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, corpus, df
		FROM frequency_records
		WHERE corpus = ?
		ORDER BY event_id ASC
	`, corpus)
	if err != nil {
		return nil, fmt.Errorf("query frequency records: %w", err)
	}
	defer rows.Close()

	records := []ir.FrequencyRecord{}
	for rows.Next() {
		var rec ir.FrequencyRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Corpus, &rec.DF); err != nil {
			return nil, fmt.Errorf("scan frequency record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate frequency records: %w", err)
	}
	return records, nil
}

// ReadStopwordLog returns every stopword occurrence for eventID within
// corpus, ordered by ordpos ascending.
func (s *Store) ReadStopwordLog(ctx context.Context, corpus string, eventID uint32) ([]ir.StopwordLogRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, event_id, corpus, ordpos, timestamp
		FROM stopword_log
		WHERE corpus = ? AND event_id = ?
		ORDER BY ordpos ASC
	`, corpus, eventID)
	if err != nil {
		return nil, fmt.Errorf("query stopword log: %w", err)
	}
	defer rows.Close()

	records := []ir.StopwordLogRecord{}
	for rows.Next() {
		var rec ir.StopwordLogRecord
		if err := rows.Scan(&rec.ID, &rec.EventID, &rec.Corpus, &rec.Ordpos, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan stopword log record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stopword log: %w", err)
	}
	return records, nil
}

// ReadLatestStopwordOccurrence returns the most recent stopword-log
// entry for eventID within corpus, the durable counterpart of the
// state machine's per-document stopword memory (spec §4.4.2). The
// second return is false if eventID has never fired as a stopword in
// corpus.
func (s *Store) ReadLatestStopwordOccurrence(ctx context.Context, corpus string, eventID uint32) (ir.StopwordLogRecord, bool, error) {
	var rec ir.StopwordLogRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, event_id, corpus, ordpos, timestamp
		FROM stopword_log
		WHERE corpus = ? AND event_id = ?
		ORDER BY ordpos DESC
		LIMIT 1
	`, corpus, eventID).Scan(&rec.ID, &rec.EventID, &rec.Corpus, &rec.Ordpos, &rec.Timestamp)
	if err == sql.ErrNoRows {
		return ir.StopwordLogRecord{}, false, nil
	}
	if err != nil {
		return ir.StopwordLogRecord{}, false, fmt.Errorf("read latest stopword occurrence: %w", err)
	}
	return rec, true, nil
}
