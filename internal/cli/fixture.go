package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lexpattern/engine/internal/engine"
	"github.com/lexpattern/engine/internal/ir"
)

// EventFixture is one lexer-fed event in a JSON fixture file: a lexer
// token id plus its ordinal position and origin-segment coordinates
// (spec §6). "run", "replay", "test" and "trace" all consume this
// shape.
type EventFixture struct {
	Term     uint32 `json:"term"`
	Ordpos   int64  `json:"ordpos"`
	Origseg  uint32 `json:"origseg"`
	Origpos  uint32 `json:"origpos"`
	Origsize uint32 `json:"origsize"`
}

// LoadEventFixture reads a JSON array of EventFixture from path and
// converts each entry to an ir.LexemEvent.
func LoadEventFixture(path string) ([]ir.LexemEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event fixture: %w", err)
	}

	var fixtures []EventFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse event fixture: %w", err)
	}

	events := make([]ir.LexemEvent, len(fixtures))
	for i, f := range fixtures {
		id, err := ir.NewEventID(ir.TagTerm, f.Term)
		if err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
		events[i] = ir.LexemEvent{
			ID:       id,
			Ordpos:   f.Ordpos,
			Origseg:  f.Origseg,
			Origpos:  f.Origpos,
			Origsize: f.Origsize,
		}
	}
	return events, nil
}

// FeedEvents drives m through events in order and, once the stream is
// exhausted, advances the clock one position past the last event so
// any still-open dispose window is swept (spec §4.4.3).
func FeedEvents(m *engine.Machine, events []ir.LexemEvent) error {
	for _, ev := range events {
		if err := m.DoTransition(ev.ID, ir.FromLexem(ev)); err != nil {
			return fmt.Errorf("ordpos %d: %w", ev.Ordpos, err)
		}
	}
	if len(events) > 0 {
		last := events[len(events)-1]
		if err := m.SetCurrentPos(last.Ordpos + 1); err != nil {
			return fmt.Errorf("final sweep: %w", err)
		}
	}
	return nil
}
