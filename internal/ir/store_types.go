package ir

// NOTE: These are store-layer types (internal/store), not part of the
// runtime data model above. They use auto-increment ids for DB row
// identity, the one exception to "ordinal positions only" in this package.

// FrequencyRecord is a persisted document-frequency estimate for an event
// id, consumed by the optimiser's define_event_frequency (spec §4.3).
type FrequencyRecord struct {
	ID       int64   `json:"id"`
	EventID  uint32  `json:"event_id"`
	Corpus   string  `json:"corpus"`
	DF       float64 `json:"df"`
}

// StopwordLogRecord is a persisted "most recent occurrence" entry for a
// stopword event, the durable counterpart of the in-memory stopword log
// the state machine keeps per document (spec §4.4.2 "Stopword memory").
type StopwordLogRecord struct {
	ID        int64  `json:"id"`
	EventID   uint32 `json:"event_id"`
	Corpus    string `json:"corpus"`
	Ordpos    int64  `json:"ordpos"`
	Timestamp int64  `json:"timestamp"`
}
