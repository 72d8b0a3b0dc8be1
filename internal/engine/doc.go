// Package engine implements the token-pattern matching state machine
// (spec §4): a single-threaded, event-driven automaton that consumes a
// stream of lexer events and, against a compiled program table, emits
// Results.
//
// ARCHITECTURE:
//
// One Machine per document:
// A Machine is bound to exactly one document and must run on exactly
// one goroutine (spec §5). There is no internal locking; callers
// binding many Machines to many documents are expected to run each on
// its own thread or worker.
//
// do_transition:
// Every external event seeds a follow-event FIFO (queue.go) that is
// drained entirely inside one DoTransition call before it returns. Each
// event in the queue goes through four steps (spec §4.4.2):
//  1. Trigger fanout: the event-trigger index (trigindex) is scanned and
//     every waiting trigger fires against its rule's action slot
//     (matcher.go).
//  2. Program installation: any program keyed on this event installs a
//     fresh rule (executor.go), optionally replaying remembered
//     stopword evidence for a relinked program (replay.go).
//  3. Deferred rule disposal: rules that completed or hit a delimiter
//     during step 1 are deactivated now, after the scan that found them
//     has already produced its own snapshot.
//  4. Stopword memory: if the event is a stopword, its data is
//     remembered for future replay; otherwise any sub-evidence it
//     carried is released.
//
// Disposal:
// Rules carry an expiry ordinal position. A sliding window of W=64
// buckets (dispose.go) holds near-term expiries; a min-heap holds
// anything further out. SetCurrentPos sweeps both as the clock advances
// (spec §4.4.3).
package engine
