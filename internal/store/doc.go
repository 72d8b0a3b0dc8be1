// Package store provides SQLite-backed durable storage for cross-run
// corpus statistics: per-event document-frequency estimates and the
// stopword occurrence log, the durable counterparts of the optimiser's
// in-memory frequency map and the state machine's per-document stopword
// memory (spec §4.3 "Event weight", §4.4.2 "Stopword memory").
//
// A frequency record lets a long-lived deployment warm-start
// internal/program.Table.Optimize with document-frequency estimates
// accumulated over previous runs instead of the zero value every
// process restart would otherwise see. The stopword log is an
// append-only audit trail of when a stopword event last fired for a
// given corpus, independent of any single process's lifetime.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: enforce referential integrity
package store
