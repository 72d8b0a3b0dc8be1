// Package ir provides the canonical intermediate representation for the
// token-pattern matching engine: event ids, event data, triggers, action
// slots, rules, programs, and results.
//
// Key design constraints:
//   - This package contains type definitions and small accessors only.
//     Every other internal package imports ir; ir imports nothing internal.
//   - Ordinal positions (ordpos) are always int64 and non-decreasing across
//     a document (spec invariant) - never derived from wall-clock time.
//   - All JSON tags use snake_case, for golden-test and CLI output stability.
package ir
