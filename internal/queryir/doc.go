// Package queryir provides an abstract query intermediate representation
// for selecting rows out of internal/store's frequency/stopword tables.
//
// This is deliberately a Select-only fragment: the original relational
// query IR this package is derived from also carried an inner-join node
// and a bound-variable predicate for correlating a join's right side to
// a left-side column picked up from an outer when-clause scope. Neither
// concept applies here — internal/store's two tables
// (frequency_records, stopword_log) are never joined to each other by
// any component of this engine, and there is no outer binding scope to
// correlate against. Select plus Equals/And is the whole fragment a
// stats query over those tables ever needs.
//
// Query is a sealed interface (marker method pattern): only Select
// implements it, which lets internal/querysql's compiler exhaustively
// switch on concrete query shapes without a default case hiding a
// missing backend.
package queryir
