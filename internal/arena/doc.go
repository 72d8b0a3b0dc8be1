// Package arena provides POD-style tables with free-list-in-place reuse
// (spec §4.2): stable indices, O(1) add/remove, no per-operation
// allocation once warmed. Every core table in internal/engine and
// internal/program (action slots, rules, event-data refs, trigger-def
// lists) is a Table[T] or a StackPool[T] from this package.
//
// Go has no aliasing trick to overwrite a live record's first word with
// a free-list pointer (the C/C++ "free-list-in-place" idiom spec §9
// flags as not portable); this package keeps a parallel freeNext slice
// instead, which preserves the documented behavior (stable indices,
// O(1) add/remove) without unsafe aliasing.
package arena
