package ir

// PatternRef is an unresolved textual reference to a named pattern, as it
// appears before define_pattern closes it (spec §4.6 push_pattern,
// spec §7 kind 4 "Unresolved reference").
type PatternRef struct {
	Name string
	// Pos is a loader-supplied source position, used only for error messages.
	Pos string
}
