package ir

// Version constants for the IR schema and engine build.
const (
	// IRVersion is the IR schema version, bumped whenever a wire-format
	// change (trigger/program/result shape) would invalidate old golden
	// fixtures or persisted arena snapshots.
	IRVersion = "1"

	// EngineVersion is the engine build version, reported by the CLI's
	// version subcommand and embedded in trace output.
	EngineVersion = "0.1.0"
)
