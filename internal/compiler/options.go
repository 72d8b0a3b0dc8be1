package compiler

import "github.com/lexpattern/engine/internal/program"

// Options configures the compiler's optimiser pass (spec §6
// "Configuration options", §4.3). A program-language source file may
// also set these via `%Name = Value;` statements (grammar.go).
type Options struct {
	StopwordOccurrenceFactor float64
	WeightFactor             float64
	MaxRange                 int64
}

// DefaultOptions mirrors program.DefaultOptions: the spec's documented
// defaults (0.01, 10.0, 5).
func DefaultOptions() Options {
	return Options{
		StopwordOccurrenceFactor: 0.01,
		WeightFactor:             10.0,
		MaxRange:                 5,
	}
}

// Option configures Options, following the functional-options idiom
// used throughout this module (engine.Option, engine.WithDocumentID).
type Option func(*Options)

// WithStopwordFactor overrides StopwordOccurrenceFactor.
func WithStopwordFactor(f float64) Option {
	return func(o *Options) { o.StopwordOccurrenceFactor = f }
}

// WithWeightFactor overrides WeightFactor.
func WithWeightFactor(f float64) Option {
	return func(o *Options) { o.WeightFactor = f }
}

// WithMaxRange overrides MaxRange.
func WithMaxRange(n int64) Option {
	return func(o *Options) { o.MaxRange = n }
}

func (o Options) toProgramOptions() program.Options {
	return program.Options{
		StopwordOccurrenceFactor: o.StopwordOccurrenceFactor,
		WeightFactor:             o.WeightFactor,
		MaxRange:                 o.MaxRange,
	}
}
