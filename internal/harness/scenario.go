package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// EventStep is one lexer-fed event in a scenario's event stream, given
// inline in the scenario YAML rather than pointed at a separate fixture
// file so a conformance scenario and its input stay in one reviewable
// file.
type EventStep struct {
	// Term is the lexer token id (packed into an ir.EventID with
	// ir.TagTerm when the scenario runs).
	Term     uint32 `yaml:"term"`
	Ordpos   int64  `yaml:"ordpos"`
	Origseg  uint32 `yaml:"origseg,omitempty"`
	Origpos  uint32 `yaml:"origpos,omitempty"`
	Origsize uint32 `yaml:"origsize,omitempty"`
}

// ExpectedMatch is one result a scenario expects the machine to have
// published by the end of its run.
type ExpectedMatch struct {
	Name        string `yaml:"name"`
	StartOrdpos int64  `yaml:"start_ordpos"`
	EndOrdpos   int64  `yaml:"end_ordpos"`
}

// SeedFrequency declares a document-frequency estimate to persist into
// the scenario's in-memory store before the run, independent of
// whatever per-term weight the program bundle itself declares via
// expr.weight (compiler/stack.go's DefineEventFrequency wiring).
type SeedFrequency struct {
	EventID uint32  `yaml:"event_id"`
	Corpus  string  `yaml:"corpus"`
	DF      float64 `yaml:"df"`
}

// SeedStopword declares a stopword occurrence to persist into the
// scenario's in-memory store before the run.
type SeedStopword struct {
	EventID   uint32 `yaml:"event_id"`
	Corpus    string `yaml:"corpus"`
	Ordpos    int64  `yaml:"ordpos"`
	Timestamp int64  `yaml:"timestamp"`
}

// Seed is the store state a scenario wants in place before its run,
// for final_state assertions that verify persisted store rows.
type Seed struct {
	Frequencies []SeedFrequency `yaml:"frequencies,omitempty"`
	Stopwords   []SeedStopword  `yaml:"stopwords,omitempty"`
}

// Scenario defines a conformance test scenario: a program bundle, an
// ordered event stream, and the multiset of results the run must
// produce (spec §8 "TESTABLE PROPERTIES").
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is a path to a CUE spec directory or a grammar source
	// file, resolved relative to the scenario file location.
	Program string `yaml:"program"`

	// Events is the ordered lexem-event stream fed to the machine.
	Events []EventStep `yaml:"events"`

	// Expect is the multiset of results the run must produce. A
	// scenario with no expected results asserts that none publish.
	Expect []ExpectedMatch `yaml:"expect,omitempty"`

	// Seed is store state to write before the run, for scenarios whose
	// assertions check persisted frequency/stopword records.
	Seed Seed `yaml:"seed,omitempty"`

	// Assertions validates final state beyond the published-results
	// multiset (e.g. optimiser-relinked frequency/stopword records).
	// Supported types: final_state.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Assertion validates final state produced by a scenario run.
type Assertion struct {
	// Type specifies the assertion type. Only "final_state" is
	// currently supported: it queries a store table and verifies
	// expected field values.
	Type string `yaml:"type"`

	// Table is the state table name (e.g. "frequency_records").
	Table string `yaml:"table,omitempty"`

	// Where specifies query filters. All fields must match exactly.
	Where map[string]interface{} `yaml:"where,omitempty"`

	// Expect contains expected field values. Subset match - only
	// specified fields are validated.
	Expect map[string]interface{} `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving the Program path relative to basePath rather than path's
// own directory.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // reject unknown fields (catches typos)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if !filepath.IsAbs(scenario.Program) && basePath != "" {
		scenario.Program = filepath.Join(basePath, scenario.Program)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if _, err := os.Stat(s.Program); os.IsNotExist(err) {
		return fmt.Errorf("program path not found: %s", s.Program)
	}

	for i, ev := range s.Events {
		if i > 0 && ev.Ordpos < s.Events[i-1].Ordpos {
			return fmt.Errorf("events[%d]: ordpos %d is out of order", i, ev.Ordpos)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, &a); err != nil {
			return err
		}
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFinalState:
		if a.Table == "" {
			return fmt.Errorf("assertions[%d]: table is required for final_state", index)
		}
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
