package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "sequence-in-range.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "sequence-in-range", scenario.Name)
	assert.Len(t, scenario.Events, 3)
	assert.Len(t, scenario.Expect, 1)
	assert.Equal(t, "triple-sequence", scenario.Expect[0].Name)

	_, err = filepath.Abs(scenario.Program)
	require.NoError(t, err)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	writeFile(t, path, "name: bad\ndescription: d\nprogram: .\ntypo_field: 1\n")

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioRequiresProgram(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "no-program.yaml")
	writeFile(t, path, "name: no-program\ndescription: d\n")

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioRejectsOutOfOrderEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out-of-order.yaml")
	writeFile(t, path, "name: out-of-order\ndescription: d\nprogram: .\nevents:\n  - {term: 1, ordpos: 2}\n  - {term: 2, ordpos: 1}\n")

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenarioWithBasePath(t *testing.T) {
	scenario, err := LoadScenarioWithBasePath(
		filepath.Join("testdata", "scenarios", "within-order-independent.yaml"),
		filepath.Join("testdata", "scenarios"),
	)
	require.NoError(t, err)
	assert.Equal(t, "within-order-independent", scenario.Name)
}
