package harness

import (
	"fmt"
	"os"

	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/lexpattern/engine/internal/compiler"
	"github.com/lexpattern/engine/internal/program"
)

// loadResult is the compiled program table a scenario runs against,
// mirroring internal/cli's LoadResult but kept private to this package
// to avoid an import cycle (internal/cli's test/trace commands import
// harness).
type loadResult struct {
	programs  *program.Table
	variables *compiler.NameTable
}

// loadProgramBundle compiles path into a program table: a directory of
// `options`/`patterns` CUE files, or a single grammar source file.
func loadProgramBundle(path string) (*loadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("access program path %s: %w", path, err)
	}

	programs := program.New()
	vars := compiler.NewNameTable()
	patternNames := compiler.NewNameTable()
	c := compiler.New(programs, vars, patternNames)

	if info.IsDir() {
		ctx := cuecontext.New()
		instances := load.Instances([]string{"."}, &load.Config{Dir: path})
		if len(instances) == 0 || instances[0].Err != nil {
			return nil, fmt.Errorf("load CUE bundle at %s", path)
		}
		value := ctx.BuildInstance(instances[0])
		if err := value.Err(); err != nil {
			return nil, fmt.Errorf("build CUE value at %s: %w", path, err)
		}
		if err := compiler.CompileCUEBundle(c, value); err != nil {
			return nil, fmt.Errorf("compile CUE bundle at %s: %w", path, err)
		}
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read grammar source %s: %w", path, err)
		}
		if _, err := compiler.LoadGrammar(c, string(data)); err != nil {
			return nil, fmt.Errorf("parse grammar source %s: %w", path, err)
		}
	}

	if err := c.Compile(); err != nil {
		return nil, fmt.Errorf("compile program bundle at %s: %w", path, err)
	}

	return &loadResult{programs: programs, variables: vars}, nil
}
