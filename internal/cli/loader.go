package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/lexpattern/engine/internal/compiler"
	"github.com/lexpattern/engine/internal/program"
)

// LoadMode controls how errors are handled during spec loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading a CUE program bundle from
// a directory: a compiled program.Table plus the two symbol tables the
// compile populated (spec §6 "Symbol tables").
type LoadResult struct {
	Programs     *program.Table
	Variables    *compiler.NameTable
	PatternNames *compiler.NameTable
	CUEValue     cue.Value // raw CUE value, for callers that need it (e.g. trace)
	FileCount    int       // number of CUE files found
}

// LoadError represents an error that occurred during spec loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadSpecs loads a directory of CUE files as a single "options" +
// "patterns" bundle (internal/compiler's CompileCUEBundle front end)
// and compiles it into a fresh program.Table.
//
// Directory-scan, load and build errors are always returned
// immediately, whatever the mode. CUE bundle compilation is not
// resumable mid-pattern (CompileCUEBundle stops at the first pattern it
// cannot compile), so mode only decides what accompanies a compile
// error: LoadModeFailFast returns it with Programs, Variables and
// PatternNames left nil, LoadModeCollectAll returns it with them filled.
func LoadSpecs(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("specs directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing specs directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	programs := program.New()
	vars := compiler.NewNameTable()
	patternNames := compiler.NewNameTable()
	c := compiler.New(programs, vars, patternNames)

	if compileErr := compiler.CompileCUEBundle(c, value); compileErr != nil {
		loadErr := convertCompileError(compileErr, "patterns")
		errs = append(errs, loadErr)
		return result, errs
	}

	if compileErr := c.Compile(); compileErr != nil {
		loadErr := convertCompileError(compileErr, "compile")
		errs = append(errs, loadErr)
		if mode == LoadModeFailFast {
			return result, errs
		}
	}

	result.Programs = programs
	result.Variables = vars
	result.PatternNames = patternNames

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{
		Code:    ErrCodeGeneric,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// CompileCUEBundle field errors (internal/compiler's cue.go)
	ErrCodeMissingOptions = "E101" // options block malformed
	ErrCodeMissingPattern = "E102" // patterns block missing or empty
	ErrCodeMissingExpr    = "E103" // a pattern entry has no expr
	ErrCodeUnknownOp      = "E104" // expr.op names an unrecognised operator
	ErrCodeMissingArgs    = "E105" // expr.op has no args

	// Compiler.Compile validation errors (internal/compiler's validate.go, E2xx)
	ErrCodeValidation = "E106"

	// LoadGrammar field errors (internal/compiler's grammar.go)
	ErrCodeGrammarSyntax = "E107" // source does not parse
	ErrCodeGrammarOption = "E108" // unrecognised %Name option
)

// LoadProgramBundle loads a compiled program.Table from path: a
// directory of `options`/`patterns` CUE files (LoadSpecs) or a single
// program-language source file (internal/compiler's text grammar,
// compiler.LoadGrammar). Every CLI subcommand that needs a compiled
// program table goes through this so "compile", "validate", "run",
// "replay", "test" and "trace" all accept either input shape.
func LoadProgramBundle(path string, mode LoadMode) (*LoadResult, []error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing %s: %v", path, err)}}
	}
	if info.IsDir() {
		return LoadSpecs(path, mode)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading %s: %v", path, err)}}
	}

	programs := program.New()
	vars := compiler.NewNameTable()
	patternNames := compiler.NewNameTable()
	c := compiler.New(programs, vars, patternNames)

	if _, compileErr := compiler.LoadGrammar(c, string(data)); compileErr != nil {
		return nil, []error{convertCompileError(compileErr, "grammar")}
	}
	var errs []error
	if compileErr := c.Compile(); compileErr != nil {
		errs = append(errs, convertCompileError(compileErr, "compile"))
		if mode == LoadModeFailFast {
			return nil, errs
		}
	}

	return &LoadResult{
		Programs:     programs,
		Variables:    vars,
		PatternNames: patternNames,
		FileCount:    1,
	}, errs
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "options":
		return ErrCodeMissingOptions
	case field == "patterns":
		return ErrCodeMissingPattern
	case strings.HasSuffix(field, ".expr") || field == "expr":
		return ErrCodeMissingExpr
	case field == "op":
		return ErrCodeUnknownOp
	case field == "args":
		return ErrCodeMissingArgs
	case field == "cue":
		return ErrCodeBuildFailed
	case field == "grammar":
		return ErrCodeGrammarSyntax
	case field == "option":
		return ErrCodeGrammarOption
	default:
		return ErrCodeGeneric
	}
}
