package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lexpattern/engine/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                       `json:"valid"`
	Errors []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <program-path>",
		Short: "Validate a program bundle without compiling a runtime table",
		Long: `Validate a program bundle (CUE directory or program-language
source file) against the structural invariants a compiled program
table must hold (spec §4.6 "validate"), without requiring a separate
output step.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	validationErrors, loadErr := ValidateProgramBundle(path, formatter)
	if loadErr != nil {
		var le *LoadError
		if errors.As(loadErr, &le) {
			return outputValidateError(formatter, le.Code, le.Message, nil)
		}
		return outputValidateError(formatter, ErrCodeGeneric, loadErr.Error(), nil)
	}

	if len(validationErrors) > 0 {
		return outputValidationErrors(formatter, validationErrors)
	}

	return outputValidateSuccess(formatter)
}

// ValidateProgramBundle compiles path and runs the structural
// validation pass over every program it produced. A non-nil loadErr
// means the bundle could not even be loaded/compiled; validationErrors
// is only meaningful when loadErr is nil.
func ValidateProgramBundle(path string, formatter *OutputFormatter) ([]compiler.ValidationError, error) {
	loadResult, loadErrors := LoadProgramBundle(path, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		return nil, loadErrors[0]
	}

	if formatter != nil {
		formatter.VerboseLog("Found %d source file(s) at %s", loadResult.FileCount, path)
	}

	var validationErrors []compiler.ValidationError
	for _, err := range loadErrors {
		var compileErr *compiler.CompileError
		var loadErr *LoadError
		switch {
		case errors.As(err, &compileErr):
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   compileErr.Field,
				Message: compileErr.Message,
				Code:    MapFieldToErrorCode(compileErr.Field),
			})
		case errors.As(err, &loadErr):
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: loadErr.Message,
				Code:    loadErr.Code,
			})
		default:
			validationErrors = append(validationErrors, compiler.ValidationError{
				Field:   "load",
				Message: err.Error(),
				Code:    ErrCodeGeneric,
			})
		}
	}

	if loadResult.Programs != nil {
		validationErrors = append(validationErrors, compiler.Validate(loadResult.Programs, loadResult.Programs.AllRefs())...)
	}

	return validationErrors, nil
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}

	fmt.Fprintln(formatter.Writer, "✓ Program bundle valid")
	return nil
}

// outputValidateError outputs a single validation error.
func outputValidateError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []compiler.ValidationError) error {
	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Errors: errs}

		response := CLIResponse{
			Status: "error",
			Data:   result,
			Error:  &CLIError{Code: errs[0].Code, Message: errs[0].Message},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}

// ValidateSpecsDir validates every program in a bundle, discarding
// verbose logging. Exposed for callers (e.g. internal/harness) that
// only need the validation errors.
func ValidateSpecsDir(path string) ([]compiler.ValidationError, error) {
	silentFormatter := &OutputFormatter{Format: "text", Verbose: false, Writer: io.Discard}
	return ValidateProgramBundle(path, silentFormatter)
}
