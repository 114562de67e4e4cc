package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/casbench/casbench/internal/spec"
)

// FileValidation holds validation results for one suite document.
type FileValidation struct {
	File   string                 `json:"file"`
	Valid  bool                   `json:"valid"`
	Suite  string                 `json:"suite,omitempty"`
	Errors []spec.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <suite.yaml...>",
		Short: "Validate suite documents without running them",
		Long: `Validate benchmark suite documents without executing anything.

Performs YAML parsing, schema validation, and static expression checking
and reports every finding, not just the first.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, paths []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	results := make([]FileValidation, 0, len(paths))
	invalid := 0
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			_ = formatter.Error("E001", fmt.Sprintf("cannot read %s", path), err.Error())
			return WrapExitError(ExitCommandError, fmt.Sprintf("cannot read %s", path), err)
		}

		formatter.VerboseLog("validating %s", path)
		result := FileValidation{File: path, Valid: true}
		suite, err := spec.Parse(data, path)
		if err != nil {
			var verrs spec.ValidationErrors
			if !errors.As(err, &verrs) {
				return WrapExitError(ExitCommandError, fmt.Sprintf("validate %s", path), err)
			}
			result.Valid = false
			result.Errors = verrs
			invalid++
		} else {
			result.Suite = suite.Name
		}
		results = append(results, result)
	}

	if formatter.Format == "json" {
		return outputValidateJSON(formatter, results, invalid)
	}
	return outputValidateText(formatter, results, invalid)
}

func outputValidateJSON(formatter *OutputFormatter, results []FileValidation, invalid int) error {
	response := CLIResponse{Status: "ok", Data: results}
	if invalid > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    firstErrorCode(results),
			Message: fmt.Sprintf("%d of %d file(s) invalid", invalid, len(results)),
		}
	}

	encoder := json.NewEncoder(formatter.Writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) invalid", invalid, len(results)))
	}
	return nil
}

func outputValidateText(formatter *OutputFormatter, results []FileValidation, invalid int) error {
	for _, result := range results {
		if result.Valid {
			fmt.Fprintf(formatter.Writer, "%s %s: valid (suite %q)\n", passMark, result.File, result.Suite)
			continue
		}

		fmt.Fprintf(formatter.Writer, "%s %s: %d error(s)\n", failMark, result.File, len(result.Errors))
		for _, verr := range result.Errors {
			if verr.Line > 0 {
				fmt.Fprintf(formatter.Writer, "  [%s] line %d: %s: %s\n", verr.Code, verr.Line, verr.Field, verr.Message)
			} else {
				fmt.Fprintf(formatter.Writer, "  [%s] %s: %s\n", verr.Code, verr.Field, verr.Message)
			}
		}
	}

	if invalid > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d file(s) invalid", invalid, len(results)))
	}
	return nil
}

// reportInvalidSuite renders one file's validation findings in the
// configured format and returns the validation-failure exit error. Shared
// by commands that load a suite as a precondition (run, list).
func reportInvalidSuite(formatter *OutputFormatter, path string, verrs spec.ValidationErrors) error {
	results := []FileValidation{{File: path, Errors: verrs}}
	if formatter.Format == "json" {
		return outputValidateJSON(formatter, results, 1)
	}
	_ = outputValidateText(formatter, results, 1)
	return NewExitError(ExitFailure, fmt.Sprintf("invalid suite: %d error(s)", len(verrs)))
}

func firstErrorCode(results []FileValidation) string {
	for _, result := range results {
		if len(result.Errors) > 0 {
			return result.Errors[0].Code
		}
	}
	return ""
}
