package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool                     `json:"valid"`
	Nodes  int                      `json:"nodes,omitempty"`
	Hash   string                   `json:"hash,omitempty"`
	Errors []schema.ValidationError `json:"errors,omitempty"`
}

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Patch bool // validate a patch instead of a document
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a document or patch",
		Long: `Validate a document against the wire schema, then decode it and
check the tree invariants.

Exit codes:
  0 - Valid
  1 - Invalid document
  2 - Command error (missing file, etc.)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Patch, "patch", false, "validate a patch file")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	data, err := readInput(cmd.Context(), formatter, path)
	if err != nil {
		return err
	}

	if opts.Patch {
		if errs := schema.ValidatePatch(data); len(errs) > 0 {
			return outputValidationErrors(formatter, errs)
		}
		p, err := dom.DecodePatch(data)
		if err != nil {
			return outputValidationErrors(formatter, []schema.ValidationError{
				{Field: "patch", Message: err.Error(), Code: ErrCodeInvalidPatch},
			})
		}
		hash, err := dom.HashPatch(p)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
		}
		return outputValidateSuccess(formatter, path, ValidationResult{Valid: true, Nodes: p.Len(), Hash: hash})
	}

	formatter.VerboseLog("Checking %s against the document schema", path)
	if errs := schema.ValidateDocument(data); len(errs) > 0 {
		return outputValidationErrors(formatter, errs)
	}

	d, err := dom.Decode(data)
	if err != nil {
		return outputValidationErrors(formatter, []schema.ValidationError{
			{Field: "document", Message: err.Error(), Code: ErrCodeInvalidDom},
		})
	}
	hash, err := dom.Hash(d)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	return outputValidateSuccess(formatter, path, ValidationResult{Valid: true, Nodes: d.Len(), Hash: hash})
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, path string, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s is valid (%d nodes)\n", path, result.Nodes)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []schema.ValidationError) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data: ValidationResult{
				Valid:  false,
				Errors: errs,
			},
			Error: &CLIError{
				Code:    errs[0].Code,
				Message: errs[0].Message,
			},
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
		if err.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", err.Line)
		}
		if err.Field != "" {
			fmt.Fprintf(formatter.Writer, "  %s: %s: %s\n\n", err.Code, err.Field, err.Message)
		} else {
			fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", err.Code, err.Message)
		}
	}

	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))
}
