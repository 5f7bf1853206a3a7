package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/appdom/internal/dom"
)

// FileOptions holds flags shared by commands that produce a file.
type FileOptions struct {
	*RootOptions
	Output string
}

// DiffResult is the JSON payload of the diff command.
type DiffResult struct {
	Set    int             `json:"set"`
	Unset  int             `json:"unset"`
	Hash   string          `json:"hash"`
	Output string          `json:"output,omitempty"`
	Patch  json.RawMessage `json:"patch,omitempty"`
}

// PatchResult is the JSON payload of the patch command.
type PatchResult struct {
	Nodes    int             `json:"nodes"`
	Hash     string          `json:"hash"`
	Output   string          `json:"output,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// NewDiffCommand creates the diff command.
func NewDiffCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "diff <from> <to>",
		Short: "Compute the patch between two documents",
		Long: `Compute the patch that turns one document into another. Records are
compared field by field; the patch lists changed records and removed ids.

Examples:
  appdom diff before.json after.json
  appdom diff before.json after.json -o change.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")

	return cmd
}

func runDiff(opts *FileOptions, fromPath, toPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	from, err := readDom(ctx, formatter, fromPath)
	if err != nil {
		return err
	}
	to, err := readDom(ctx, formatter, toPath)
	if err != nil {
		return err
	}
	if from.Root() != to.Root() {
		return formatter.Fail(ExitFailure, ErrCodeInvalidPatch,
			fmt.Sprintf("documents have different roots: %s and %s", from.Root(), to.Root()), nil)
	}

	p := dom.DiffContent(from, to)
	data, err := dom.EncodePatch(p)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	hash, err := dom.HashPatch(p)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	formatter.VerboseLog("Patch sets %d and unsets %d records", len(p.Set), len(p.Unset))

	if formatter.Format == "json" {
		result := DiffResult{Set: len(p.Set), Unset: len(p.Unset), Hash: hash, Output: opts.Output}
		if opts.Output == "" {
			result.Patch = data
		} else if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
			return err
		}
		return formatter.Success(result)
	}

	if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
		return err
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote patch (%d set, %d unset) to %s\n", len(p.Set), len(p.Unset), opts.Output)
	}
	return nil
}

// NewPatchCommand creates the patch command.
func NewPatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "patch <document> <patch>",
		Short: "Apply a patch to a document",
		Long: `Apply a patch produced by diff and verify the result.

Exit codes:
  0 - Patched document is valid
  1 - Patch does not decode or breaks a tree invariant
  2 - Command error (missing file, etc.)

Examples:
  appdom patch app.json change.json -o app.json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPatch(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")

	return cmd
}

func runPatch(opts *FileOptions, domPath, patchPath string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	d, err := readDom(ctx, formatter, domPath)
	if err != nil {
		return err
	}
	p, err := readPatch(ctx, formatter, patchPath)
	if err != nil {
		return err
	}

	next := dom.ApplyPatch(d, p)
	if vs := dom.Verify(next); len(vs) > 0 {
		return formatter.Fail(ExitFailure, ErrCodeInvalidPatch,
			fmt.Sprintf("patched document is invalid: %s", vs[0]), violationStrings(vs))
	}

	data, err := dom.Encode(next)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	hash, err := dom.Hash(next)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		result := PatchResult{Nodes: next.Len(), Hash: hash, Output: opts.Output}
		if opts.Output == "" {
			result.Document = data
		} else if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
			return err
		}
		return formatter.Success(result)
	}

	if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
		return err
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote %d nodes to %s\n", next.Len(), opts.Output)
	}
	return nil
}
