package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/appdom/internal/render"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Output string // write the tree here instead of stdout
}

// RenderResult is the JSON payload of the render command.
type RenderResult struct {
	Hash   string          `json:"hash"`
	Nodes  int             `json:"nodes"`
	Output string          `json:"output,omitempty"`
	Tree   json.RawMessage `json:"tree,omitempty"`
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Print the render tree of a document",
		Long: `Project a document to its render tree: connections and code
components are dropped and query text is stripped.

Examples:
  appdom render app.json
  appdom render app.json -o tree.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")

	return cmd
}

func runRender(opts *RenderOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	d, err := readDom(ctx, formatter, path)
	if err != nil {
		return err
	}

	tree := render.Project(d)
	data, err := tree.MarshalJSON()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	hash, err := tree.Hash()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	nodes := tree.Dom().Len()
	formatter.VerboseLog("Render tree keeps %d of %d nodes", nodes, d.Len())

	if formatter.Format == "json" {
		result := RenderResult{Hash: hash, Nodes: nodes, Output: opts.Output}
		if opts.Output == "" {
			result.Tree = data
		} else if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
			return err
		}
		return formatter.Success(result)
	}

	if err := writeOutput(ctx, formatter, opts.Output, data); err != nil {
		return err
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "✓ Wrote %d nodes to %s\n", nodes, opts.Output)
	}
	return nil
}
