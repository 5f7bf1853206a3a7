package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/appdom/internal/dom"
	"github.com/roach88/appdom/internal/store"
)

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	App     string        `json:"app"`
	Head    int64         `json:"head"`
	Entries []store.Entry `json:"entries"`
}

// SnapshotResult is the JSON payload of the snapshot command.
type SnapshotResult struct {
	App   string `json:"app"`
	Seq   int64  `json:"seq"`
	Hash  string `json:"hash"`
	Nodes int    `json:"nodes"`
}

// CheckoutResult is the JSON payload of the checkout command.
type CheckoutResult struct {
	App      string          `json:"app"`
	Seq      int64           `json:"seq"`
	Hash     string          `json:"hash"`
	Output   string          `json:"output,omitempty"`
	Document json.RawMessage `json:"document,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history [app]",
		Short: "List the stored history of an app",
		Long: `List the snapshots and patches stored for an app, oldest first.
Without an app argument, lists the apps in the database.

Examples:
  appdom history
  appdom history n1 --db shop.db`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runApps(rootOpts, cmd)
			}
			return runHistory(rootOpts, args[0], cmd)
		},
	}
}

func openStore(opts *RootOptions, f *OutputFormatter) (*store.Store, error) {
	s, err := store.Open(opts.DB)
	if err != nil {
		return nil, f.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	f.VerboseLog("Opened history database %s", opts.DB)
	return s, nil
}

func runApps(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	apps, err := s.Apps(cmd.Context())
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if formatter.Format == "json" {
		if apps == nil {
			apps = []string{}
		}
		return formatter.Success(apps)
	}
	if len(apps) == 0 {
		fmt.Fprintln(formatter.Writer, "No apps stored.")
		return nil
	}
	for _, app := range apps {
		fmt.Fprintln(formatter.Writer, app)
	}
	return nil
}

func runHistory(opts *RootOptions, app string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.History(ctx, app)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}
	if len(entries) == 0 {
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no history for app %s", app), nil)
	}
	head, err := s.Head(ctx, app)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	if formatter.Format == "json" {
		return formatter.Success(HistoryResult{App: app, Head: head, Entries: entries})
	}

	fmt.Fprintf(formatter.Writer, "%s (head %d)\n", app, head)
	for _, e := range entries {
		unit := "entries"
		if e.Type == store.EntrySnapshot {
			unit = "nodes"
		}
		fmt.Fprintf(formatter.Writer, "  %4d  %-8s  %s  %d %s\n", e.Seq, e.Type, shortHash(e.Hash), e.Size, unit)
	}
	return nil
}

// NewSnapshotCommand creates the snapshot command.
func NewSnapshotCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Store a document as the latest snapshot of its app",
		Long: `Read a document and record it in the history database. The app is
identified by the document's root id.

Examples:
  appdom snapshot app.json --db shop.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(rootOpts, args[0], cmd)
		},
	}
}

func runSnapshot(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	d, err := readDom(ctx, formatter, path)
	if err != nil {
		return err
	}
	if vs := dom.Verify(d); len(vs) > 0 {
		return formatter.Fail(ExitFailure, ErrCodeInvalidDom, fmt.Sprintf("%s: %s", path, vs[0]), violationStrings(vs))
	}

	s, err := openStore(opts, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	app := string(d.Root())
	snap, err := s.SaveSnapshot(ctx, app, d)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	result := SnapshotResult{App: app, Seq: snap.Seq, Hash: snap.Hash, Nodes: d.Len()}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Stored %s at seq %d (%s)\n", app, snap.Seq, shortHash(snap.Hash))
	return nil
}

// CheckoutOptions holds flags for the checkout command.
type CheckoutOptions struct {
	*RootOptions
	Output string
}

// NewCheckoutCommand creates the checkout command.
func NewCheckoutCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckoutOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "checkout <app>",
		Short: "Rebuild the current document of an app from its history",
		Long: `Load the latest snapshot of an app, replay the patches stored after
it and print or write the resulting document.

Examples:
  appdom checkout n1 --db shop.db
  appdom checkout n1 --db shop.db -o app.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheckout(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file")

	return cmd
}

func runCheckout(opts *CheckoutOptions, app string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := cmd.Context()

	s, err := openStore(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	defer s.Close()

	d, seq, err := s.Load(ctx, app)
	switch {
	case errors.Is(err, store.ErrNoSnapshot):
		return formatter.Fail(ExitFailure, ErrCodeNotFound, fmt.Sprintf("no history for app %s", app), nil)
	case err != nil:
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), nil)
	}

	data, err := dom.Encode(d)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	hash, err := dom.Hash(d)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}

	if formatter.Format == "json" {
		result := CheckoutResult{App: app, Seq: seq, Hash: hash, Output: opts.Output}
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
		fmt.Fprintf(formatter.Writer, "✓ Wrote %s at seq %d to %s\n", app, seq, opts.Output)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func violationStrings(vs []dom.Violation) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.String()
	}
	return out
}
