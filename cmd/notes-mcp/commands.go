package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/taigrr/notes-mcp/internal/types"
)

// withApp builds the services for a one-shot command and closes them after.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(a *app) error) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

// noteText joins args into note text; a single "-" reads it from stdin.
func noteText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, "\n"), nil
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var ascending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notes, most recently saved first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				notes := a.notes.Items()
				if !ascending {
					// The list view only reorders on save messages; a fresh
					// scan shows newest first.
					slices.Reverse(notes)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				for _, note := range notes {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", note.Filename, note.Date.Format("2006-01-02 15:04"), note.Title())
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().BoolVar(&ascending, "ascending", false, "oldest first")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <file>",
		Short: "Print a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				note, err := a.store.Load(args[0])
				if err != nil {
					return err
				}
				_, err = io.WriteString(cmd.OutOrStdout(), note.Text)
				return err
			})
		},
	}
}

func newNewCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "new <text>...",
		Short: "Create a note; each argument becomes a line, '-' reads stdin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := noteText(cmd, args)
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				note, err := a.newNote()
				if err != nil {
					return err
				}
				note.SetText(text)
				if err := note.Save(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), note.Identifier())
				return nil
			})
		},
	}
}

func newEditCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <file> <text>...",
		Short: "Replace the text of a note; '-' reads stdin",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := noteText(cmd, args[1:])
			if err != nil {
				return err
			}
			return withApp(cmd, opts, func(a *app) error {
				note, err := a.loadNote(args[0])
				if err != nil {
					return err
				}
				note.SetText(text)
				return note.Save()
			})
		},
	}
}

func newRmCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>...",
		Short: "Delete notes",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, opts, func(a *app) error {
				var errs []error
				for _, filename := range args {
					result := a.store.Remove(filename)
					if !result.Success {
						errs = append(errs, errors.New(result.Message))
						continue
					}
					if result.Existed {
						a.bus.Deleted(types.Note{Filename: filename})
					}
					fmt.Fprintln(cmd.OutOrStdout(), result.Message)
				}
				return errors.Join(errs...)
			})
		},
	}
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var (
		params types.SearchParams
		fuzzy  bool
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search note text, or fuzzy match titles with --fuzzy",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			return withApp(cmd, opts, func(a *app) error {
				if fuzzy {
					results, err := a.search.Fuzzy(query, params.Limit)
					if err != nil {
						return err
					}
					for _, r := range results {
						fmt.Fprintf(out, "%s\t%s\n", r.Filename, r.Title)
					}
					return nil
				}

				params.Query = query
				results, total, err := a.search.Search(params)
				if err != nil {
					return err
				}
				for _, r := range results {
					fmt.Fprintf(out, "== %s (%s)\n", r.Filename, r.Title)
					for _, m := range r.Matches {
						fmt.Fprintf(out, "%d:\n%s\n", m.Line, m.Context)
					}
				}
				if len(results) < total {
					fmt.Fprintf(out, "-- %d of %d notes shown\n", len(results), total)
				}
				return nil
			})
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&params.UseRegex, "regex", "e", false, "treat query as a regular expression")
	f.BoolVarP(&params.CaseSensitive, "case-sensitive", "s", false, "match case")
	f.IntVarP(&params.ContextLines, "context", "C", 0, "lines of context (default 2)")
	f.IntVarP(&params.Limit, "limit", "n", 0, "maximum results (default 15)")
	f.IntVar(&params.Offset, "offset", 0, "skip first N results")
	f.BoolVarP(&fuzzy, "fuzzy", "f", false, "fuzzy match note titles")
	return cmd
}
