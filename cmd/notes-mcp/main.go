// Package main implements the notes MCP server and its command line.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/taigrr/notes-mcp/internal/config"
	"github.com/taigrr/notes-mcp/internal/viewmodel"
)

type rootOptions struct {
	flags config.CLIFlags
	watch bool
}

func main() {
	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "notes-mcp",
		Short: "MCP server for a directory of plain-text notes",
		Long: `notes-mcp keeps a directory of plain-text notes, one file per note,
and exposes it to MCP-compatible AI harnesses over stdio. The same
notes can be listed, shown, created, edited, removed and searched
from the command line.`,
		Example: `notes-mcp --dir ~/notes --watch
notes-mcp new "Groceries" "milk, eggs"
notes-mcp search --fuzzy groc`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, opts)
		},
		SilenceUsage: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.flags.DataDir, "dir", "d", "", "notes directory (default: application data dir)")
	pf.StringVarP(&opts.flags.ConfigFile, "config", "c", "", "config file (default: ~/.config/notes-mcp/config.yaml)")
	pf.StringVar(&opts.flags.EnvFile, "env-file", "", "dotenv file to load (default: .env)")
	pf.StringVar(&opts.flags.Suffix, "suffix", "", "note filename suffix")
	pf.StringVar(&opts.flags.LogLevel, "log-level", "", "log level (trace, debug, info, warn, error)")
	pf.StringVar(&opts.flags.LogFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&opts.flags.LogFile, "log-file", "", "append logs to this file instead of stderr")
	pf.BoolVarP(&opts.watch, "watch", "w", false, "watch the notes directory for external changes")

	cmd.AddCommand(
		newServeCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newNewCmd(opts),
		newEditCmd(opts),
		newRmCmd(opts),
		newSearchCmd(opts),
	)
	return cmd
}

// loadConfig resolves configuration for cmd. The watch flag only overrides
// the configured value when given explicitly.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := o.flags
	if cmd.Flags().Changed("watch") {
		watch := o.watch
		flags.Watch = &watch
	}
	return config.Load(flags)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server over stdio (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd, opts)
		},
	}
}

func runServer(cmd *cobra.Command, opts *rootOptions) error {
	cfg, err := opts.loadConfig(cmd)
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if cfg.Watch {
		if err := a.startWatcher(ctx); err != nil {
			return err
		}
	}

	log := a.log.ForComponent("notes")
	unobserve := a.notes.Observe(func(c viewmodel.Change) {
		log.Debug().
			Str("change", c.Kind.String()).
			Int("index", c.Index).
			Str("filename", c.Note.Filename).
			Msg("note list changed")
	})
	defer unobserve()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "notes-mcp",
		Version: version,
	}, nil)

	a.registerTools(server)

	a.log.Info().
		Str("dir", a.store.Dir()).
		Int("notes", a.notes.Len()).
		Bool("watch", cfg.Watch).
		Msg("serving notes over stdio")

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("error running server: %w", err)
	}

	return nil
}
