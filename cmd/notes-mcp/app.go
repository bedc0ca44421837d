package main

import (
	"context"
	"fmt"

	"github.com/taigrr/notes-mcp/internal/config"
	"github.com/taigrr/notes-mcp/internal/logger"
	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/notestore"
	"github.com/taigrr/notes-mcp/internal/pathfilter"
	"github.com/taigrr/notes-mcp/internal/search"
	"github.com/taigrr/notes-mcp/internal/viewmodel"
	"github.com/taigrr/notes-mcp/internal/watcher"
)

// app wires the services shared by the MCP handlers and CLI commands.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	store   *notestore.Service
	bus     *messenger.Bus
	notes   *viewmodel.Notes
	search  *search.Service
	watcher *watcher.Watcher
}

func newApp(cfg *config.Config) (*app, error) {
	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.Format = cfg.Log.Format
	logCfg.Path = cfg.Log.File

	log, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}
	return newAppWithLogger(cfg, log)
}

func newAppWithLogger(cfg *config.Config, log *logger.Logger) (*app, error) {
	store := notestore.New(cfg.DataDir,
		notestore.WithPathFilter(pathfilter.New(cfg.PathFilterConfig())),
		notestore.WithLogger(log.ForComponent("store")),
	)
	bus := messenger.New()

	notes, err := viewmodel.NewNotes(store, bus, log.ForComponent("notes"))
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("failed to load notes: %w", err)
	}

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		bus:    bus,
		notes:  notes,
		search: search.New(store),
	}, nil
}

func (a *app) startWatcher(ctx context.Context) error {
	w, err := watcher.New(a.cfg.Watcher, a.store, a.bus, a.log.ForComponent("watcher"))
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	a.watcher = w
	return nil
}

func (a *app) newNote() (*viewmodel.Note, error) {
	return viewmodel.NewNote(a.store, a.bus)
}

func (a *app) loadNote(filename string) (*viewmodel.Note, error) {
	return viewmodel.LoadNote(a.store, a.bus, filename)
}

func (a *app) Close() {
	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.log.Warn().Err(err).Msg("failed to stop watcher")
		}
	}
	a.notes.Close()
	a.log.Close()
}
