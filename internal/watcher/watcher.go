// Package watcher turns changes made to the notes directory by other
// processes into bus messages.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/types"
)

// NoteDir is the part of the note store the watcher needs.
type NoteDir interface {
	Dir() string
	IsNote(filename string) bool
	Exists(filename string) bool
}

// Watcher turns file system events in the notes directory into bus messages.
type Watcher struct {
	config    Config
	store     NoteDir
	bus       *messenger.Bus
	log       zerolog.Logger
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a Watcher. Call Start to begin watching.
func New(config Config, store NoteDir, bus *messenger.Bus, log zerolog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	w := &Watcher{
		config:    config,
		store:     store,
		bus:       bus,
		log:       log,
		fsWatcher: fsWatcher,
	}
	w.debouncer = NewDebouncer(config.DebounceWindow, config.MaxBatchSize, w.onFlush)

	return w, nil
}

// Start watches the notes directory, creating it if needed, until ctx is
// done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := w.store.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := w.fsWatcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.done = make(chan struct{})
	w.running = true

	w.log.Info().Str("dir", dir).Msg("watching notes directory")
	go w.handleEvents(ctx)

	return nil
}

func (w *Watcher) handleEvents(ctx context.Context) {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			w.log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("file event")

			if fileEvent := w.convertEvent(event); fileEvent != nil {
				w.debouncer.Add(*fileEvent)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watcher error")
		}
	}
}

func (w *Watcher) convertEvent(event fsnotify.Event) *FileEvent {
	if filepath.Dir(event.Name) != filepath.Clean(w.store.Dir()) {
		return nil
	}
	name := filepath.Base(event.Name)
	if !w.store.IsNote(name) {
		return nil
	}

	var eventType EventType

	switch {
	case event.Has(fsnotify.Create):
		eventType = EventCreate
	case event.Has(fsnotify.Write):
		eventType = EventModify
	case event.Has(fsnotify.Remove):
		eventType = EventDelete
	case event.Has(fsnotify.Rename):
		eventType = EventRename
	default:
		return nil
	}

	return &FileEvent{
		Filename:  name,
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// onFlush publishes one message per file. The file's presence decides the
// message, since a rename or create may be followed by further events.
func (w *Watcher) onFlush(events []FileEvent) {
	w.log.Debug().Int("count", len(events)).Msg("flushing events")

	for _, event := range events {
		note := types.Note{Filename: event.Filename}
		if w.store.Exists(event.Filename) {
			w.bus.Changed(note)
		} else {
			w.bus.Deleted(note)
		}
	}
}

// Stop ends watching and flushes pending events.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.fsWatcher.Close()
	}
	w.running = false
	w.cancel()
	done := w.done
	w.mu.Unlock()

	<-done
	w.debouncer.Stop()
	w.log.Info().Msg("stopped watching notes directory")

	return w.fsWatcher.Close()
}
