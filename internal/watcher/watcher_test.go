package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/notestore"
	"github.com/taigrr/notes-mcp/internal/types"
)

type messageLog struct {
	mu   sync.Mutex
	msgs []messenger.Message
}

func (l *messageLog) record(m messenger.Message) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.msgs = append(l.msgs, m)
}

func (l *messageLog) has(kind messenger.Kind, filename string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.msgs {
		if m.Kind == kind && m.Note.Filename == filename {
			return true
		}
	}
	return false
}

func (l *messageLog) filenames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var names []string
	for _, m := range l.msgs {
		names = append(names, m.Note.Filename)
	}
	return names
}

func startWatcher(t *testing.T) (*notestore.Service, *messageLog) {
	t.Helper()
	store := notestore.New(t.TempDir())
	bus := messenger.New()
	log := &messageLog{}
	bus.Subscribe(log.record)

	w, err := New(Config{DebounceWindow: 20 * time.Millisecond, MaxBatchSize: 100}, store, bus, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	t.Cleanup(func() { w.Stop() })

	return store, log
}

func TestWatcher_ExternalWritePublishesChanged(t *testing.T) {
	store, log := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "ext.notes.txt"), []byte("hi"), 0o644))

	require.Eventually(t, func() bool {
		return log.has(messenger.NoteChanged, "ext.notes.txt")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_ExternalRemovePublishesDeleted(t *testing.T) {
	store, log := startWatcher(t)
	require.NoError(t, store.Save(types.Note{Filename: "gone.notes.txt", Text: "x"}))

	require.Eventually(t, func() bool {
		return log.has(messenger.NoteChanged, "gone.notes.txt")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), "gone.notes.txt")))

	require.Eventually(t, func() bool {
		return log.has(messenger.NoteDeleted, "gone.notes.txt")
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	store, log := startWatcher(t)

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "readme.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "marker.notes.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		return log.has(messenger.NoteChanged, "marker.notes.txt")
	}, 2*time.Second, 10*time.Millisecond)

	for _, name := range log.filenames() {
		assert.Equal(t, "marker.notes.txt", name)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	store := notestore.New(t.TempDir())
	w, err := New(DefaultConfig(), store, messenger.New(), zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop())
	assert.NoError(t, w.Stop())
}
