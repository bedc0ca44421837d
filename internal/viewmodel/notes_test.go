package viewmodel

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/notestore"
	"github.com/taigrr/notes-mcp/internal/types"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) Now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setup(t *testing.T) (*notestore.Service, *messenger.Bus, *stepClock) {
	t.Helper()
	clock := &stepClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	store := notestore.New(t.TempDir(), notestore.WithClock(clock.Now))
	return store, messenger.New(), clock
}

func filenames(notes []types.Note) []string {
	names := make([]string, len(notes))
	for i, n := range notes {
		names[i] = n.Filename
	}
	return names
}

func TestNewNotes_LoadsAscending(t *testing.T) {
	store, bus, _ := setup(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(types.Note{Filename: "b.notes.txt", Text: "b", Date: base.Add(2 * time.Hour)}))
	require.NoError(t, store.Save(types.Note{Filename: "a.notes.txt", Text: "a", Date: base.Add(time.Hour)}))

	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	assert.Equal(t, []string{"a.notes.txt", "b.notes.txt"}, filenames(notes.Items()))
}

func TestNotes_SavedInsertsAtFront(t *testing.T) {
	store, bus, clock := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	a, err := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, err)
	a.SetText("hello")
	require.NoError(t, a.Save())

	b, err := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, err)
	b.SetText("world")
	require.NoError(t, b.Save())

	// Most recently saved first in the list...
	assert.Equal(t, []string{b.Identifier(), a.Identifier()}, filenames(notes.Items()))

	// ...but ascending by date in storage.
	all, err := store.LoadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{a.Identifier(), b.Identifier()}, filenames(all))
}

func TestNotes_ResaveMovesToFront(t *testing.T) {
	store, bus, clock := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	a, _ := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, a.Save())
	b, _ := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, b.Save())

	a.SetText("edited")
	require.NoError(t, a.Save())

	items := notes.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.Identifier(), items[0].Filename)
	assert.Equal(t, "edited", items[0].Text)
	assert.Equal(t, b.Identifier(), items[1].Filename)
}

func TestNotes_DeletedRemoves(t *testing.T) {
	store, bus, clock := setup(t)
	a, _ := NewNote(store, bus, WithClock(clock.Now))
	a.SetText("hello")
	require.NoError(t, a.Save())

	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()
	require.Equal(t, 1, notes.Len())

	var changes []Change
	notes.Observe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, a.Delete())
	assert.Equal(t, 0, notes.Len())
	assert.False(t, store.Exists(a.Identifier()))

	// Deleting again is a no-op in storage and in the list.
	require.NoError(t, a.Delete())
	assert.Equal(t, 0, notes.Len())

	require.Len(t, changes, 1)
	assert.Equal(t, Remove, changes[0].Kind)
	assert.Equal(t, 0, changes[0].Index)
}

func TestNotes_DeletedUnknownIsNoop(t *testing.T) {
	store, bus, _ := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	called := false
	notes.Observe(func(Change) { called = true })

	bus.Deleted(types.Note{Filename: "ghost.notes.txt"})

	assert.False(t, called)
	assert.Equal(t, 0, notes.Len())
}

func TestNotes_ObserverSeesRemoveThenInsert(t *testing.T) {
	store, bus, clock := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	a, _ := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, a.Save())
	b, _ := NewNote(store, bus, WithClock(clock.Now))
	require.NoError(t, b.Save())

	var changes []Change
	unsubscribe := notes.Observe(func(c Change) { changes = append(changes, c) })

	require.NoError(t, a.Save())
	unsubscribe()
	require.NoError(t, b.Save())

	require.Len(t, changes, 2)
	assert.Equal(t, Change{Kind: Remove, Index: 1, Note: changes[0].Note}, changes[0])
	assert.Equal(t, a.Identifier(), changes[0].Note.Filename)
	assert.Equal(t, Insert, changes[1].Kind)
	assert.Equal(t, 0, changes[1].Index)
}

func TestNotes_ChangedRefreshesInPlace(t *testing.T) {
	store, bus, _ := setup(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(types.Note{Filename: "a.notes.txt", Text: "a", Date: base}))
	require.NoError(t, store.Save(types.Note{Filename: "b.notes.txt", Text: "b", Date: base.Add(time.Hour)}))

	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "a.notes.txt"), []byte("edited elsewhere"), 0o644))
	bus.Changed(types.Note{Filename: "a.notes.txt"})

	note, idx, ok := notes.Find("a.notes.txt")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, "edited elsewhere", note.Text)
}

func TestNotes_ChangedAppendsAndRemoves(t *testing.T) {
	store, bus, _ := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	require.NoError(t, os.WriteFile(filepath.Join(store.Dir(), "ext.notes.txt"), []byte("external"), 0o644))
	bus.Changed(types.Note{Filename: "ext.notes.txt"})
	require.Equal(t, []string{"ext.notes.txt"}, filenames(notes.Items()))

	require.NoError(t, os.Remove(filepath.Join(store.Dir(), "ext.notes.txt")))
	bus.Changed(types.Note{Filename: "ext.notes.txt"})
	assert.Equal(t, 0, notes.Len())

	// A change for a file that neither exists nor is listed does nothing.
	bus.Changed(types.Note{Filename: "never.notes.txt"})
	assert.Equal(t, 0, notes.Len())
}

func TestNotes_Reload(t *testing.T) {
	store, bus, _ := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)
	defer notes.Close()

	require.NoError(t, store.Save(types.Note{Filename: "a.notes.txt", Text: "a"}))
	assert.Equal(t, 0, notes.Len(), "list is not re-scanned implicitly")

	var got []Change
	notes.Observe(func(c Change) { got = append(got, c) })
	require.NoError(t, notes.Reload())

	assert.Equal(t, 1, notes.Len())
	require.Len(t, got, 1)
	assert.Equal(t, Reset, got[0].Kind)
}

func TestNotes_CloseStopsListening(t *testing.T) {
	store, bus, _ := setup(t)
	notes, err := NewNotes(store, bus, zerolog.Nop())
	require.NoError(t, err)

	notes.Close()
	bus.Saved(types.Note{Filename: "a.notes.txt"})

	assert.Equal(t, 0, notes.Len())
	assert.Equal(t, 0, bus.Subscribers())
}
