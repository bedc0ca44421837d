package viewmodel

import (
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/notestore"
	"github.com/taigrr/notes-mcp/internal/types"
)

// ChangeKind identifies how the notes list was mutated.
type ChangeKind int

const (
	Insert ChangeKind = iota
	Remove
	Replace
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Remove:
		return "remove"
	case Replace:
		return "replace"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Change describes one mutation of the list. Index is the position the note
// was inserted at, removed from or replaced at; it is -1 for Reset.
type Change struct {
	Kind  ChangeKind
	Index int
	Note  types.Note
}

type observer struct {
	id int
	fn func(Change)
}

// Notes is the ordered list of notes shown by the notes page. It is built
// from a directory scan on creation and then patched from bus messages
// without re-scanning.
type Notes struct {
	store Store
	log   zerolog.Logger

	mu        sync.Mutex
	items     []types.Note
	observers []observer
	nextID    int

	unsubscribe func()
}

// NewNotes loads all notes ascending by date and starts listening on bus.
func NewNotes(store Store, bus *messenger.Bus, log zerolog.Logger) (*Notes, error) {
	items, err := store.LoadAll()
	if err != nil {
		return nil, err
	}

	n := &Notes{
		store: store,
		log:   log,
		items: items,
	}
	if bus != nil {
		n.unsubscribe = bus.Subscribe(n.Receive)
	}
	return n, nil
}

// Close stops listening for messages.
func (n *Notes) Close() {
	if n.unsubscribe != nil {
		n.unsubscribe()
	}
}

// Observe registers fn to be called after every change and returns a func
// that removes it. Observers run on the goroutine that caused the change,
// outside the list's lock.
func (n *Notes) Observe(fn func(Change)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.observers = append(n.observers, observer{id: id, fn: fn})
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, o := range n.observers {
			if o.id == id {
				n.observers = append(n.observers[:i:i], n.observers[i+1:]...)
				return
			}
		}
	}
}

// Items returns a copy of the current list.
func (n *Notes) Items() []types.Note {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]types.Note, len(n.items))
	copy(out, n.items)
	return out
}

// Len returns the number of listed notes.
func (n *Notes) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.items)
}

// Find returns the note with the given identifier and its index.
func (n *Notes) Find(id string) (types.Note, int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	idx := n.indexOf(id)
	if idx < 0 {
		return types.Note{}, -1, false
	}
	return n.items[idx], idx, true
}

// Reload re-scans the store and replaces the list.
func (n *Notes) Reload() error {
	items, err := n.store.LoadAll()
	if err != nil {
		return err
	}
	n.mu.Lock()
	n.items = items
	n.mu.Unlock()
	n.notify(Change{Kind: Reset, Index: -1})
	return nil
}

// Receive applies a bus message to the list.
func (n *Notes) Receive(msg messenger.Message) {
	switch msg.Kind {
	case messenger.NoteSaved:
		n.saved(msg.Note)
	case messenger.NoteDeleted:
		n.deleted(msg.Note)
	case messenger.NoteChanged:
		n.changed(msg.Note)
	}
}

// saved moves the note to the front, the most recently saved position.
func (n *Notes) saved(note types.Note) {
	n.mu.Lock()
	var changes []Change
	if idx := n.indexOf(note.Identifier()); idx >= 0 {
		changes = append(changes, n.removeAt(idx))
	}
	changes = append(changes, n.insertAt(0, note))
	n.mu.Unlock()

	n.notify(changes...)
}

func (n *Notes) deleted(note types.Note) {
	n.mu.Lock()
	idx := n.indexOf(note.Identifier())
	if idx < 0 {
		n.mu.Unlock()
		return
	}
	change := n.removeAt(idx)
	n.mu.Unlock()

	n.notify(change)
}

// changed refreshes a note edited outside this process: replaced in place if
// listed, appended if new, removed if its file is gone.
func (n *Notes) changed(note types.Note) {
	fresh, err := n.store.Load(note.Identifier())
	if err != nil && !errors.Is(err, notestore.ErrNotFound) {
		n.log.Warn().Err(err).Str("filename", note.Identifier()).Msg("failed to refresh note")
		return
	}

	n.mu.Lock()
	idx := n.indexOf(note.Identifier())
	var change Change
	switch {
	case err != nil && idx < 0:
		n.mu.Unlock()
		return
	case err != nil:
		change = n.removeAt(idx)
	case idx >= 0:
		n.items[idx] = fresh
		change = Change{Kind: Replace, Index: idx, Note: fresh}
	default:
		change = n.insertAt(len(n.items), fresh)
	}
	n.mu.Unlock()

	n.notify(change)
}

func (n *Notes) indexOf(id string) int {
	for i, item := range n.items {
		if item.Identifier() == id {
			return i
		}
	}
	return -1
}

func (n *Notes) removeAt(idx int) Change {
	note := n.items[idx]
	n.items = append(n.items[:idx], n.items[idx+1:]...)
	return Change{Kind: Remove, Index: idx, Note: note}
}

func (n *Notes) insertAt(idx int, note types.Note) Change {
	n.items = append(n.items, types.Note{})
	copy(n.items[idx+1:], n.items[idx:])
	n.items[idx] = note
	return Change{Kind: Insert, Index: idx, Note: note}
}

func (n *Notes) notify(changes ...Change) {
	n.mu.Lock()
	observers := make([]observer, len(n.observers))
	copy(observers, n.observers)
	n.mu.Unlock()

	for _, c := range changes {
		for _, o := range observers {
			o.fn(c)
		}
	}
}
