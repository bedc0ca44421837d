package viewmodel

import (
	"errors"
	"sync"
	"time"

	"github.com/taigrr/notes-mcp/internal/messenger"
	"github.com/taigrr/notes-mcp/internal/types"
)

// ErrNotSaved is returned when deleting a note that was never saved.
var ErrNotSaved = errors.New("note has not been saved")

// Property names passed to property listeners.
const (
	PropText = "Text"
	PropDate = "Date"
)

// Note is the editor state for a single note.
type Note struct {
	store Store
	bus   *messenger.Bus
	now   func() time.Time

	mu        sync.Mutex
	note      types.Note
	isNew     bool
	listeners []func(string)
}

// NoteOption configures a Note.
type NoteOption func(*Note)

// WithClock sets the time source used to stamp saves.
func WithClock(now func() time.Time) NoteOption {
	return func(n *Note) { n.now = now }
}

func newNote(store Store, bus *messenger.Bus, note types.Note, isNew bool, opts []NoteOption) *Note {
	n := &Note{
		store: store,
		bus:   bus,
		now:   time.Now,
		note:  note,
		isNew: isNew,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewNote starts editing a fresh, unsaved note.
func NewNote(store Store, bus *messenger.Bus, opts ...NoteOption) (*Note, error) {
	note, err := store.Create()
	if err != nil {
		return nil, err
	}
	return newNote(store, bus, note, true, opts), nil
}

// LoadNote starts editing an existing note.
func LoadNote(store Store, bus *messenger.Bus, filename string, opts ...NoteOption) (*Note, error) {
	note, err := store.Load(filename)
	if err != nil {
		return nil, err
	}
	return newNote(store, bus, note, false, opts), nil
}

// Identifier returns the note's file name.
func (n *Note) Identifier() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.note.Filename
}

// Text returns the current, possibly unsaved, text.
func (n *Note) Text() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.note.Text
}

// Date returns the time of the last save or load.
func (n *Note) Date() time.Time {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.note.Date
}

// IsNew reports whether the note has never been saved.
func (n *Note) IsNew() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.isNew
}

// CanDelete reports whether Delete may run.
func (n *Note) CanDelete() bool {
	return !n.IsNew()
}

// Model returns a snapshot of the underlying note.
func (n *Note) Model() types.Note {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.note
}

// OnPropertyChanged registers fn to receive the name of each changed property.
func (n *Note) OnPropertyChanged(fn func(property string)) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// SetText updates the text, notifying listeners only when it differs.
func (n *Note) SetText(text string) {
	n.mu.Lock()
	if n.note.Text == text {
		n.mu.Unlock()
		return
	}
	n.note.Text = text
	n.mu.Unlock()

	n.propertyChanged(PropText)
}

// Save stamps the note with the current time, writes it and publishes
// NoteSaved.
func (n *Note) Save() error {
	n.mu.Lock()
	note := n.note
	n.mu.Unlock()

	note.Date = n.now()
	if err := n.store.Save(note); err != nil {
		return err
	}

	n.mu.Lock()
	n.note.Date = note.Date
	n.isNew = false
	note = n.note
	n.mu.Unlock()

	n.propertyChanged(PropDate)
	if n.bus != nil {
		n.bus.Saved(note)
	}
	return nil
}

// Delete removes the note's file and publishes NoteDeleted.
func (n *Note) Delete() error {
	if !n.CanDelete() {
		return ErrNotSaved
	}

	note := n.Model()
	if err := n.store.Delete(note); err != nil {
		return err
	}
	if n.bus != nil {
		n.bus.Deleted(note)
	}
	return nil
}

// Refresh reloads the note from storage, discarding unsaved edits.
func (n *Note) Refresh() error {
	note, err := n.store.Load(n.Identifier())
	if err != nil {
		return err
	}

	n.mu.Lock()
	n.note = note
	n.isNew = false
	n.mu.Unlock()

	n.propertyChanged(PropText)
	n.propertyChanged(PropDate)
	return nil
}

func (n *Note) propertyChanged(name string) {
	n.mu.Lock()
	listeners := make([]func(string), len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(name)
	}
}
