// Package messenger carries note change notifications between view models.
// A Bus is owned by whoever creates it; there is no process-wide instance.
package messenger

import (
	"context"
	"sync"

	"github.com/taigrr/notes-mcp/internal/types"
)

// Kind identifies what happened to a note.
type Kind int

const (
	// NoteSaved is published after a note was written by this process.
	NoteSaved Kind = iota
	// NoteDeleted is published after a note file was removed.
	NoteDeleted
	// NoteChanged is published when a note file changed outside this process.
	NoteChanged
)

func (k Kind) String() string {
	switch k {
	case NoteSaved:
		return "saved"
	case NoteDeleted:
		return "deleted"
	case NoteChanged:
		return "changed"
	default:
		return "unknown"
	}
}

// Message is a notification about a single note.
type Message struct {
	Kind Kind
	Note types.Note
}

type subscriber struct {
	id int
	fn func(Message)
}

// Bus delivers each published message to every subscriber, synchronously and
// in subscription order, on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   []subscriber
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn and returns a func that removes it.
func (b *Bus) Subscribe(fn func(Message)) (unsubscribe func()) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs = append(b.subs, subscriber{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers msg to a snapshot of the current subscribers.
func (b *Bus) Publish(msg Message) {
	b.mu.RLock()
	subs := make([]subscriber, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.fn(msg)
	}
}

// Saved, Deleted and Changed publish a message of the matching kind.
func (b *Bus) Saved(note types.Note)   { b.Publish(Message{Kind: NoteSaved, Note: note}) }
func (b *Bus) Deleted(note types.Note) { b.Publish(Message{Kind: NoteDeleted, Note: note}) }
func (b *Bus) Changed(note types.Note) { b.Publish(Message{Kind: NoteChanged, Note: note}) }

// Subscribers returns the number of registered subscribers.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Channel subscribes a channel with the given buffer. Publish blocks while the
// buffer is full. The channel is closed once ctx is done.
func (b *Bus) Channel(ctx context.Context, buffer int) <-chan Message {
	ch := make(chan Message, buffer)

	var mu sync.Mutex
	closed := false
	unsubscribe := b.Subscribe(func(msg Message) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- msg:
		case <-ctx.Done():
		}
	})

	go func() {
		<-ctx.Done()
		unsubscribe()
		mu.Lock()
		closed = true
		close(ch)
		mu.Unlock()
	}()

	return ch
}
