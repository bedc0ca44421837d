// Package viewmodel holds the state behind the notes list and the note
// editor, decoupled from any UI. Views observe changes through listeners.
package viewmodel

import "github.com/taigrr/notes-mcp/internal/types"

// Store is the note persistence the view models depend on.
type Store interface {
	Create() (types.Note, error)
	Save(note types.Note) error
	Load(filename string) (types.Note, error)
	Delete(note types.Note) error
	LoadAll() ([]types.Note, error)
}
