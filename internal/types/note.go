// Package types defines all data structures used across the notes server.
package types

import (
	"strings"
	"time"
)

// DefaultSuffix is the filename suffix shared by every note file.
const DefaultSuffix = ".notes.txt"

type (
	// Note is a user-authored text record persisted as one file.
	Note struct {
		Filename string    `json:"filename"`
		Text     string    `json:"text"`
		Date     time.Time `json:"date"`
	}

	// NoteInfo contains metadata about a note without its content.
	NoteInfo struct {
		Filename string    `json:"filename"`
		Size     int64     `json:"size"`
		Modified time.Time `json:"modified"`
	}
)

// Identifier returns the value that identifies the note within its directory.
func (n Note) Identifier() string {
	return n.Filename
}

// Title returns the first non-blank line of the note, trimmed.
func (n Note) Title() string {
	for line := range strings.Lines(n.Text) {
		if t := strings.TrimSpace(line); t != "" {
			return t
		}
	}
	return ""
}
