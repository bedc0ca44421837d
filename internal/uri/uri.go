// Package uri builds file URIs for notes so MCP clients can open them.
package uri

import (
	"net/url"
	"path/filepath"
	"strings"
)

// NoteURI returns the file URI of a note: file:///absolute/path/to/note.
func NoteURI(dir, filename string) string {
	absolutePath := filepath.ToSlash(filepath.Join(dir, filename))

	// Escape each segment but keep the separators.
	parts := strings.Split(absolutePath, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	encodedPath := strings.TrimPrefix(strings.Join(parts, "/"), "/")

	return "file:///" + encodedPath
}
