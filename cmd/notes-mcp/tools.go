package main

import "github.com/modelcontextprotocol/go-sdk/mcp"

type (
	// NoteSummary describes a note in a listing.
	NoteSummary struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
		Date     string `json:"date"`
	}

	// ListInput contains parameters for listing notes.
	ListInput struct {
		Ascending bool `json:"ascending,omitempty" jsonschema:"Return notes oldest first as stored on disk instead of the list view order (default: false)"`
		Reload    bool `json:"reload,omitempty" jsonschema:"Rescan the notes directory before listing (default: false)"`
		Limit     int  `json:"limit,omitempty" jsonschema:"Maximum notes to return (default: all)"`
		Offset    int  `json:"offset,omitempty" jsonschema:"Skip first N notes for pagination (default: 0)"`
	}

	// ListOutput contains a page of notes.
	ListOutput struct {
		Notes      []NoteSummary `json:"notes"`
		TotalNotes int           `json:"totalNotes"`
		HasMore    bool          `json:"hasMore,omitempty"`
	}

	// ReadInput contains parameters for reading a note.
	ReadInput struct {
		Filename string `json:"filename" jsonschema:"File name of the note"`
		Offset   int    `json:"offset,omitempty" jsonschema:"Line offset to start reading from (default: 0)"`
		Limit    int    `json:"limit,omitempty" jsonschema:"Maximum number of lines to return (default: all)"`
	}

	// ReadOutput contains the result of reading a note.
	ReadOutput struct {
		Filename   string `json:"filename"`
		URI        string `json:"uri"`
		Text       string `json:"text"`
		Date       string `json:"date"`
		TotalLines int    `json:"totalLines"`
		Truncated  bool   `json:"truncated,omitempty"`
	}

	// CreateInput contains parameters for creating a note.
	CreateInput struct {
		Text string `json:"text" jsonschema:"Text of the new note"`
	}

	// SaveInput contains parameters for saving a note.
	SaveInput struct {
		Filename string `json:"filename,omitempty" jsonschema:"File name of an existing note; empty creates a new note"`
		Text     string `json:"text" jsonschema:"Full text of the note"`
	}

	// SaveOutput contains the result of creating or saving a note.
	SaveOutput struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		URI      string `json:"uri,omitempty"`
		Date     string `json:"date,omitempty"`
		Created  bool   `json:"created,omitempty"`
	}

	// DeleteInput contains parameters for deleting a note.
	DeleteInput struct {
		Filename string `json:"filename" jsonschema:"File name of the note"`
		Confirm  string `json:"confirm" jsonschema:"Must be set to 'yes' to confirm deletion"`
	}

	// DeleteOutput contains the result of deleting a note.
	DeleteOutput struct {
		Success  bool   `json:"success"`
		Filename string `json:"filename"`
		Existed  bool   `json:"existed"`
	}

	// SearchInput contains parameters for searching notes.
	SearchInput struct {
		Query         string `json:"query" jsonschema:"Search query (plain text or regex if useRegex=true)"`
		UseRegex      bool   `json:"useRegex,omitempty" jsonschema:"Treat query as regex pattern (default: false)"`
		CaseSensitive bool   `json:"caseSensitive,omitempty" jsonschema:"Case sensitive search (default: false)"`
		ContextLines  int    `json:"contextLines,omitempty" jsonschema:"Lines of context before/after match (default: 2)"`
		Limit         int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 15)"`
		Offset        int    `json:"offset,omitempty" jsonschema:"Skip first N results for pagination (default: 0)"`
	}

	// SearchMatch represents a single match within a note.
	SearchMatch struct {
		Line    int    `json:"line"`
		Context string `json:"context"`
	}

	// SearchResultItem represents search results for a single note.
	SearchResultItem struct {
		Filename string        `json:"filename"`
		Title    string        `json:"title"`
		Matches  []SearchMatch `json:"matches"`
	}

	// SearchOutput contains search results.
	SearchOutput struct {
		Results    []SearchResultItem `json:"results"`
		TotalNotes int                `json:"totalNotes"`
		HasMore    bool               `json:"hasMore,omitempty"`
	}

	// FindInput contains parameters for a fuzzy title lookup.
	FindInput struct {
		Query string `json:"query" jsonschema:"Characters to fuzzy match against note titles"`
		Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default: 15)"`
	}

	// FindResult is a note whose title matched.
	FindResult struct {
		Filename string `json:"filename"`
		Title    string `json:"title"`
		Score    int    `json:"score"`
	}

	// FindOutput contains fuzzy matches, best first.
	FindOutput struct {
		Results []FindResult `json:"results"`
	}
)

func (a *app) registerTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List notes. By default newest saves come first, matching the notes list view. Use ascending=true for storage order (oldest first).",
	}, a.handleList)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "read",
		Description: "Read a note by file name. Returns its text and date. Supports pagination with offset/limit for large notes.",
	}, a.handleRead)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create",
		Description: "Create a new note with the given text. Returns the generated file name.",
	}, a.handleCreate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "save",
		Description: "Overwrite the text of an existing note, or create a new note when filename is empty. Saving stamps the note with the current time and moves it to the top of the list.",
	}, a.handleSave)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete",
		Description: "Delete a note. Requires confirm='yes' for safety. Deleting a missing note succeeds with existed=false.",
	}, a.handleDelete)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search across all notes. Supports regex and case-insensitive search. Returns matching lines with context.",
	}, a.handleSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find",
		Description: "Fuzzy match note titles (the first non-blank line). Best matches first.",
	}, a.handleFind)
}
