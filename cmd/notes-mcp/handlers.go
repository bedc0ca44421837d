package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/taigrr/notes-mcp/internal/notestore"
	"github.com/taigrr/notes-mcp/internal/types"
	"github.com/taigrr/notes-mcp/internal/uri"
	"github.com/taigrr/notes-mcp/internal/viewmodel"
)

func formatDate(t time.Time) string {
	return t.Format(time.RFC3339)
}

func summarize(note types.Note) NoteSummary {
	return NoteSummary{
		Filename: note.Filename,
		Title:    note.Title(),
		Date:     formatDate(note.Date),
	}
}

func (a *app) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	var notes []types.Note
	if input.Ascending {
		var err error
		notes, err = a.store.LoadAll()
		if err != nil {
			return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
		}
	} else {
		if input.Reload {
			if err := a.notes.Reload(); err != nil {
				return &mcp.CallToolResult{IsError: true}, ListOutput{}, err
			}
		}
		notes = a.notes.Items()
	}

	total := len(notes)
	offset := max(input.Offset, 0)
	if offset >= total {
		return nil, ListOutput{Notes: []NoteSummary{}, TotalNotes: total}, nil
	}

	end := total
	if input.Limit > 0 {
		end = min(offset+input.Limit, total)
	}

	summaries := make([]NoteSummary, 0, end-offset)
	for _, note := range notes[offset:end] {
		summaries = append(summaries, summarize(note))
	}

	return nil, ListOutput{
		Notes:      summaries,
		TotalNotes: total,
		HasMore:    end < total,
	}, nil
}

func (a *app) handleRead(ctx context.Context, req *mcp.CallToolRequest, input ReadInput) (*mcp.CallToolResult, ReadOutput, error) {
	filename := strings.TrimSpace(input.Filename)
	note, err := a.store.Load(filename)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, ReadOutput{}, err
	}

	lines := strings.Split(note.Text, "\n")
	totalLines := len(lines)

	offset := max(input.Offset, 0)
	if offset >= totalLines {
		return nil, ReadOutput{
			Filename:   note.Filename,
			URI:        uri.NoteURI(a.store.Dir(), note.Filename),
			Date:       formatDate(note.Date),
			TotalLines: totalLines,
			Truncated:  true,
		}, nil
	}

	limit := input.Limit
	if limit <= 0 {
		limit = totalLines
	}

	endIdx := offset + limit
	truncated := false
	if endIdx >= totalLines {
		endIdx = totalLines
	} else {
		truncated = true
	}

	return nil, ReadOutput{
		Filename:   note.Filename,
		URI:        uri.NoteURI(a.store.Dir(), note.Filename),
		Text:       strings.Join(lines[offset:endIdx], "\n"),
		Date:       formatDate(note.Date),
		TotalLines: totalLines,
		Truncated:  truncated,
	}, nil
}

func (a *app) handleCreate(ctx context.Context, req *mcp.CallToolRequest, input CreateInput) (*mcp.CallToolResult, SaveOutput, error) {
	return a.handleSave(ctx, req, SaveInput{Text: input.Text})
}

func (a *app) handleSave(ctx context.Context, req *mcp.CallToolRequest, input SaveInput) (*mcp.CallToolResult, SaveOutput, error) {
	filename := strings.TrimSpace(input.Filename)

	var (
		note *viewmodel.Note
		err  error
	)
	if filename == "" {
		note, err = a.newNote()
	} else {
		note, err = a.loadNote(filename)
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SaveOutput{Filename: filename}, err
	}

	note.SetText(input.Text)
	if err := note.Save(); err != nil {
		return &mcp.CallToolResult{IsError: true}, SaveOutput{Filename: note.Identifier()}, err
	}

	return nil, SaveOutput{
		Success:  true,
		Filename: note.Identifier(),
		URI:      uri.NoteURI(a.store.Dir(), note.Identifier()),
		Date:     formatDate(note.Date()),
		Created:  filename == "",
	}, nil
}

func (a *app) handleDelete(ctx context.Context, req *mcp.CallToolRequest, input DeleteInput) (*mcp.CallToolResult, DeleteOutput, error) {
	filename := strings.TrimSpace(input.Filename)

	if input.Confirm != "yes" {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Filename: filename},
			fmt.Errorf("deletion not confirmed: set confirm='yes' to proceed")
	}

	note, err := a.loadNote(filename)
	if errors.Is(err, notestore.ErrNotFound) {
		return nil, DeleteOutput{Success: true, Filename: filename, Existed: false}, nil
	}
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Filename: filename}, err
	}

	if err := note.Delete(); err != nil {
		return &mcp.CallToolResult{IsError: true}, DeleteOutput{Filename: filename}, err
	}

	return nil, DeleteOutput{Success: true, Filename: filename, Existed: true}, nil
}

func (a *app) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (*mcp.CallToolResult, SearchOutput, error) {
	results, totalNotes, err := a.search.Search(types.SearchParams{
		Query:         input.Query,
		UseRegex:      input.UseRegex,
		CaseSensitive: input.CaseSensitive,
		ContextLines:  input.ContextLines,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, SearchOutput{}, err
	}

	items := make([]SearchResultItem, 0, len(results))
	for _, r := range results {
		matches := make([]SearchMatch, 0, len(r.Matches))
		for _, m := range r.Matches {
			matches = append(matches, SearchMatch{Line: m.Line, Context: m.Context})
		}
		items = append(items, SearchResultItem{
			Filename: r.Filename,
			Title:    r.Title,
			Matches:  matches,
		})
	}

	offset := max(input.Offset, 0)
	return nil, SearchOutput{
		Results:    items,
		TotalNotes: totalNotes,
		HasMore:    offset+len(items) < totalNotes,
	}, nil
}

func (a *app) handleFind(ctx context.Context, req *mcp.CallToolRequest, input FindInput) (*mcp.CallToolResult, FindOutput, error) {
	results, err := a.search.Fuzzy(input.Query, input.Limit)
	if err != nil {
		return &mcp.CallToolResult{IsError: true}, FindOutput{}, err
	}

	items := make([]FindResult, 0, len(results))
	for _, r := range results {
		items = append(items, FindResult{Filename: r.Filename, Title: r.Title, Score: r.Score})
	}
	return nil, FindOutput{Results: items}, nil
}
