// Package search provides search functionality over stored notes.
package search

import (
	"regexp"
	"runtime"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
	"github.com/taigrr/notes-mcp/internal/types"
)

const (
	defaultContextLines = 2
	defaultLimit        = 15
)

// Source yields the notes to search.
type Source interface {
	LoadAll() ([]types.Note, error)
}

// Service provides search functionality over a note source.
type Service struct {
	source Source
}

// New creates a new search Service.
func New(source Source) *Service {
	return &Service{source: source}
}

// Search performs a literal or regex search over note text and returns
// matching lines with context. Results follow storage order (ascending by
// date); totalNotes counts all matching notes for pagination.
func (s *Service) Search(params types.SearchParams) ([]types.SearchResult, int, error) {
	query := params.Query
	if strings.TrimSpace(query) == "" {
		return nil, 0, &SearchError{Message: "Search query cannot be empty"}
	}

	contextLines := params.ContextLines
	if contextLines <= 0 {
		contextLines = defaultContextLines
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	offset := max(params.Offset, 0)

	pattern := query
	if !params.UseRegex {
		pattern = regexp.QuoteMeta(query)
	}
	if !params.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	searchPattern, err := regexp.Compile(pattern)
	if err != nil {
		return nil, 0, &SearchError{Message: "Invalid regex pattern: " + err.Error()}
	}

	notes, err := s.source.LoadAll()
	if err != nil {
		return nil, 0, err
	}

	// Match notes in parallel; results keep storage order by index.
	results := make([]*types.SearchResult, len(notes))
	numWorkers := max(min(runtime.NumCPU(), len(notes)), 1)
	idxCh := make(chan int, len(notes))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for idx := range idxCh {
				results[idx] = matchNote(notes[idx], searchPattern, contextLines)
			}
		})
	}

	for i := range notes {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	allResults := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			allResults = append(allResults, *r)
		}
	}

	totalNotes := len(allResults)

	if offset >= len(allResults) {
		return []types.SearchResult{}, totalNotes, nil
	}

	endIdx := min(offset+limit, len(allResults))

	return allResults[offset:endIdx], totalNotes, nil
}

func matchNote(note types.Note, pattern *regexp.Regexp, contextLines int) *types.SearchResult {
	lines := strings.Split(note.Text, "\n")

	var matches []types.SearchMatch
	for lineNum, line := range lines {
		if !pattern.MatchString(line) {
			continue
		}
		startLine := max(lineNum-contextLines, 0)
		endLine := min(lineNum+contextLines+1, len(lines))

		matches = append(matches, types.SearchMatch{
			Line:    lineNum + 1,
			Context: strings.Join(lines[startLine:endLine], "\n"),
		})
	}

	if len(matches) == 0 {
		return nil
	}
	return &types.SearchResult{
		Filename: note.Filename,
		Title:    note.Title(),
		Matches:  matches,
	}
}

// titles adapts a note slice to fuzzy.Source.
type titles []types.Note

func (t titles) String(i int) string { return t[i].Title() }
func (t titles) Len() int            { return len(t) }

// Fuzzy ranks notes by a fuzzy match of query against their titles (first
// non-blank line). Best matches come first.
func (s *Service) Fuzzy(query string, limit int) ([]types.FuzzyResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &SearchError{Message: "Search query cannot be empty"}
	}
	if limit <= 0 {
		limit = defaultLimit
	}

	notes, err := s.source.LoadAll()
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, titles(notes))
	if len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]types.FuzzyResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, types.FuzzyResult{
			Filename:       notes[m.Index].Filename,
			Title:          m.Str,
			Score:          m.Score,
			MatchedIndexes: m.MatchedIndexes,
		})
	}
	return results, nil
}

// SearchError represents a search error.
type SearchError struct {
	Message string
}

func (e *SearchError) Error() string {
	return e.Message
}
