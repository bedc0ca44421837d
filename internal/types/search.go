package types

type (
	// SearchParams contains parameters for searching note text.
	SearchParams struct {
		Query         string `json:"query"`
		UseRegex      bool   `json:"useRegex,omitempty"`
		CaseSensitive bool   `json:"caseSensitive,omitempty"`
		ContextLines  int    `json:"contextLines,omitempty"`
		Limit         int    `json:"limit,omitempty"`
		Offset        int    `json:"offset,omitempty"`
	}

	// SearchMatch represents a single matching line within a note.
	SearchMatch struct {
		Line    int    `json:"line"`
		Context string `json:"context"`
	}

	// SearchResult represents search results for a single note.
	SearchResult struct {
		Filename string        `json:"filename"`
		Title    string        `json:"title"`
		Matches  []SearchMatch `json:"matches"`
	}

	// FuzzyResult is a note ranked by a fuzzy match on its title.
	FuzzyResult struct {
		Filename       string `json:"filename"`
		Title          string `json:"title"`
		Score          int    `json:"score"`
		MatchedIndexes []int  `json:"matchedIndexes,omitempty"`
	}
)
