// Package pathfilter decides which file names in the notes directory are notes.
package pathfilter

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/taigrr/notes-mcp/internal/types"
)

// globMeta escapes the characters doublestar treats as pattern syntax.
var globMeta = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`?`, `\?`,
	`[`, `\[`,
	`{`, `\{`,
)

// PathFilter filters note file names.
type PathFilter struct {
	suffix          string
	ignoredPatterns []string
}

// New creates a new PathFilter with the given configuration.
func New(config *types.PathFilterConfig) *PathFilter {
	pf := &PathFilter{
		suffix: types.DefaultSuffix,
		ignoredPatterns: []string{
			".*",
			"*~",
			"*.swp",
			".DS_Store",
			"Thumbs.db",
		},
	}

	if config != nil {
		if config.Suffix != "" {
			pf.suffix = config.Suffix
		}
		pf.ignoredPatterns = append(pf.ignoredPatterns, config.IgnoredPatterns...)
	}

	return pf
}

// Suffix returns the note filename suffix.
func (pf *PathFilter) Suffix() string {
	return pf.suffix
}

// Pattern returns the glob that matches note file names.
func (pf *PathFilter) Pattern() string {
	return "*" + globMeta.Replace(pf.suffix)
}

// IsAllowed reports whether name is a bare note file name: no directory
// components, not ignored, and carrying the note suffix.
func (pf *PathFilter) IsAllowed(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return false
	}
	if name == "." || name == ".." {
		return false
	}

	for _, pattern := range pf.ignoredPatterns {
		if match, _ := doublestar.Match(pattern, name); match {
			return false
		}
	}

	// The suffix alone is not a note.
	if len(name) <= len(pf.suffix) {
		return false
	}

	match, err := doublestar.Match(pf.Pattern(), name)
	return err == nil && match
}

// FilterNames filters a slice of names to only include notes.
func (pf *PathFilter) FilterNames(names []string) []string {
	var allowed []string
	for _, name := range names {
		if pf.IsAllowed(name) {
			allowed = append(allowed, name)
		}
	}
	return allowed
}
