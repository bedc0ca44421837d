package types

type (
	// PathFilterConfig contains configuration for the note filename filter.
	PathFilterConfig struct {
		Suffix          string   `json:"suffix" yaml:"suffix"`
		IgnoredPatterns []string `json:"ignoredPatterns" yaml:"ignored_patterns"`
	}
)
