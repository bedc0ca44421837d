package watcher

import "time"

// Config controls event debouncing.
type Config struct {
	DebounceWindow time.Duration `yaml:"debounce_window"`
	MaxBatchSize   int           `yaml:"max_batch_size"`
}

// DefaultConfig returns a 300ms window and batches of up to 100 files.
func DefaultConfig() Config {
	return Config{
		DebounceWindow: 300 * time.Millisecond,
		MaxBatchSize:   100,
	}
}
