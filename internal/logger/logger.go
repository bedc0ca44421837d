// Package logger builds the zerolog logger shared by the notes server.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const permission = 0o664

// Config selects the log level, format and destination.
type Config struct {
	Level  string
	Format string
	Path   string
	Output io.Writer
}

// DefaultConfig logs at info level to stderr. Stdout is reserved for the MCP
// transport.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Output: os.Stderr,
	}
}

// Logger is a zerolog logger that owns its log file, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a logger from cfg. When Path is set the log is appended to that
// file instead of Output.
func New(cfg Config) (*Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{}
	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Path != "" {
		l.file, err = os.OpenFile(cfg.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = zerolog.SyncWriter(l.file)
	}

	switch strings.ToLower(cfg.Format) {
	case "", "console", "text":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05", NoColor: cfg.Path != ""}
	case "json":
	default:
		l.Close()
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	l.Logger = zerolog.New(w).Level(level).With().Timestamp().Logger()
	return l, nil
}

// ParseLevel maps a level name to a zerolog level. Empty means info.
func ParseLevel(s string) (zerolog.Level, error) {
	if strings.TrimSpace(s) == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// ForComponent returns a child logger tagged with the component name.
func (l *Logger) ForComponent(component string) zerolog.Logger {
	return l.With().Str("component", component).Logger()
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}
