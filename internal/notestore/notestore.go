// Package notestore persists notes as one plain-text file per note.
package notestore

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/taigrr/notes-mcp/internal/pathfilter"
	"github.com/taigrr/notes-mcp/internal/textcodec"
	"github.com/taigrr/notes-mcp/internal/types"
)

// maxCreateAttempts bounds the retries when a generated name is already taken.
const maxCreateAttempts = 8

var (
	// ErrNotFound is returned when a note file does not exist.
	ErrNotFound = errors.New("note not found")
	// ErrInvalidName is returned for names that are not note file names.
	ErrInvalidName = errors.New("invalid note name")
	// ErrInvalidText is returned by Save for text that is not valid UTF-8.
	ErrInvalidText = errors.New("invalid note text")
	// ErrCollision is returned when Create cannot find an unused name.
	ErrCollision = errors.New("could not allocate a unique note name")
)

// Service provides storage operations for the notes directory.
type Service struct {
	dir        string
	pathFilter *pathfilter.PathFilter
	log        zerolog.Logger
	now        func() time.Time
	newToken   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithPathFilter sets the filter that decides which files are notes.
func WithPathFilter(pf *pathfilter.PathFilter) Option {
	return func(s *Service) {
		if pf != nil {
			s.pathFilter = pf
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock sets the time source used by Create.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithTokenSource sets the random token generator used for new file names.
func WithTokenSource(fn func() string) Option {
	return func(s *Service) { s.newToken = fn }
}

// New creates a new Service rooted at dir.
func New(dir string, opts ...Option) *Service {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		absPath = filepath.Clean(dir)
	}
	s := &Service{
		dir:        absPath,
		pathFilter: pathfilter.New(nil),
		log:        zerolog.Nop(),
		now:        time.Now,
		newToken:   randomToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Dir returns the notes directory.
func (s *Service) Dir() string {
	return s.dir
}

// Suffix returns the note filename suffix.
func (s *Service) Suffix() string {
	return s.pathFilter.Suffix()
}

// IsNote reports whether filename names a note in this store.
func (s *Service) IsNote(filename string) bool {
	return s.pathFilter.IsAllowed(filename)
}

// ResolvePath validates a note file name and returns its absolute path.
func (s *Service) ResolvePath(filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if !s.pathFilter.IsAllowed(filename) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}

	fullPath := filepath.Join(s.dir, filename)

	// Security check: ensure path is within the notes directory
	relPath, err := filepath.Rel(s.dir, fullPath)
	if err != nil {
		return "", err
	}
	if relPath != filename {
		return "", fmt.Errorf("%w: path traversal not allowed: %s", ErrInvalidName, filename)
	}

	return fullPath, nil
}

// Create returns a new, unsaved note with a freshly generated file name.
func (s *Service) Create() (types.Note, error) {
	for range maxCreateAttempts {
		name := s.newToken() + s.Suffix()
		if s.Exists(name) {
			s.log.Debug().Str("filename", name).Msg("generated note name already taken")
			continue
		}
		if _, err := s.ResolvePath(name); err != nil {
			return types.Note{}, err
		}
		return types.Note{
			Filename: name,
			Text:     "",
			Date:     s.now(),
		}, nil
	}
	return types.Note{}, ErrCollision
}

// Save writes the note text to its file, replacing any previous content.
// The new content is written to a temporary file that is renamed over the
// target, so readers see either the old or the new text. A non-zero
// note.Date becomes the file's modification time.
func (s *Service) Save(note types.Note) error {
	fullPath, err := s.ResolvePath(note.Filename)
	if err != nil {
		return err
	}

	data, err := textcodec.Encode(note.Text)
	if err != nil {
		return fmt.Errorf("%w: %s - %w", ErrInvalidText, note.Filename, err)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*"+s.Suffix())
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %s - %w", note.Filename, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync file: %s - %w", note.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close file: %s - %w", note.Filename, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %s - %w", note.Filename, err)
	}
	if !note.Date.IsZero() {
		if err := os.Chtimes(tmpPath, note.Date, note.Date); err != nil {
			return fmt.Errorf("failed to set modification time: %s - %w", note.Filename, err)
		}
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("failed to replace file: %s - %w", note.Filename, err)
	}
	committed = true

	s.log.Debug().Str("filename", note.Filename).Int("bytes", len(note.Text)).Msg("note saved")
	return nil
}

// Load reads a note. The note date is the file's last-write time.
func (s *Service) Load(filename string) (types.Note, error) {
	filename = strings.TrimSpace(filename)
	fullPath, err := s.ResolvePath(filename)
	if err != nil {
		return types.Note{}, err
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Note{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		if errors.Is(err, fs.ErrPermission) {
			return types.Note{}, fmt.Errorf("permission denied: %s", filename)
		}
		return types.Note{}, fmt.Errorf("failed to stat file: %s - %w", filename, err)
	}
	if info.IsDir() {
		return types.Note{}, fmt.Errorf("%w: %s is a directory", ErrInvalidName, filename)
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.Note{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return types.Note{}, fmt.Errorf("failed to read file: %s - %w", filename, err)
	}

	text, enc, err := textcodec.Decode(content)
	if err != nil {
		return types.Note{}, fmt.Errorf("failed to decode file: %s - %w", filename, err)
	}
	if enc != textcodec.UTF8 {
		s.log.Debug().Str("filename", filename).Str("encoding", string(enc)).Msg("decoded legacy encoding")
	}

	return types.Note{
		Filename: filename,
		Text:     text,
		Date:     info.ModTime(),
	}, nil
}

// Exists checks if a note file exists.
func (s *Service) Exists(filename string) bool {
	fullPath, err := s.ResolvePath(filename)
	if err != nil {
		return false
	}

	info, err := os.Stat(fullPath)
	return err == nil && !info.IsDir()
}

// Delete removes the note's file. Deleting a note that has no file is a no-op.
func (s *Service) Delete(note types.Note) error {
	result := s.Remove(note.Filename)
	if !result.Success {
		return errors.New(result.Message)
	}
	return nil
}

// Remove deletes a note file by name and reports what happened.
func (s *Service) Remove(filename string) types.DeleteResult {
	fullPath, err := s.ResolvePath(filename)
	if err != nil {
		return types.DeleteResult{
			Success:  false,
			Filename: filename,
			Message:  fmt.Sprintf("Failed to resolve path: %v", err),
		}
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return types.DeleteResult{
				Success:  true,
				Filename: filename,
				Existed:  false,
				Message:  fmt.Sprintf("Note %s did not exist", filename),
			}
		}
		if errors.Is(err, fs.ErrPermission) {
			return types.DeleteResult{
				Success:  false,
				Filename: filename,
				Message:  fmt.Sprintf("Permission denied: %s", filename),
			}
		}
		return types.DeleteResult{
			Success:  false,
			Filename: filename,
			Message:  fmt.Sprintf("Failed to delete file: %s - %v", filename, err),
		}
	}

	s.log.Debug().Str("filename", filename).Msg("note deleted")
	return types.DeleteResult{
		Success:  true,
		Filename: filename,
		Existed:  true,
		Message:  fmt.Sprintf("Successfully deleted note: %s", filename),
	}
}

// noteNames lists the note file names in the directory. A missing directory
// holds no notes.
func (s *Service) noteNames() ([]fs.DirEntry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("permission denied: %s", s.dir)
		}
		return nil, fmt.Errorf("failed to list directory: %s - %w", s.dir, err)
	}

	notes := entries[:0]
	for _, entry := range entries {
		if entry.Type().IsRegular() && s.pathFilter.IsAllowed(entry.Name()) {
			notes = append(notes, entry)
		}
	}
	return notes, nil
}

// List returns metadata for every note without reading content, ordered
// ascending by modification time.
func (s *Service) List() ([]types.NoteInfo, error) {
	entries, err := s.noteNames()
	if err != nil {
		return nil, err
	}

	infos := make([]types.NoteInfo, 0, len(entries))
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to stat file: %s - %w", entry.Name(), err)
		}
		infos = append(infos, types.NoteInfo{
			Filename: entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	slices.SortStableFunc(infos, func(a, b types.NoteInfo) int {
		return cmp.Or(a.Modified.Compare(b.Modified), strings.Compare(a.Filename, b.Filename))
	})
	return infos, nil
}

// LoadAll loads every note in the directory, ordered ascending by date.
// Notes removed between listing and reading are skipped.
func (s *Service) LoadAll() ([]types.Note, error) {
	entries, err := s.noteNames()
	if err != nil {
		return nil, err
	}

	type loadResult struct {
		note types.Note
		err  error
	}

	results := make([]loadResult, len(entries))
	numWorkers := max(min(runtime.NumCPU(), len(entries)), 1)
	idxCh := make(chan int, len(entries))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Go(func() {
			for idx := range idxCh {
				note, err := s.Load(entries[idx].Name())
				results[idx] = loadResult{note: note, err: err}
			}
		})
	}

	for i := range entries {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	notes := make([]types.Note, 0, len(results))
	for i, r := range results {
		if r.err != nil {
			if errors.Is(r.err, ErrNotFound) {
				s.log.Debug().Str("filename", entries[i].Name()).Msg("note vanished during scan")
				continue
			}
			return nil, r.err
		}
		notes = append(notes, r.note)
	}

	SortByDate(notes)
	return notes, nil
}

// SortByDate orders notes ascending by date, then by file name.
func SortByDate(notes []types.Note) {
	slices.SortStableFunc(notes, func(a, b types.Note) int {
		return cmp.Or(a.Date.Compare(b.Date), strings.Compare(a.Filename, b.Filename))
	})
}
