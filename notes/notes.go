// Package notes persists voice notes as a single JSON document, newest
// first, the whole list rewritten on every change.
package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"voxnote/analyze"
	"voxnote/log"
)

// VoiceNote is one recorded and processed memo.
type VoiceNote struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	AudioPath       string              `json:"audioPath"`
	Transcription   string              `json:"transcription"`
	KeyPoints       []string            `json:"keyPoints"`
	Actions         []string            `json:"actions"`
	Tags            []string            `json:"tags"`
	CreatedAt       time.Time           `json:"createdAt"`
	DurationSeconds int                 `json:"duration"`
	CalendarEvents  []analyze.NoteEvent `json:"calendarEvents,omitempty"`
}

// Store reads and writes the notes file. Every mutation is a full
// read-modify-write with an atomic replace, so a crash never leaves a
// half-written list.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// All returns every note, newest first.
func (s *Store) All() ([]VoiceNote, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading notes file: %w", err)
	}
	var list []VoiceNote
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parsing notes file %s: %w", s.path, err)
	}
	return list, nil
}

// Add prepends the note and persists the list.
func (s *Store) Add(note VoiceNote) error {
	list, err := s.All()
	if err != nil {
		return err
	}
	list = append([]VoiceNote{note}, list...)
	if err := s.save(list); err != nil {
		return err
	}
	log.NoteSaved(note.ID, note.Title, note.DurationSeconds)
	return nil
}

// Get returns the note with the given id.
func (s *Store) Get(id string) (*VoiceNote, error) {
	list, err := s.All()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("note %q not found", id)
}

// Delete removes the note with the given id. The audio file is left on
// disk; only the note record goes away.
func (s *Store) Delete(id string) error {
	list, err := s.All()
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			return s.save(append(list[:i], list[i+1:]...))
		}
	}
	return fmt.Errorf("note %q not found", id)
}

// Search returns notes whose title, transcription or tags contain the
// query, case-insensitively. An empty query returns everything.
func (s *Store) Search(query string) ([]VoiceNote, error) {
	list, err := s.All()
	if err != nil {
		return nil, err
	}
	if query == "" {
		return list, nil
	}
	q := strings.ToLower(query)
	var out []VoiceNote
	for _, n := range list {
		if noteMatches(n, q) {
			out = append(out, n)
		}
	}
	return out, nil
}

func noteMatches(n VoiceNote, q string) bool {
	if strings.Contains(strings.ToLower(n.Title), q) ||
		strings.Contains(strings.ToLower(n.Transcription), q) {
		return true
	}
	for _, tag := range n.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func (s *Store) save(list []VoiceNote) error {
	if list == nil {
		list = []VoiceNote{}
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating notes dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing notes file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing notes file: %w", err)
	}
	return nil
}

// NewID derives a note id from its creation time, matching the
// timestamp-string ids notes have always used.
func NewID(t time.Time) string {
	return fmt.Sprintf("%d", t.UnixMilli())
}
