package store

import (
	"sync"

	commonerrors "github.com/AlibekovAA/no-tion/internal/common/errors"
	"github.com/AlibekovAA/no-tion/internal/note/domain"
)

// Store is the ordered, title-unique note collection of a single user. It is
// shared by every session connected under that user's name, so all access
// goes through one lock.
type Store struct {
	mu    sync.RWMutex
	notes []domain.Note
}

func New() *Store {
	return &Store{}
}

func (s *Store) HasTitle(title string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOfLocked(title) >= 0
}

// Add appends without checking uniqueness. Sessions use Create instead.
func (s *Store) Add(note domain.Note) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note)
}

// Create appends an empty note unless the title is already taken. The check
// and the append happen under the same lock.
func (s *Store) Create(title string) error {
	if title == "" {
		return commonerrors.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOfLocked(title) >= 0 {
		return commonerrors.ErrNoteTitleExists
	}
	s.notes = append(s.notes, domain.Note{Title: title})
	return nil
}

func (s *Store) DeleteByTitle(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(title)
	if i < 0 {
		return false
	}
	s.notes = append(s.notes[:i], s.notes[i+1:]...)
	return true
}

func (s *Store) List() []domain.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]domain.Entry, len(s.notes))
	for i, n := range s.notes {
		entries[i] = domain.Entry{Index: i + 1, Title: n.Title}
	}
	return entries
}

func (s *Store) Get(index int) (domain.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.inRangeLocked(index) {
		return domain.Note{}, commonerrors.ErrNoteNotFound
	}
	return s.notes[index-1], nil
}

func (s *Store) UpdateContent(index int, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRangeLocked(index) {
		return commonerrors.ErrNoteNotFound
	}
	s.notes[index-1].Content = content
	return nil
}

// UpdateTitle renames the note at index. Renaming a note to its own current
// title counts as a collision like any other.
func (s *Store) UpdateTitle(index int, title string) error {
	if title == "" {
		return commonerrors.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.inRangeLocked(index) {
		return commonerrors.ErrNoteNotFound
	}
	if s.indexOfLocked(title) >= 0 {
		return commonerrors.ErrNoteTitleExists
	}
	s.notes[index-1].Title = title
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.notes)
}

func (s *Store) inRangeLocked(index int) bool {
	return index >= 1 && index <= len(s.notes)
}

func (s *Store) indexOfLocked(title string) int {
	for i, n := range s.notes {
		if n.Title == title {
			return i
		}
	}
	return -1
}
