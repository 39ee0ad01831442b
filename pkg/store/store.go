// Package store owns the authoritative task document and its
// persistence to a single JSON file. It is the only writer of the
// backing file; the sync engine and the magic sort replace the
// in-memory collection through Replace and never touch the file
// themselves.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"

	"github.com/harrisonrobin/quadrant/pkg/model"
)

var (
	// ErrEmptyContent rejects task creation with blank content.
	ErrEmptyContent = errors.New("task content is required")
	// ErrNotFound signals an update/delete against an unknown task id.
	ErrNotFound = errors.New("task not found")
)

// Store is a single-writer, whole-document task store. Every mutation
// persists the full envelope; there are no partial writes.
type Store struct {
	path string

	mu  sync.Mutex
	doc model.Document
}

// Open loads the document at path, bootstrapping it when needed:
// a missing file is initialized as an empty envelope and persisted, a
// legacy bare-array file is wrapped into the envelope shape and
// persisted once, and unreadable or malformed content falls back to an
// empty collection without failing.
func Open(path string) (*Store, error) {
	s := &Store{path: path, doc: model.Document{Tasks: []model.Task{}}}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("task file unreadable, starting empty", "path", path, "error", err)
			return s, nil
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.persistLocked(stampNow()); err != nil {
			return nil, err
		}
		return s, nil
	}

	doc, err := model.DecodeDocument(data)
	if err != nil {
		slog.Warn("task file malformed, starting empty", "path", path, "error", err)
		return s, nil
	}
	s.doc = doc

	// A bare JSON array is the legacy shape; persist the upgraded
	// envelope immediately so the migration happens exactly once.
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("[")) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.persistLocked(stampNow()); err != nil {
			return nil, fmt.Errorf("upgrade legacy task file: %w", err)
		}
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Tasks returns a snapshot of the current collection.
func (s *Store) Tasks() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone().Tasks
}

// Document returns a snapshot of the full envelope.
func (s *Store) Document() model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Save persists the full current collection with a freshly stamped
// last_sync. On failure the in-memory state stays valid but unpersisted.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(stampNow())
}

// Add validates, appends and persists a new task, returning the record.
func (s *Store) Add(content string) (model.Task, error) {
	if strings.TrimSpace(content) == "" {
		return model.Task{}, ErrEmptyContent
	}

	now := time.Now().UTC()
	task := model.Task{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Tasks = append(s.doc.Tasks, task)
	if err := s.persistLocked(stampNow()); err != nil {
		return task, err
	}
	return task, nil
}

// Update applies only the provided fields to the matching task and
// refreshes updated_at. A nil field is left untouched. Returns
// ErrNotFound, with no side effects, when the id is unknown.
func (s *Store) Update(id string, content *string, completed *bool) (model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		if content != nil {
			s.doc.Tasks[i].Content = *content
		}
		if completed != nil {
			s.doc.Tasks[i].Completed = *completed
		}
		s.doc.Tasks[i].UpdatedAt = time.Now().UTC()
		if err := s.persistLocked(stampNow()); err != nil {
			return s.doc.Tasks[i], err
		}
		return s.doc.Tasks[i], nil
	}
	return model.Task{}, ErrNotFound
}

// Delete removes the matching task and reports whether a removal
// occurred. Deleting an unknown id is a no-op returning false.
func (s *Store) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.doc.Tasks {
		if s.doc.Tasks[i].ID != id {
			continue
		}
		s.doc.Tasks = append(s.doc.Tasks[:i], s.doc.Tasks[i+1:]...)
		if err := s.persistLocked(stampNow()); err != nil {
			return true, err
		}
		return true, nil
	}
	return false, nil
}

// Replace swaps the whole in-memory collection and persists it. The
// incoming last_sync is preserved when present, otherwise a fresh one
// is stamped. Used by the sync merge and the magic sort, which hand
// back a complete document.
func (s *Store) Replace(doc model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.doc.Tasks = doc.Clone().Tasks
	if s.doc.Tasks == nil {
		s.doc.Tasks = []model.Task{}
	}
	last := doc.LastSync
	if last == nil {
		last = stampNow()
	}
	return s.persistLocked(last)
}

func stampNow() *time.Time {
	now := time.Now().UTC()
	return &now
}

// persistLocked writes the whole document atomically. Callers hold mu.
func (s *Store) persistLocked(lastSync *time.Time) error {
	s.doc.LastSync = lastSync

	data, err := s.doc.Encode()
	if err != nil {
		return fmt.Errorf("encode task document: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create task directory: %w", err)
		}
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}
