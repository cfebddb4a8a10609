package podcast

import (
	"sort"
	"sync"
	"time"
)

// TaskStore is the pollable task status table. Implementations must be safe
// for concurrent use and must enforce the lifecycle rules: terminal records
// are immutable, status changes follow the state machine, and progress never
// decreases.
type TaskStore interface {
	// Create inserts a new task record. ErrTaskExists if the id is taken.
	Create(task Task) error

	// Update applies fn to the stored record under the store's lock and
	// persists the result. ErrTaskNotFound if the id is unknown, ErrTaskFinal
	// if the record is already terminal.
	Update(id string, fn func(*Task)) error

	// Get returns a copy of the task record. ErrTaskNotFound if unknown.
	Get(id string) (Task, error)

	// List returns copies of all task records, newest first.
	List() ([]Task, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is the in-process TaskStore. Records live for the lifetime of
// the process; readers always see a consistent snapshot, never a record
// mid-update.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]Task
}

// NewMemoryStore creates an empty in-memory task store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tasks: make(map[string]Task),
	}
}

// Create inserts a new task record.
func (s *MemoryStore) Create(task Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return ErrTaskExists
	}
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	s.tasks[task.ID] = task.Clone()
	return nil
}

// Update mutates a stored record through fn. The store clamps progress so it
// never moves backwards and refuses updates to terminal records.
func (s *MemoryStore) Update(id string, fn func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	if stored.Terminal() {
		return ErrTaskFinal
	}

	next := stored.Clone()
	fn(&next)
	if next.Progress < stored.Progress {
		next.Progress = stored.Progress
	}
	next.ID = stored.ID
	next.CreatedAt = stored.CreatedAt
	next.UpdatedAt = time.Now()
	s.tasks[id] = next
	return nil
}

// Get returns a copy of the task record.
func (s *MemoryStore) Get(id string) (Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	return task.Clone(), nil
}

// List returns all task records, newest first.
func (s *MemoryStore) List() ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Task, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
