package storage

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is an in-process task registry used in tests and in
// single-binary demo mode before JetStream is available.
type MemoryStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewMemoryStore creates an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tasks: make(map[string]*Task)}
}

// Put stores or replaces a task record.
func (s *MemoryStore) Put(_ context.Context, task *Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *task
	cp.UpdatedAt = time.Now().UTC()
	s.tasks[task.ID] = &cp
	return nil
}

// Get returns a copy of the task record, or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id string) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

// Complete transitions the task to completed with the given result.
func (s *MemoryStore) Complete(_ context.Context, id string, result json.RawMessage) error {
	return s.transition(id, func(t *Task) {
		t.Status = TaskStatusCompleted
		t.Result = result
		t.Error = ""
	})
}

// Fail transitions the task to failed with the given message.
func (s *MemoryStore) Fail(_ context.Context, id string, msg string) error {
	return s.transition(id, func(t *Task) {
		t.Status = TaskStatusFailed
		t.Error = msg
		t.Result = nil
	})
}

func (s *MemoryStore) transition(id string, mutate func(*Task)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return ErrNotFound
	}
	if t.Status.Terminal() {
		return ErrInvalidTransition
	}

	mutate(t)
	t.UpdatedAt = time.Now().UTC()
	return nil
}
