// Package storage provides the task registry: the externally-visible
// record of each pipeline submission, backed by NATS JetStream KV with an
// in-memory implementation for tests.
package storage

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the status of a task. Transitions are monotonic:
// running moves to completed or failed and never reverses.
type TaskStatus string

const (
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status is final.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task is the record of one pipeline execution.
type Task struct {
	// ID is the opaque client-facing task identifier.
	ID string `json:"task_id"`

	// Kind names the pipeline this task executes.
	Kind string `json:"kind"`

	// Status is the current execution state.
	Status TaskStatus `json:"status"`

	// Input is the immutable submitted payload (text or URL).
	Input string `json:"input"`

	// Result is present only when Status is completed.
	Result json.RawMessage `json:"result,omitempty"`

	// Error is present only when Status is failed. It is a human-readable
	// message, never a stack trace.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTask creates a running task record with a fresh identifier.
func NewTask(kind, input string) *Task {
	now := time.Now().UTC()
	return &Task{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    TaskStatusRunning,
		Input:     input,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Registry maps task identifiers to their latest execution record.
// Writes for a given task happen only from that task's own pipeline
// execution; reads may happen concurrently from status-polling callers.
type Registry interface {
	// Put stores or replaces a task record.
	Put(ctx context.Context, task *Task) error

	// Get returns the task record, or ErrNotFound.
	Get(ctx context.Context, id string) (*Task, error)

	// Complete transitions the task to completed with the given result.
	// Returns ErrInvalidTransition if the task is already terminal.
	Complete(ctx context.Context, id string, result json.RawMessage) error

	// Fail transitions the task to failed with the given message.
	// Returns ErrInvalidTransition if the task is already terminal.
	Fail(ctx context.Context, id string, msg string) error
}
