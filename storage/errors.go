package storage

import "errors"

// Common registry errors.
var (
	// ErrNotFound is returned when a task is not found.
	ErrNotFound = errors.New("task not found")

	// ErrInvalidTransition is returned when a status update would move a
	// task out of a terminal state.
	ErrInvalidTransition = errors.New("invalid status transition")
)
