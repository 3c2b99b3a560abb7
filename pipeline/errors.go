// Package pipeline provides the contracts shared by every durable pipeline:
// the result envelope returned by steps, the retry policy attached to step
// invocations, the error-kind taxonomy that drives retry eligibility, and
// the step runner that enforces both.
package pipeline

import (
	"errors"
	"fmt"
)

// Kind classifies a step error. Retry eligibility is a property of the
// kind, never of the error message.
type Kind string

const (
	// KindValidation marks locally-raised input errors. Retrying a
	// validation error can never succeed.
	KindValidation Kind = "validation"

	// KindConfiguration marks missing or invalid credentials for a
	// required external provider, detected before any call is made.
	KindConfiguration Kind = "configuration"

	// KindTransient marks timeouts, 5xx responses and rate limiting.
	KindTransient Kind = "transient"

	// KindPermanent marks provider errors that cannot succeed on retry,
	// such as 401/403 auth failures.
	KindPermanent Kind = "permanent"

	// KindUnknown is the classification for errors that carry no kind.
	KindUnknown Kind = "unknown"
)

// Error wraps an underlying error with its classification kind.
type Error struct {
	kind Kind
	err  error
}

func (e *Error) Error() string {
	return e.err.Error()
}

func (e *Error) Unwrap() error {
	return e.err
}

// Kind returns the error's classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// NewError wraps err with the given kind.
func NewError(kind Kind, err error) error {
	return &Error{kind: kind, err: err}
}

// Validationf creates a validation error from a format string.
func Validationf(format string, args ...any) error {
	return &Error{kind: KindValidation, err: fmt.Errorf(format, args...)}
}

// Configurationf creates a configuration error from a format string.
func Configurationf(format string, args ...any) error {
	return &Error{kind: KindConfiguration, err: fmt.Errorf(format, args...)}
}

// Transient wraps an error as transient (retryable).
func Transient(err error) error {
	return &Error{kind: KindTransient, err: err}
}

// Permanent wraps an error as permanent (non-retryable).
func Permanent(err error) error {
	return &Error{kind: KindPermanent, err: err}
}

// KindOf returns the classification of err, or KindUnknown when err
// carries no kind anywhere in its chain.
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.kind
	}
	return KindUnknown
}

// IsTransient reports whether err is classified transient.
func IsTransient(err error) bool {
	return KindOf(err) == KindTransient
}
