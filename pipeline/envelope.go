package pipeline

import (
	"math"
	"time"
)

// Envelope is the uniform value returned by every step. A step either
// returns a populated envelope or a typed error; it never returns a
// partially-populated envelope that silently masks a failure.
type Envelope[T any] struct {
	// Payload is the step-specific structured result.
	Payload T

	// ProcessingTimeSeconds is the wall-clock duration of the step,
	// rounded to millisecond precision.
	ProcessingTimeSeconds float64
}

// NewEnvelope wraps payload with the elapsed time since start.
func NewEnvelope[T any](payload T, start time.Time) Envelope[T] {
	return Envelope[T]{
		Payload:               payload,
		ProcessingTimeSeconds: RoundSeconds(time.Since(start)),
	}
}

// RoundSeconds converts a duration to seconds at millisecond precision.
func RoundSeconds(d time.Duration) float64 {
	return math.Round(d.Seconds()*1000) / 1000
}
