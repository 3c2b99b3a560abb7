package pipeline

import (
	"math/rand/v2"
	"time"
)

// RetryPolicy configures retry behavior for a single step invocation.
type RetryPolicy struct {
	// InitialInterval is the backoff before the first retry.
	InitialInterval time.Duration

	// MaxInterval caps the backoff duration.
	MaxInterval time.Duration

	// Multiplier is applied to the backoff on each retry.
	Multiplier float64

	// MaxAttempts is the maximum number of attempts, including the first.
	MaxAttempts int

	// NonRetryable lists error kinds that abort the step on first
	// occurrence. Validation and configuration kinds must always be
	// listed: retrying either can never succeed.
	NonRetryable []Kind
}

// DefaultRetryPolicy returns sensible retry defaults for external calls.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialInterval: 2 * time.Second,
		MaxInterval:     20 * time.Second,
		Multiplier:      2.0,
		MaxAttempts:     3,
		NonRetryable:    []Kind{KindValidation, KindConfiguration, KindPermanent},
	}
}

// WithAttempts returns a copy of the policy with a different attempt budget.
func (p RetryPolicy) WithAttempts(n int) RetryPolicy {
	p.MaxAttempts = n
	return p
}

// WithIntervals returns a copy of the policy with different backoff bounds.
func (p RetryPolicy) WithIntervals(initial, max time.Duration) RetryPolicy {
	p.InitialInterval = initial
	p.MaxInterval = max
	return p
}

// Retryable reports whether an error of the given kind may be retried
// under this policy.
func (p RetryPolicy) Retryable(kind Kind) bool {
	for _, k := range p.NonRetryable {
		if k == kind {
			return false
		}
	}
	return true
}

// Backoff computes the backoff before retry number attempt (1-based) with
// +/- 25% jitter to prevent synchronized retries.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	multiplier := 1.0
	for i := 1; i < attempt; i++ {
		multiplier *= p.Multiplier
	}

	backoff := time.Duration(float64(p.InitialInterval) * multiplier)
	if backoff > p.MaxInterval {
		backoff = p.MaxInterval
	}

	jitter := float64(backoff) * 0.25 * (rand.Float64()*2 - 1)
	return backoff + time.Duration(jitter)
}
