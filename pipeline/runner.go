package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mocksi/webforge/metrics"
)

// StepFunc is one attempt of a step. The context carries the step's
// start-to-close deadline; implementations must respect it.
type StepFunc[T any] func(ctx context.Context) (Envelope[T], error)

// RunStep executes fn under the given retry policy and start-to-close
// timeout. Each attempt gets a fresh deadline. Errors whose kind is listed
// as non-retryable abort immediately; transient errors are retried with
// exponential backoff and jitter until the attempt budget is exhausted.
func RunStep[T any](ctx context.Context, logger *slog.Logger, name string, policy RetryPolicy, timeout time.Duration, fn StepFunc[T]) (Envelope[T], error) {
	if logger == nil {
		logger = slog.Default()
	}

	var zero Envelope[T]
	var lastErr error

	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		env, err := runAttempt(ctx, timeout, fn)
		if err == nil {
			return env, nil
		}

		lastErr = err
		kind := KindOf(err)

		if !policy.Retryable(kind) {
			logger.Warn("Step failed with non-retryable error",
				"step", name,
				"kind", kind,
				"attempt", attempt,
				"error", err)
			return zero, err
		}

		if attempt < attempts {
			metrics.StepRetried(name)
			backoff := policy.Backoff(attempt)
			logger.Debug("Step failed, retrying",
				"step", name,
				"kind", kind,
				"attempt", attempt,
				"max_attempts", attempts,
				"backoff", backoff,
				"error", err)

			select {
			case <-ctx.Done():
				return zero, Transient(ctx.Err())
			case <-time.After(backoff):
			}
		}
	}

	logger.Warn("Step exhausted retries",
		"step", name,
		"attempts", attempts,
		"error", lastErr)

	return zero, fmt.Errorf("step %s failed after %d attempts: %w", name, attempts, lastErr)
}

// runAttempt executes one attempt with its own start-to-close deadline.
// A deadline overrun is classified transient so the policy can retry it.
func runAttempt[T any](ctx context.Context, timeout time.Duration, fn StepFunc[T]) (Envelope[T], error) {
	attemptCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	env, err := fn(attemptCtx)
	if err != nil {
		if attemptCtx.Err() != nil && ctx.Err() == nil {
			return env, Transient(fmt.Errorf("step timed out after %v: %w", timeout, err))
		}
		return env, err
	}
	return env, nil
}
