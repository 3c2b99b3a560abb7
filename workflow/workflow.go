// Package workflow defines the five pipeline orchestrators. Each
// pipeline is a strict sequence of retried steps; any unrecovered step
// error is converted at the pipeline boundary into a failed outcome
// echoing the original input, never a raw error to the caller.
package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mocksi/webforge/activity"
	"github.com/mocksi/webforge/pipeline"
	"github.com/mocksi/webforge/storage"
)

// Kind identifies a pipeline.
type Kind string

const (
	KindReverse    Kind = "reverse"
	KindScreenshot Kind = "screenshot"
	KindAnalyze    Kind = "analyze"
	KindTechSpec   Kind = "tech-spec"
	KindWebsite    Kind = "generate-website"
)

// ParseKind validates a pipeline kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindReverse, KindScreenshot, KindAnalyze, KindTechSpec, KindWebsite:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown pipeline kind %q", s)
	}
}

// Outcome is the terminal shape of every pipeline run: completed with a
// structured result, or failed with an error message and the original
// input echoed back.
type Outcome struct {
	Status storage.TaskStatus `json:"status"`
	Result json.RawMessage    `json:"result,omitempty"`
	Error  string             `json:"error,omitempty"`
	Input  string             `json:"input,omitempty"`
}

// Step retry policies and start-to-close timeouts.
var (
	reversePolicy = pipeline.DefaultRetryPolicy().
			WithAttempts(3).
			WithIntervals(1*time.Second, 10*time.Second)

	browserPolicy = pipeline.DefaultRetryPolicy().
			WithAttempts(3).
			WithIntervals(2*time.Second, 20*time.Second)

	aiPolicy = pipeline.DefaultRetryPolicy().
			WithAttempts(2).
			WithIntervals(3*time.Second, 30*time.Second)

	techSpecPolicy = pipeline.DefaultRetryPolicy().
			WithAttempts(3).
			WithIntervals(3*time.Second, 30*time.Second)

	frontendPolicy = pipeline.DefaultRetryPolicy().
			WithAttempts(2).
			WithIntervals(2*time.Second, 20*time.Second)

	logPolicy = pipeline.DefaultRetryPolicy().WithAttempts(1)
)

const (
	reverseTimeout  = 30 * time.Second
	browserTimeout  = 2 * time.Minute
	aiTimeout       = 3 * time.Minute
	techSpecTimeout = 3 * time.Minute
	frontendTimeout = 1 * time.Minute
	logTimeout      = 10 * time.Second
)

// Pipelines executes the orchestrators against an activity set.
type Pipelines struct {
	activities *activity.Activities
	logger     *slog.Logger
}

// New creates the pipeline set.
func New(activities *activity.Activities, logger *slog.Logger) *Pipelines {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipelines{activities: activities, logger: logger}
}

// Run executes the pipeline identified by kind. The returned outcome is
// always terminal; Run never returns an error.
func (p *Pipelines) Run(ctx context.Context, kind Kind, taskID, input string) Outcome {
	switch kind {
	case KindReverse:
		return p.runReverse(ctx, taskID, input)
	case KindScreenshot:
		return p.runScreenshot(ctx, input)
	case KindAnalyze:
		return p.runAnalyze(ctx, input)
	case KindTechSpec:
		return p.runTechSpec(ctx, input)
	case KindWebsite:
		return p.runWebsite(ctx, input)
	default:
		return p.fail(input, fmt.Errorf("unknown pipeline kind %q", kind))
	}
}

func (p *Pipelines) fail(input string, err error) Outcome {
	return Outcome{
		Status: storage.TaskStatusFailed,
		Error:  err.Error(),
		Input:  input,
	}
}

func (p *Pipelines) complete(input string, result any) Outcome {
	data, err := json.Marshal(result)
	if err != nil {
		return p.fail(input, fmt.Errorf("encoding pipeline result: %w", err))
	}
	return Outcome{
		Status: storage.TaskStatusCompleted,
		Result: data,
	}
}
