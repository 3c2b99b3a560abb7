// Package engine is the execution substrate: pipeline submissions are
// published to a JetStream work stream and executed by worker consumers,
// with terminal outcomes persisted to the task registry. Submissions
// survive process restarts; a task accepted before a crash is picked up
// by the next worker.
package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

// Stream layout.
const (
	StreamName    = "WEBFORGE_WORK"
	subjectPrefix = "webforge.task."
	subjectAll    = "webforge.task.>"
)

// DefaultResultWait bounds how long a status query waits for a terminal
// record before reporting the task as still running.
const DefaultResultWait = 100 * time.Millisecond

// submission is the wire form of one queued pipeline run.
type submission struct {
	TaskID string `json:"task_id"`
	Kind   string `json:"kind"`
	Input  string `json:"input"`
}

// Engine accepts pipeline submissions and answers status queries.
type Engine struct {
	js       jetstream.JetStream
	registry storage.Registry
	logger   *slog.Logger
}

// New creates the engine and ensures the work stream exists.
func New(ctx context.Context, js jetstream.JetStream, registry storage.Registry, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	_, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{subjectAll},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		return nil, fmt.Errorf("create work stream: %w", err)
	}

	return &Engine{js: js, registry: registry, logger: logger}, nil
}

// Start registers a running task and queues the pipeline for execution.
func (e *Engine) Start(ctx context.Context, kind workflow.Kind, input string) (*Handle, error) {
	task := storage.NewTask(string(kind), input)
	if err := e.registry.Put(ctx, task); err != nil {
		return nil, fmt.Errorf("register task: %w", err)
	}

	data, err := json.Marshal(submission{
		TaskID: task.ID,
		Kind:   string(kind),
		Input:  input,
	})
	if err != nil {
		return nil, fmt.Errorf("encode submission: %w", err)
	}

	subject := subjectPrefix + string(kind)
	if _, err := e.js.Publish(ctx, subject, data); err != nil {
		// The registry record stays behind as a running task that no
		// worker will ever resolve; fail it so pollers see the truth.
		if failErr := e.registry.Fail(ctx, task.ID, "submission was not accepted by the work stream"); failErr != nil {
			e.logger.Error("Failed to mark unqueued task as failed",
				"task_id", task.ID, "error", failErr)
		}
		return nil, fmt.Errorf("queue submission: %w", err)
	}

	e.logger.Info("Pipeline submitted", "task_id", task.ID, "kind", kind)

	return &Handle{engine: e, TaskID: task.ID}, nil
}

// Task returns the current record for a task id.
func (e *Engine) Task(ctx context.Context, id string) (*storage.Task, error) {
	return e.registry.Get(ctx, id)
}

// Submit starts a pipeline and returns the task id.
func (e *Engine) Submit(ctx context.Context, kind workflow.Kind, input string) (string, error) {
	handle, err := e.Start(ctx, kind, input)
	if err != nil {
		return "", err
	}
	return handle.TaskID, nil
}

// Status returns the task record after a bounded wait for a terminal
// state. It never blocks on pipeline completion.
func (e *Engine) Status(ctx context.Context, id string, maxWait time.Duration) (*storage.Task, error) {
	handle := &Handle{engine: e, TaskID: id}
	return handle.Result(ctx, maxWait)
}

// Handle refers to one submitted pipeline run.
type Handle struct {
	engine *Engine
	TaskID string
}

// Result waits up to maxWait for a terminal record. A still-running task
// is returned as-is; callers must not block on pipeline completion.
func (h *Handle) Result(ctx context.Context, maxWait time.Duration) (*storage.Task, error) {
	if maxWait <= 0 {
		maxWait = DefaultResultWait
	}
	deadline := time.Now().Add(maxWait)

	for {
		task, err := h.engine.registry.Get(ctx, h.TaskID)
		if err != nil {
			return nil, err
		}
		if task.Status.Terminal() || time.Now().After(deadline) {
			return task, nil
		}

		select {
		case <-ctx.Done():
			return task, nil
		case <-time.After(10 * time.Millisecond):
		}
	}
}
