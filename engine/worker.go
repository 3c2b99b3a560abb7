package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mocksi/webforge/metrics"
	"github.com/mocksi/webforge/storage"
	"github.com/mocksi/webforge/workflow"
)

// ConsumerName is the durable worker consumer.
const ConsumerName = "webforge-worker"

// maxDeliver bounds redelivery of a submission whose worker died
// mid-run. The pipeline's own retry policies handle step failures.
const maxDeliver = 3

// Worker consumes queued submissions and executes pipelines.
type Worker struct {
	js        jetstream.JetStream
	registry  storage.Registry
	pipelines *workflow.Pipelines
	logger    *slog.Logger

	consumeCtx jetstream.ConsumeContext
}

// NewWorker creates a worker bound to the engine's work stream.
func NewWorker(js jetstream.JetStream, registry storage.Registry, pipelines *workflow.Pipelines, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		js:        js,
		registry:  registry,
		pipelines: pipelines,
		logger:    logger,
	}
}

// Start creates the durable consumer and begins executing submissions.
func (w *Worker) Start(ctx context.Context) error {
	consumer, err := w.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Name:          ConsumerName,
		Durable:       ConsumerName,
		FilterSubject: subjectAll,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       15 * time.Minute,
		MaxDeliver:    maxDeliver,
	})
	if err != nil {
		return fmt.Errorf("create worker consumer: %w", err)
	}

	consumeCtx, err := consumer.Consume(func(msg jetstream.Msg) {
		w.handle(context.Background(), msg)
	})
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	w.consumeCtx = consumeCtx

	w.logger.Info("Worker started", "stream", StreamName, "consumer", ConsumerName)
	return nil
}

// Stop halts consumption. In-flight pipelines run to completion.
func (w *Worker) Stop() {
	if w.consumeCtx != nil {
		w.consumeCtx.Stop()
	}
}

func (w *Worker) handle(ctx context.Context, msg jetstream.Msg) {
	var sub submission
	if err := json.Unmarshal(msg.Data(), &sub); err != nil {
		w.logger.Error("Dropping malformed submission", "error", err)
		msg.Term()
		return
	}

	kind, err := workflow.ParseKind(sub.Kind)
	if err != nil {
		w.logger.Error("Dropping submission with unknown kind",
			"task_id", sub.TaskID, "kind", sub.Kind)
		w.failTask(ctx, sub.TaskID, err.Error())
		msg.Term()
		return
	}

	w.logger.Info("Pipeline started", "task_id", sub.TaskID, "kind", kind)
	metrics.PipelineStarted(string(kind))
	start := time.Now()

	outcome := w.pipelines.Run(ctx, kind, sub.TaskID, sub.Input)

	switch outcome.Status {
	case storage.TaskStatusCompleted:
		if err := w.registry.Complete(ctx, sub.TaskID, outcome.Result); err != nil {
			w.logger.Error("Failed to persist completion",
				"task_id", sub.TaskID, "error", err)
			msg.Nak()
			return
		}
		metrics.PipelineCompleted(string(kind), time.Since(start))
	default:
		w.failTask(ctx, sub.TaskID, outcome.Error)
		metrics.PipelineFailed(string(kind))
	}

	w.logger.Info("Pipeline finished",
		"task_id", sub.TaskID,
		"kind", kind,
		"status", outcome.Status,
		"duration", time.Since(start))
	msg.Ack()
}

func (w *Worker) failTask(ctx context.Context, taskID, message string) {
	if err := w.registry.Fail(ctx, taskID, message); err != nil {
		w.logger.Error("Failed to persist failure",
			"task_id", taskID, "error", err)
	}
}
