package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// BucketTasks is the KV bucket holding task records.
const BucketTasks = "WEBFORGE_TASKS"

// DefaultTaskTTL bounds registry growth: terminal records are evicted by
// the bucket's retention once the TTL elapses.
const DefaultTaskTTL = 24 * time.Hour

// KVStore is a task registry backed by NATS JetStream KV.
type KVStore struct {
	tasks jetstream.KeyValue
}

// NewKVStore creates a KV-backed registry, creating the bucket with the
// given TTL if it does not exist. A zero ttl uses DefaultTaskTTL.
func NewKVStore(ctx context.Context, js jetstream.JetStream, ttl time.Duration) (*KVStore, error) {
	if ttl <= 0 {
		ttl = DefaultTaskTTL
	}

	kv, err := js.KeyValue(ctx, BucketTasks)
	if err != nil {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      BucketTasks,
			Description: "webforge task registry",
			TTL:         ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("create tasks bucket: %w", err)
		}
	}

	return &KVStore{tasks: kv}, nil
}

// Put stores or replaces a task record.
func (s *KVStore) Put(ctx context.Context, task *Task) error {
	task.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if _, err := s.tasks.Put(ctx, task.ID, data); err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

// Get returns the task record, or ErrNotFound.
func (s *KVStore) Get(ctx context.Context, id string) (*Task, error) {
	entry, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	var t Task
	if err := json.Unmarshal(entry.Value(), &t); err != nil {
		return nil, fmt.Errorf("unmarshal task: %w", err)
	}
	return &t, nil
}

// Complete transitions the task to completed with the given result.
func (s *KVStore) Complete(ctx context.Context, id string, result json.RawMessage) error {
	return s.transition(ctx, id, func(t *Task) {
		t.Status = TaskStatusCompleted
		t.Result = result
		t.Error = ""
	})
}

// Fail transitions the task to failed with the given message.
func (s *KVStore) Fail(ctx context.Context, id string, msg string) error {
	return s.transition(ctx, id, func(t *Task) {
		t.Status = TaskStatusFailed
		t.Error = msg
		t.Result = nil
	})
}

// transition applies a terminal mutation using compare-and-swap on the KV
// revision so a concurrent write of the same key is never lost.
func (s *KVStore) transition(ctx context.Context, id string, mutate func(*Task)) error {
	entry, err := s.tasks.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("get task: %w", err)
	}

	var t Task
	if err := json.Unmarshal(entry.Value(), &t); err != nil {
		return fmt.Errorf("unmarshal task: %w", err)
	}

	if t.Status.Terminal() {
		return ErrInvalidTransition
	}

	mutate(&t)
	t.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(&t)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if _, err := s.tasks.Update(ctx, id, data, entry.Revision()); err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}
