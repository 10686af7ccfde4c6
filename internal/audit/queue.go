package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
)

const (
	// TaskAppend is the asynq task type carrying one audit record.
	TaskAppend = "audit:append"
	// QueueName is the asynq queue audit writes are enqueued on.
	QueueName = "audit"
)

// NewAppendTask wraps rec in an asynq task. Audit writes are never retried.
func NewAppendTask(rec Record) (*asynq.Task, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode audit record: %w", err)
	}
	return asynq.NewTask(TaskAppend, payload, asynq.MaxRetry(0), asynq.Queue(QueueName)), nil
}

// Enqueuer is the subset of asynq.Client used by QueueSink.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueueSink hands records to the audit worker instead of writing them inline.
type QueueSink struct {
	client Enqueuer
}

// NewQueueSink constructs a sink backed by an asynq client.
func NewQueueSink(client Enqueuer) *QueueSink {
	return &QueueSink{client: client}
}

// Append enqueues rec.
func (q *QueueSink) Append(ctx context.Context, rec Record) error {
	task, err := NewAppendTask(rec)
	if err != nil {
		return err
	}
	if _, err := q.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("enqueue audit record: %w", err)
	}
	return nil
}

// AppendJob drains queued records into a Sink.
type AppendJob struct {
	sink   Sink
	logger *slog.Logger
}

// NewAppendJob constructs the worker side of the queue sink.
func NewAppendJob(sink Sink, logger *slog.Logger) *AppendJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AppendJob{sink: sink, logger: logger}
}

// Handle persists the record carried by task.
func (j *AppendJob) Handle(ctx context.Context, task *asynq.Task) error {
	var rec Record
	if err := json.Unmarshal(task.Payload(), &rec); err != nil {
		return fmt.Errorf("decode audit record: %v: %w", err, asynq.SkipRetry)
	}
	if err := j.sink.Append(ctx, rec); err != nil {
		j.logger.Error("audit append job failed",
			slog.Any("error", err),
			slog.String("action", rec.Action),
			slog.String("resource", rec.Resource),
		)
		return err
	}
	return nil
}
