package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
	err   error
}

func (f *fakeEnqueuer) EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "1", Type: task.Type(), Queue: QueueName}, nil
}

func sampleRecord() Record {
	id := int64(12)
	return Record{
		UserID:     4,
		Action:     "PUT",
		Resource:   "/api/tasks/{id}",
		ResourceID: &id,
		Allowed:    true,
		Timestamp:  time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
	}
}

func TestQueueSinkRoundTripsThroughAppendJob(t *testing.T) {
	enq := &fakeEnqueuer{}
	require.NoError(t, NewQueueSink(enq).Append(context.Background(), sampleRecord()))
	require.Len(t, enq.tasks, 1)
	assert.Equal(t, TaskAppend, enq.tasks[0].Type())

	sink := &memorySink{}
	job := NewAppendJob(sink, nil)
	require.NoError(t, job.Handle(context.Background(), enq.tasks[0]))

	records := sink.all()
	require.Len(t, records, 1)
	assert.Equal(t, sampleRecord(), records[0])
}

func TestQueueSinkPropagatesEnqueueError(t *testing.T) {
	enq := &fakeEnqueuer{err: errors.New("redis unavailable")}
	err := NewQueueSink(enq).Append(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "enqueue audit record")
}

func TestAppendJobSkipsRetryOnBadPayload(t *testing.T) {
	job := NewAppendJob(&memorySink{}, nil)
	err := job.Handle(context.Background(), asynq.NewTask(TaskAppend, []byte("{not json")))
	require.Error(t, err)
	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestAppendJobReturnsSinkError(t *testing.T) {
	job := NewAppendJob(&memorySink{err: errors.New("insert failed")}, nil)
	task, err := NewAppendTask(sampleRecord())
	require.NoError(t, err)
	assert.EqualError(t, job.Handle(context.Background(), task), "insert failed")
}
