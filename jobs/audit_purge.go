package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

// TaskAuditPurge removes audit records older than the retention window.
const TaskAuditPurge = "audit:purge"

// AuditPurger deletes audit records that occurred before a cutoff.
type AuditPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// NewAuditPurgeTask builds the scheduled purge task.
func NewAuditPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskAuditPurge, nil, asynq.Queue(QueueDefault), asynq.MaxRetry(3))
}

// AuditPurgeJob enforces audit retention.
type AuditPurgeJob struct {
	purger    AuditPurger
	retention time.Duration
	logger    *slog.Logger
	clock     func() time.Time
}

// NewAuditPurgeJob initialises the purge handler.
func NewAuditPurgeJob(purger AuditPurger, retention time.Duration, logger *slog.Logger) *AuditPurgeJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditPurgeJob{
		purger:    purger,
		retention: retention,
		logger:    logger,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle deletes everything older than now minus the retention window.
func (j *AuditPurgeJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.purger == nil {
		return errors.New("audit purge: handler not configured")
	}
	if j.retention <= 0 {
		return nil
	}
	cutoff := j.clock().Add(-j.retention)
	n, err := j.purger.PurgeBefore(ctx, cutoff)
	if err != nil {
		j.logger.Error("audit purge failed", slog.Any("error", err), slog.Time("cutoff", cutoff))
		return err
	}
	j.logger.Info("audit purge complete", slog.Int64("deleted", n), slog.Time("cutoff", cutoff))
	return nil
}
