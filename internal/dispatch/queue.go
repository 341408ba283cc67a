package dispatch

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/oklog/ulid/v2"

	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
)

// Queue enqueues jobs into Redis for cmd/worker. Submit returns once the
// task is stored; the job itself runs in a worker process.
type Queue struct {
	client *asynq.Client
}

func NewQueue(client *asynq.Client) *Queue {
	return &Queue{client: client}
}

func (q *Queue) Submit(ctx context.Context, req jobs.DownloadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.JobID == "" {
		req.JobID = ulid.Make().String()
	}
	b, err := jobs.EncodeDownload(req)
	if err != nil {
		return err
	}
	// jobs are never retried, the user resubmits instead
	info, err := q.client.EnqueueContext(ctx, asynq.NewTask(jobs.TaskDownload, b), asynq.MaxRetry(0), asynq.TaskID(req.JobID))
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", jobs.TaskDownload, err)
	}
	log := logx.FromCtx(logx.WithJob(ctx, req.JobID, req.ChatID))
	log.Info().
		Str("queue", info.Queue).
		Str("url", req.SourceURL).
		Msg("job enqueued")
	return nil
}

// Wait returns at once; queued jobs belong to the workers.
func (q *Queue) Wait() {}

// NewTaskHandler is the worker side of Queue.
func NewTaskHandler(runner JobRunner, tracker Tracker) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		req, err := jobs.DecodeDownload(t.Payload())
		if err != nil {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		// job failures were already reported to the chat; asynq has nothing to retry
		execute(ctx, runner, tracker, req)
		return nil
	}
}
