// Package dispatch starts jobs without making the caller wait for them.
package dispatch

import (
	"context"
	"time"

	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
)

type Dispatcher interface {
	// Submit hands req off and returns; it never waits for the job.
	Submit(ctx context.Context, req jobs.DownloadRequest) error
	// Wait blocks until jobs started by this process are finished.
	Wait()
}

type JobRunner interface {
	Run(ctx context.Context, req jobs.DownloadRequest) jobs.Outcome
}

// Tracker counts in-flight jobs; done must be called once when the job ends.
type Tracker interface {
	Begin(ctx context.Context, chatID int64) (done func())
}

// execute runs one job to its end. Jobs are not cancelable once
// submitted, so the caller's cancellation is detached here.
func execute(ctx context.Context, runner JobRunner, tracker Tracker, req jobs.DownloadRequest) jobs.Outcome {
	ctx = context.WithoutCancel(ctx)
	if tracker != nil {
		done := tracker.Begin(ctx, req.ChatID)
		defer done()
	}
	start := time.Now()
	out := runner.Run(ctx, req)
	log := logx.FromCtx(logx.WithJob(ctx, req.JobID, req.ChatID))
	log.Debug().Str("outcome", out.Kind.String()).Dur("took", time.Since(start)).Msg("dispatch: job returned")
	return out
}
