package dispatch

import (
	"context"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
)

// Inline runs every job on its own goroutine inside this process.
//
// There is no bound on concurrent jobs: a burst of requests starts a burst
// of yt-dlp processes. DISPATCH_MODE=queue moves jobs to workers with a
// fixed concurrency when that matters.
type Inline struct {
	runner  JobRunner
	tracker Tracker
	// OnOutcome, when set, observes each finished job.
	OnOutcome func(jobs.DownloadRequest, jobs.Outcome)

	g errgroup.Group // no SetLimit: Go must never block Submit
}

func NewInline(runner JobRunner, tracker Tracker) *Inline {
	return &Inline{runner: runner, tracker: tracker}
}

func (d *Inline) Submit(ctx context.Context, req jobs.DownloadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if req.JobID == "" {
		req.JobID = ulid.Make().String()
	}
	log := logx.FromCtx(logx.WithJob(ctx, req.JobID, req.ChatID))
	log.Info().
		Str("url", req.SourceURL).
		Msg("job submitted")
	d.g.Go(func() error {
		out := execute(ctx, d.runner, d.tracker, req)
		if d.OnOutcome != nil {
			d.OnOutcome(req, out)
		}
		return nil
	})
	return nil
}

func (d *Inline) Wait() {
	_ = d.g.Wait()
}
