// Package executor runs one download job from workspace creation to cleanup.
//
// A job walks Started → Downloading → Selecting → (Transcoding) →
// Delivering → Done. Any phase may end the job as Failed. Whatever
// happens, including a panic, the workspace is released exactly once and
// the user hears about the result through the Messenger.
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/workspace"
)

// DetailLimit caps tool output shown to the user.
const DetailLimit = 1000

type Runner interface {
	Run(ctx context.Context, c proc.Command) proc.Result
}

type Transcoder interface {
	ToGif(ctx context.Context, src, dst string) (ok bool, log string)
}

type Config struct {
	YtDlpBin        string
	DownloadTimeout time.Duration
	MaxNameBytes    int
}

type Executor struct {
	cfg        Config
	msg        messenger.Messenger
	workspaces *workspace.Manager
	runner     Runner
	transcoder Transcoder
}

func New(cfg Config, msg messenger.Messenger, ws *workspace.Manager, runner Runner, tr Transcoder) *Executor {
	return &Executor{
		cfg:        cfg,
		msg:        msg,
		workspaces: ws,
		runner:     runner,
		transcoder: tr,
	}
}

// Run executes req and returns its terminal outcome. It never panics and
// never returns before the workspace is gone.
func (e *Executor) Run(ctx context.Context, req jobs.DownloadRequest) (out jobs.Outcome) {
	if req.JobID == "" {
		req.JobID = ulid.Make().String()
	}
	ctx = logx.WithJob(ctx, req.JobID, req.ChatID)
	j := &job{
		Executor: e,
		ctx:      ctx,
		log:      logx.FromCtx(ctx),
		req:      req,
	}
	started := time.Now()

	defer func() {
		if r := recover(); r != nil {
			j.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("job panicked")
			out = jobs.NewFailed(jobs.InternalError, fmt.Sprint(r), nil)
			j.send(fmt.Sprintf("Internal error: %v", r))
		}
		ev := j.log.Info()
		if out.Kind == jobs.Failed {
			ev = j.log.Warn()
		}
		ev.Str("outcome", out.Kind.String()).
			Str("detail", out.String()).
			Dur("took", time.Since(started)).
			Msg("job finished")
	}()

	j.log.Info().
		Str("url", req.SourceURL).
		Bool("gif", req.WantTranscode).
		Msg("job started")
	return j.run()
}

// job is the per-request state; it is never shared between goroutines.
type job struct {
	*Executor
	ctx    context.Context
	log    zerolog.Logger
	req    jobs.DownloadRequest
	status messenger.Handle
}

// send and setStatus swallow messenger failures and panics: a broken chat
// transport must not stop the job from cleaning up.
func (j *job) send(text string) messenger.Handle {
	var h messenger.Handle
	j.guard("send message", func() error {
		var err error
		h, err = j.msg.SendMessage(j.req.ChatID, text)
		return err
	})
	return h
}

// setStatus edits the job's status message, or sends a new one when there is none yet.
func (j *job) setStatus(text string) {
	if !j.status.Valid() {
		j.status = j.send(text)
		return
	}
	j.guard("edit status", func() error {
		return j.msg.EditMessage(j.status, text)
	})
}

func (j *job) guard(what string, f func() error) {
	defer func() {
		if r := recover(); r != nil {
			j.log.Error().Interface("panic", r).Msg(what + " panicked")
		}
	}()
	if err := f(); err != nil {
		j.log.Warn().Err(err).Msg(what + " failed")
	}
}
