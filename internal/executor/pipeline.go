package executor

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wapuda/tg-grabber/internal/artifact"
	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/messenger"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/workspace"
	"github.com/wapuda/tg-grabber/internal/ytdlp"
)

const (
	captionDone     = "Done"
	captionGif      = "GIF"
	captionFallback = "Could not convert to GIF, sending the original."
)

func (j *job) run() jobs.Outcome {
	j.setStatus("Starting download: " + j.req.SourceURL)

	ws, err := j.workspaces.Acquire(j.req.JobID)
	if err != nil {
		j.setStatus(fmt.Sprintf("Could not prepare a workspace: %v", err))
		return jobs.NewFailed(jobs.WorkspaceError, "", err)
	}
	defer j.workspaces.Release(j.ctx, ws)

	if out, ok := j.download(ws); !ok {
		return out
	}

	a, out, ok := j.selectArtifact(ws)
	if !ok {
		return out
	}
	j.setStatus(fmt.Sprintf("Downloaded: %s\nSize: %d bytes\nSending...", a.Name(), a.Size))

	if !j.req.WantTranscode {
		return j.deliver(a.Path, captionDone)
	}
	return j.transcodeAndDeliver(ws, a)
}

func (j *job) download(ws *workspace.Workspace) (jobs.Outcome, bool) {
	tool := filepath.Base(j.cfg.YtDlpBin)
	j.setStatus(fmt.Sprintf("Querying %s...", tool))
	j.log.Info().Str("workspace", ws.Path).Msg("downloading")

	res := j.runner.Run(j.ctx, proc.Command{
		Path: j.cfg.YtDlpBin,
		Args: ytdlp.Args(ytdlp.Options{
			URL:          j.req.SourceURL,
			OutDir:       ws.Path,
			CookiesFile:  j.req.CredentialPath,
			MaxNameBytes: j.cfg.MaxNameBytes,
		}),
		Dir:     ws.Path,
		Timeout: j.cfg.DownloadTimeout,
		Stderr:  logx.NewLineWriter(j.log, map[string]string{"tool": tool}, zerolog.DebugLevel),
	})
	if res.OK() {
		return jobs.Outcome{}, true
	}

	var label, detail string
	switch {
	case res.TimedOut:
		label = "timeout"
		detail = fmt.Sprintf("%s timed out after %s.", tool, j.cfg.DownloadTimeout)
	case res.Err != nil:
		label = "could not start"
		detail = res.Err.Error()
	default:
		label = fmt.Sprintf("exit status %d", res.ExitStatus)
		detail = messenger.Clip(res.Stderr, DetailLimit)
	}
	j.setStatus(fmt.Sprintf("%s error: %s\n\nstderr:\n%s", tool, label, detail))
	out := jobs.NewFailed(jobs.DownloadError, detail, res.Err)
	out.Err.TimedOut = res.TimedOut
	return out, false
}

func (j *job) selectArtifact(ws *workspace.Workspace) (artifact.Artifact, jobs.Outcome, bool) {
	a, err := artifact.Select(ws.Path)
	switch {
	case errors.Is(err, artifact.ErrNotFound):
		j.setStatus(fmt.Sprintf("%s finished but produced no file.", filepath.Base(j.cfg.YtDlpBin)))
		return a, jobs.NewFailed(jobs.NoArtifact, "", err), false
	case err != nil:
		j.setStatus(fmt.Sprintf("Could not read the workspace: %v", err))
		return a, jobs.NewFailed(jobs.WorkspaceError, "", err), false
	}

	if n, err := artifact.Normalize(a, j.cfg.MaxNameBytes); err != nil {
		j.log.Warn().Err(err).Str("file", a.Path).Msg("keeping unsanitized name")
	} else {
		a = n
	}
	j.log.Info().Str("file", a.Name()).Int64("size", a.Size).Msg("artifact selected")
	return a, jobs.Outcome{}, true
}

func (j *job) transcodeAndDeliver(ws *workspace.Workspace, a artifact.Artifact) jobs.Outcome {
	gifPath := gifPathFor(ws.Path, a.Path)
	ok, tlog := j.transcoder.ToGif(j.ctx, a.Path, gifPath)
	if ok {
		return j.deliver(gifPath, captionGif)
	}

	reason := lastLine(tlog)
	j.log.Warn().Str("reason", reason).Msg("gif conversion failed, sending original")
	j.send("GIF conversion failed:\n" + messenger.Clip(tlog, DetailLimit))
	out := j.deliver(a.Path, captionFallback)
	if out.Kind == jobs.Failed {
		return out
	}
	return jobs.NewFallback(a.Path, reason)
}

// deliver does not retry; a failed upload is reported and ends the job.
func (j *job) deliver(path, caption string) jobs.Outcome {
	if err := j.msg.SendDocument(j.req.ChatID, path, caption); err != nil {
		j.send(fmt.Sprintf("Failed to send the file: %v", err))
		return jobs.NewFailed(jobs.DeliveryError, "", err)
	}
	return jobs.NewDelivered(path)
}

func gifPathFor(dir, src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	p := filepath.Join(dir, stem+".gif")
	if p == src {
		p = filepath.Join(dir, stem+".converted.gif")
	}
	return p
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return "transcoder failed without output"
}
