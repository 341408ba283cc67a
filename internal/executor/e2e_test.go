package executor_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wapuda/tg-grabber/internal/executor"
	"github.com/wapuda/tg-grabber/internal/jobs"
	"github.com/wapuda/tg-grabber/internal/messenger/messengertest"
	"github.com/wapuda/tg-grabber/internal/proc"
	"github.com/wapuda/tg-grabber/internal/transcode"
	"github.com/wapuda/tg-grabber/internal/workspace"
)

// The tests below execute shell stubs through the real process runner.
// They are not parallel: running a freshly written script while other
// tests fork can fail with ETXTBSY.

func stub(t *testing.T, dir, name, body string) string {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skipf("skipped, binary sh not available: %v", err)
	}
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body), 0o755))
	return p
}

func newStubExecutor(t *testing.T, ytdlpBody, ffmpegBody string, timeout time.Duration) (*executor.Executor, fixture) {
	t.Helper()
	bin := t.TempDir()
	ytdlp := stub(t, bin, "yt-dlp", ytdlpBody)
	ffmpeg := stub(t, bin, "ffmpeg", ffmpegBody)

	f := fixture{root: filepath.Join(t.TempDir(), "root"), rec: messengertest.New()}
	runner := proc.NewRunner()
	cfg := executor.Config{YtDlpBin: ytdlp, DownloadTimeout: timeout, MaxNameBytes: 120}
	ex := executor.New(cfg, f.rec, workspace.NewManager(f.root), runner,
		transcode.NewFFmpeg(runner, ffmpeg, 10*time.Second))
	return ex, f
}

// the download stub runs inside the workspace, so relative writes land there
const writeThousandBytes = "head -c 1000 /dev/zero > video-abc123.mp4\n"

func TestEndToEndDelivered(t *testing.T) {
	ex, f := newStubExecutor(t, writeThousandBytes, "exit 1\n", time.Minute)

	out := ex.Run(context.Background(), request(false))
	require.Equal(t, jobs.Delivered, out.Kind, out.String())
	require.Equal(t, "video-abc123.mp4", filepath.Base(out.Path))
	docs := f.rec.Documents(chatID)
	require.Len(t, docs, 1)
	require.Len(t, docs[0].Content, 1000)
	f.requireClean(t)
}

func TestEndToEndTranscodeFallback(t *testing.T) {
	ex, f := newStubExecutor(t, writeThousandBytes, "echo 'Unknown encoder' 1>&2\nexit 1\n", time.Minute)

	plain := ex.Run(context.Background(), request(false))
	require.Equal(t, jobs.Delivered, plain.Kind)
	plainSends := len(f.rec.Sent(chatID))

	out := ex.Run(context.Background(), request(true))
	require.Equal(t, jobs.DeliveredWithFallback, out.Kind, out.String())
	require.Equal(t, "video-abc123.mp4", filepath.Base(out.Path))
	require.Equal(t, "Unknown encoder", out.Reason)

	// same request, one more notification: the transcode error
	require.Len(t, f.rec.Sent(chatID), 2*plainSends+1)
	docs := f.rec.Documents(chatID)
	require.Len(t, docs, 2)
	require.Len(t, docs[1].Content, 1000)
	f.requireClean(t)
}

func TestEndToEndGif(t *testing.T) {
	ex, f := newStubExecutor(t, writeThousandBytes,
		"for a; do last=$a; done\nprintf GIF89a > \"$last\"\n", time.Minute)

	out := ex.Run(context.Background(), request(true))
	require.Equal(t, jobs.Delivered, out.Kind, out.String())
	require.Equal(t, "video-abc123.gif", filepath.Base(out.Path))
	f.requireClean(t)
}

func TestEndToEndDownloadTimeout(t *testing.T) {
	ex, f := newStubExecutor(t, "sleep 30\n", "exit 1\n", 300*time.Millisecond)

	start := time.Now()
	out := ex.Run(context.Background(), request(false))
	require.Less(t, time.Since(start), 10*time.Second)
	require.Equal(t, jobs.Failed, out.Kind)
	require.Equal(t, jobs.DownloadError, out.Err.Kind)
	require.True(t, out.Err.TimedOut)
	require.Empty(t, f.rec.Documents(chatID))
	f.requireClean(t)
}

func TestEndToEndToolMissing(t *testing.T) {
	f := fixture{root: filepath.Join(t.TempDir(), "root"), rec: messengertest.New()}
	cfg := executor.Config{YtDlpBin: "grabber-no-such-yt-dlp", DownloadTimeout: time.Second, MaxNameBytes: 120}
	ex := executor.New(cfg, f.rec, workspace.NewManager(f.root), proc.NewRunner(), transcoderFunc(gifOK))

	out := ex.Run(context.Background(), request(false))
	require.Equal(t, jobs.DownloadError, out.Err.Kind)
	require.False(t, out.Err.TimedOut)
	require.Error(t, out.Err.Err)
	f.requireClean(t)
}
