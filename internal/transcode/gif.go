// Package transcode converts downloaded media with ffmpeg.
package transcode

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wapuda/tg-grabber/internal/logx"
	"github.com/wapuda/tg-grabber/internal/proc"
)

const (
	DefaultFPS   = 12
	DefaultScale = "640:-1"
)

type Runner interface {
	Run(ctx context.Context, c proc.Command) proc.Result
}

type FFmpeg struct {
	Bin     string
	Timeout time.Duration
	FPS     int
	Scale   string
	runner  Runner
}

func NewFFmpeg(runner Runner, bin string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		Bin:     bin,
		Timeout: timeout,
		FPS:     DefaultFPS,
		Scale:   DefaultScale,
		runner:  runner,
	}
}

func GifArgs(src, dst string, fps int, scale string) []string {
	return []string{
		"-y",
		"-i", src,
		"-vf", fmt.Sprintf("fps=%d,scale=%s:flags=lanczos", fps, scale),
		"-gifflags", "-transdiff",
		"-f", "gif",
		dst,
	}
}

// ToGif reports success and the combined tool output (stdout then stderr).
func (f *FFmpeg) ToGif(ctx context.Context, src, dst string) (bool, string) {
	log := logx.FromCtx(ctx)
	res := f.runner.Run(ctx, proc.Command{
		Path:    f.Bin,
		Args:    GifArgs(src, dst, f.FPS, f.Scale),
		Timeout: f.Timeout,
		Stderr:  logx.NewLineWriter(log, map[string]string{"tool": "ffmpeg"}, zerolog.DebugLevel),
	})
	out := res.Stdout + res.Stderr
	switch {
	case res.Err != nil:
		return false, fmt.Sprintf("%s: %v\n%s", f.Bin, res.Err, out)
	case res.TimedOut:
		return false, fmt.Sprintf("%s timed out after %s\n%s", f.Bin, f.Timeout, out)
	case res.ExitStatus != 0:
		return false, out
	}
	return true, out
}
