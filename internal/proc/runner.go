// Package proc runs external tools with a deadline and captures what they print.
package proc

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/wapuda/tg-grabber/internal/logx"
)

const defaultWaitDelay = 5 * time.Second

type Command struct {
	Path    string
	Args    []string
	Dir     string
	Env     []string // appended to the current environment
	Timeout time.Duration
	// Stderr, when set, receives a copy of the stderr stream as it is produced.
	Stderr io.Writer
}

// Result of one finished process. ExitStatus is -1 when the process was
// never started or was killed by a signal.
type Result struct {
	Path       string
	Args       []string
	ExitStatus int
	Stdout     string
	Stderr     string
	TimedOut   bool
	Started    time.Time
	Stopped    time.Time
	// Err is set when the process could not be run at all (not found,
	// permission) or the parent context was canceled. A nonzero exit is
	// not an error here, inspect ExitStatus.
	Err error
}

func (r Result) OK() bool {
	return r.Err == nil && !r.TimedOut && r.ExitStatus == 0
}

// Runner spawns one process per Run call and never retries.
type Runner struct {
	waitDelay time.Duration
}

func NewRunner() *Runner {
	return &Runner{waitDelay: defaultWaitDelay}
}

func (r *Runner) Run(ctx context.Context, c Command) Result {
	log := logx.FromCtx(ctx)
	res := Result{
		Path:       c.Path,
		Args:       append([]string(nil), c.Args...),
		ExitStatus: -1,
	}

	if c.Timeout <= 0 {
		log.Warn().Str("path", c.Path).Msg("command has no timeout")
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, c.Stderr)
	}
	cmd.WaitDelay = r.waitDelay
	isolate(cmd)

	res.Started = time.Now().UTC()
	err := cmd.Run()
	res.Stopped = time.Now().UTC()
	if cmd.Process != nil {
		// children left behind by the tool die with it
		reap(cmd)
	}
	if f, ok := c.Stderr.(interface{ Flush() }); ok {
		f.Flush()
	}

	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if cmd.ProcessState != nil {
		res.ExitStatus = cmd.ProcessState.ExitCode()
	}

	if c.Timeout > 0 && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		res.TimedOut = true
		log.Warn().Str("path", c.Path).Dur("timeout", c.Timeout).Msg("command timed out, killed")
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.As(err, &exitErr):
	case errors.Is(err, exec.ErrWaitDelay):
		// the tool exited but a descendant kept its pipes open
		log.Warn().Str("path", c.Path).Msg("output pipes held open after exit")
	default:
		res.Err = err
	}
	log.Debug().
		Str("path", c.Path).
		Int("exit", res.ExitStatus).
		Dur("took", res.Stopped.Sub(res.Started)).
		Msg("command finished")
	return res
}
