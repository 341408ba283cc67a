//go:build unix

package proc

import (
	"os/exec"
	"syscall"
)

// isolate puts the tool into its own process group so the deadline kill
// reaches everything it spawned (yt-dlp runs ffmpeg for merging).
func isolate(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}

func reap(cmd *exec.Cmd) {
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
