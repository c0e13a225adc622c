//go:build !windows

package executor

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// configureProcessGroup places the shell in its own group so cancellation
// reaches every child it spawned.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil || cmd.Process.Pid <= 0 {
			return nil
		}
		if pgid, err := unix.Getpgid(cmd.Process.Pid); err == nil && pgid > 0 {
			return unix.Kill(-pgid, unix.SIGKILL)
		}
		return cmd.Process.Kill()
	}
}
