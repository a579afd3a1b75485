//go:build unix

package translation

import (
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the tool in its own process group so a timeout
// kills everything it spawned (npx forks the real CLI).
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		if cmd.Process == nil {
			return nil
		}
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
