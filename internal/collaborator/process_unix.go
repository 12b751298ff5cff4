//go:build unix

package collaborator

import (
	"os/exec"
	"syscall"

	"github.com/Iron-Ham/uniq/internal/errors"
)

// The runner forks the python server, so the collaborator gets its own
// process group and kills target the whole group.
func configureProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return cmd.Process.Kill()
	}
	return err
}
