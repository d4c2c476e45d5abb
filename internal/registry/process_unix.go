//go:build !windows

package registry

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// processAlive sends signal 0, which checks existence without delivering
// anything. EPERM means the process exists under another user.
func processAlive(pid int) bool {
	err := syscall.Kill(pid, syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func terminate(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return proc.Signal(syscall.SIGTERM)
}

// Detach starts cmd in its own session so it outlives the parent terminal.
func Detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
