//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// Terminate sends SIGKILL to the process group led by pid so that Chrome's
// helper processes die with it. A group that is already gone is not an error.
func Terminate(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	err := syscall.Kill(-pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
