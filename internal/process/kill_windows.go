//go:build windows

package process

import (
	"os/exec"
	"strconv"
)

// Terminate kills pid and its child processes (/T) forcefully (/F).
func Terminate(pid int) error {
	if pid <= 0 {
		return ErrInvalidPID
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is an integer
}
