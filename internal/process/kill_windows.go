//go:build windows

// Package process terminates a launched browser together with its children.
package process

import (
	"os/exec"
	"strconv"
)

// KillProcessGroup force-kills pid and its process tree with taskkill.
// Errors are ignored: the launcher's own Kill runs afterwards.
func KillProcessGroup(pid int) {
	// #nosec G204 -- pid is formatted from an int
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
