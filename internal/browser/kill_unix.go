//go:build !windows

package browser

import "syscall"

// killProcessGroup sends SIGKILL to the browser's whole process group so
// renderer and GPU helpers do not outlive the CLI.
func killProcessGroup(pid int) {
	// launcher.Kill runs afterwards as a fallback.
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
