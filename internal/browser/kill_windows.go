//go:build windows

package browser

import (
	"os/exec"
	"strconv"
)

// killProcessGroup terminates the browser and its children with taskkill.
func killProcessGroup(pid int) {
	_ = exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run() // #nosec G204 -- pid is numeric
}
