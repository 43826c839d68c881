//go:build windows

package tools

import (
	"os"
	"syscall"
)

// isProcessRunning checks if a process with given PID is running on Windows
func isProcessRunning(pid int) bool {
	// syscall.Kill does not exist on Windows, and os.FindProcess succeeds
	// for any PID there, so probe with OpenProcess instead

	const da = syscall.STANDARD_RIGHTS_READ | syscall.PROCESS_QUERY_INFORMATION | syscall.SYNCHRONIZE

	h, err := syscall.OpenProcess(da, false, uint32(pid))
	if err != nil {
		// Cannot open the process: it is gone or inaccessible
		return false
	}
	syscall.CloseHandle(h)

	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	proc.Release()

	return true
}
