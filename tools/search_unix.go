//go:build unix

package tools

import "syscall"

// isProcessRunning checks if a process with given PID is running on Unix systems
func isProcessRunning(pid int) bool {
	// Signal 0 delivers nothing; it only checks whether the process can be
	// signalled at all
	err := syscall.Kill(pid, syscall.Signal(0))

	if err == nil {
		return true
	}

	if err == syscall.ESRCH {
		// ESRCH = "no such process"
		return false
	}

	if err == syscall.EPERM {
		// EPERM = the process exists but belongs to someone else;
		// still counts as running for lock purposes
		return true
	}

	// Any other error, assume process is not running
	return false
}
