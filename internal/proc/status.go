// Package proc holds the process-level primitives shared by the executor:
// status encoding, errno extraction, interrupt disposition and the reaper.
package proc

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// Encode converts a wait status into a shell status: the exit code for a
// normal exit, 128 plus the signal number when the process was killed.
func Encode(ws unix.WaitStatus) int {
	switch {
	case ws.Exited():
		return ws.ExitStatus()
	case ws.Signaled():
		return 128 + int(ws.Signal())
	case ws.Stopped():
		return 128 + int(ws.StopSignal())
	}
	return 1
}

// StateStatus encodes the status of a process reaped by os/exec.
func StateStatus(ps *os.ProcessState) int {
	if ps == nil {
		return 1
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		return Encode(unix.WaitStatus(ws))
	}
	return ps.ExitCode()
}

// Errno returns the OS error number carried by err, for use as a status.
// A program that cannot be found maps to ENOENT; errors without an errno
// map to 1.
func Errno(err error) int {
	if errors.Is(err, exec.ErrNotFound) {
		return int(unix.ENOENT)
	}
	var errno unix.Errno
	if errors.As(err, &errno) && errno != 0 {
		return int(errno)
	}
	return 1
}
