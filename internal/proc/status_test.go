package proc

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"golang.org/x/sys/unix"
)

func TestStateStatus(t *testing.T) {
	tests := []struct {
		script string
		want   int
	}{
		{"exit 0", 0},
		{"exit 3", 3},
		{"exit 255", 255},
		{"kill -TERM $$", 128 + int(unix.SIGTERM)},
		{"kill -KILL $$", 128 + int(unix.SIGKILL)},
	}
	for _, tt := range tests {
		t.Run(tt.script, func(t *testing.T) {
			cmd := exec.Command("/bin/sh", "-c", tt.script)
			_ = cmd.Run()
			if got := StateStatus(cmd.ProcessState); got != tt.want {
				t.Errorf("StateStatus = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStateStatusNil(t *testing.T) {
	if got := StateStatus(nil); got != 1 {
		t.Errorf("StateStatus(nil) = %d, want 1", got)
	}
}

func TestErrno(t *testing.T) {
	_, statErr := os.Stat("/nonexistent/treesh/path")
	_, lookErr := exec.LookPath("treesh-no-such-program")

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"path error", statErr, int(unix.ENOENT)},
		{"not found", lookErr, int(unix.ENOENT)},
		{"wrapped errno", fmt.Errorf("open x: %w", unix.EACCES), int(unix.EACCES)},
		{"plain error", errors.New("boom"), 1},
		{"zero errno", unix.Errno(0), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Errno(tt.err); got != tt.want {
				t.Errorf("Errno(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
