package proc

import (
	"fmt"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// Completion records one collected descendant.
type Completion struct {
	PID    int
	Status int
}

// Reaper collects terminated descendants and reports each one as
// "Completed: <pid> (<status>)".
//
// It waits on any child, so callers must not hold an unwaited os/exec child
// across a Reap or WaitAll call.
type Reaper struct {
	w   io.Writer
	log *zap.Logger
}

// NewReaper returns a Reaper reporting to w. log may be nil.
func NewReaper(w io.Writer, log *zap.Logger) *Reaper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reaper{w: w, log: log}
}

// Reap collects every descendant that has already terminated without
// blocking.
func (r *Reaper) Reap() []Completion {
	return r.collect(unix.WNOHANG)
}

// WaitAll blocks until no descendants remain, collecting each one.
func (r *Reaper) WaitAll() []Completion {
	return r.collect(0)
}

func (r *Reaper) collect(options int) []Completion {
	var done []Completion
	for {
		var ws unix.WaitStatus
		pid, err := unix.Wait4(-1, &ws, options, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil || pid <= 0 {
			// ECHILD: nothing left. pid 0: nothing ready under WNOHANG.
			return done
		}
		c := Completion{PID: pid, Status: Encode(ws)}
		fmt.Fprintf(r.w, "Completed: %d (%d)\n", c.PID, c.Status)
		r.log.Debug("reaped", zap.Int("pid", c.PID), zap.Int("status", c.Status))
		done = append(done, c)
	}
}
