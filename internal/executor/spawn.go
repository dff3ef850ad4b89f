package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/ipc"
	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/proc"
	"github.com/marcelocantos/treesh/internal/tree"
)

// spawn starts a copy of this binary that runs n in the given role, with
// stdin and stdout as its fds 0 and 1. The task is written to a pipe the
// child inherits as ipc.TaskFD.
func (e *Executor) spawn(ctx context.Context, role ipc.Role, n *tree.Node, stdin, stdout *os.File) (*exec.Cmd, error) {
	if e.selfErr != nil {
		return nil, fmt.Errorf("locate executable: %w", e.selfErr)
	}

	r, w, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}

	cmd := exec.Command(e.self)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = e.stderr
	cmd.ExtraFiles = []*os.File{r}
	cmd.Env = ipc.ChildEnv(os.Environ())

	err = cmd.Start()
	r.Close()
	if err != nil {
		w.Close()
		return nil, err
	}

	log := logging.FromContext(ctx)
	log.Debug("spawned", zap.String("role", string(role)), zap.Stringer("node", n), zap.Int("pid", cmd.Process.Pid))

	task := ipc.Task{
		Role:      role,
		Node:      n,
		StatusVar: e.statusVar,
		HomeVar:   e.homeVar,
		LogLevel:  e.logLevel,
		RunID:     logging.RunID(ctx),
	}
	if err := ipc.SendTask(w, task); err != nil {
		// The child fails on the short read and exits with a status.
		log.Warn("send task", zap.Int("pid", cmd.Process.Pid), zap.Error(err))
	}
	w.Close()
	return cmd, nil
}

// isolated runs n in a child process in the given role and waits for it.
func (e *Executor) isolated(ctx context.Context, role ipc.Role, n *tree.Node) int {
	return e.foreground(ctx, func() (*exec.Cmd, error) {
		return e.spawn(ctx, role, n, e.stdin, e.stdout)
	})
}

// background starts n.Left in a child without waiting for it, then runs
// n.Right if present.
func (e *Executor) background(ctx context.Context, n *tree.Node) int {
	cmd, err := e.spawn(ctx, ipc.RoleEval, n.Left, e.stdin, e.stdout)
	if err != nil {
		e.report(err)
		return proc.Errno(err)
	}
	fmt.Fprintf(e.stderr, "Backgrounded: %d\n", cmd.Process.Pid)
	// The reaper collects it; os/exec must not.
	_ = cmd.Process.Release()

	e.sink.Publish(0)
	if n.Right != nil {
		return e.eval(ctx, n.Right, frame{})
	}
	return 0
}
