package executor

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/ipc"
	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/proc"
)

// Child runs the task a parent shell handed to this process. ok is false
// when the process was not started as a child, and the caller continues its
// normal startup. Otherwise the caller must exit with status.
//
// Child must be the first thing main (or TestMain) does.
func Child() (status int, ok bool) {
	if !ipc.TakeChildMarker() {
		return 0, false
	}

	f := os.NewFile(ipc.TaskFD, "task")
	task, err := ipc.ReceiveTask(f)
	f.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "treesh: %v\n", err)
		return 1, true
	}

	log, err := logging.New(task.LogLevel)
	if err != nil {
		log = zap.NewNop()
	}
	defer log.Sync()
	ctx := logging.WithRun(context.Background(), log, task.RunID)

	e := New(Options{
		StatusVar: task.StatusVar,
		HomeVar:   task.HomeVar,
		LogLevel:  task.LogLevel,
		Logger:    log,
	})
	return e.runTask(ctx, task), true
}

func (e *Executor) runTask(ctx context.Context, task ipc.Task) int {
	n := task.Node
	switch task.Role {
	case ipc.RoleSubshell:
		if err := install(n); err != nil {
			e.report(err)
			return proc.Errno(err)
		}
		return e.eval(ctx, n.Left, frame{})

	case ipc.RoleBuiltin:
		if err := install(n); err != nil {
			e.report(err)
			return proc.Errno(err)
		}
		b, ok := e.builtins.Lookup(n.Argv[0])
		if !ok {
			e.report(fmt.Errorf("%s: not a builtin", n.Argv[0]))
			return 1
		}
		st := e.runBuiltin(ctx, b, n.Argv[1:])
		e.sink.Publish(st)
		return st

	default:
		return e.eval(ctx, n, frame{})
	}
}
