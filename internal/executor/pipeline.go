package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/builtin"
	"github.com/marcelocantos/treesh/internal/ipc"
	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/proc"
	"github.com/marcelocantos/treesh/internal/tree"
)

// stages flattens nested Pipe nodes into their stages, left to right.
func stages(n *tree.Node, out []*tree.Node) []*tree.Node {
	if n.Kind != tree.KindPipe {
		return append(out, n)
	}
	out = stages(n.Left, out)
	return stages(n.Right, out)
}

// pipeline runs every stage of a pipe chain concurrently, connected by one
// pipe per adjacent pair, with interrupts ignored until the last stage is
// collected. The status is that of the rightmost stage that failed, or 0.
func (e *Executor) pipeline(ctx context.Context, n *tree.Node) int {
	nodes := stages(n, nil)
	log := logging.FromContext(ctx)

	restore := e.signals.Ignore()
	defer restore()

	readers := make([]*os.File, len(nodes)-1)
	writers := make([]*os.File, len(nodes)-1)
	closePipes := func() {
		for i := range readers {
			if readers[i] != nil {
				readers[i].Close()
			}
			if writers[i] != nil {
				writers[i].Close()
			}
		}
	}
	for i := range readers {
		r, w, err := os.Pipe()
		if err != nil {
			closePipes()
			e.report(fmt.Errorf("pipe: %w", err))
			return proc.Errno(err)
		}
		readers[i], writers[i] = r, w
	}

	cmds := make([]*exec.Cmd, len(nodes))
	statuses := make([]int, len(nodes))
	for i, stage := range nodes {
		in, out := e.stdin, e.stdout
		if i > 0 {
			in = readers[i-1]
		}
		if i < len(nodes)-1 {
			out = writers[i]
		}
		cmd, err := e.startStage(ctx, stage, in, out)
		if err != nil {
			e.report(err)
			statuses[i] = proc.Errno(err)
			continue
		}
		cmds[i] = cmd
	}
	// Every stage holds its own copies; the ends left here would keep
	// readers from seeing EOF.
	closePipes()
	log.Debug("pipeline started", zap.Int("stages", len(nodes)))

	st := 0
	for i, cmd := range cmds {
		if cmd != nil {
			statuses[i] = e.collect(ctx, cmd)
		}
		if statuses[i] != 0 {
			st = statuses[i]
		}
	}
	return st
}

// startStage starts one pipeline stage. External commands are started
// directly; built-ins and compound stages run in a re-executed child.
func (e *Executor) startStage(ctx context.Context, n *tree.Node, stdin, stdout *os.File) (*exec.Cmd, error) {
	if n.Kind != tree.KindSimple {
		return e.spawn(ctx, ipc.RoleEval, n, stdin, stdout)
	}
	if b, ok := e.builtins.Lookup(n.Argv[0]); ok {
		if b.Placement() == builtin.Child {
			return e.spawn(ctx, ipc.RoleBuiltin, n, stdin, stdout)
		}
		return e.spawn(ctx, ipc.RoleEval, n, stdin, stdout)
	}
	return e.startExternal(ctx, n, stdin, stdout)
}
