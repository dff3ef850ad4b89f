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

// simple runs one command. In-process built-ins run here before any process
// is created; child built-ins run in a re-executed child; everything else is
// an external program.
func (e *Executor) simple(ctx context.Context, n *tree.Node) int {
	if b, ok := e.builtins.Lookup(n.Argv[0]); ok {
		if b.Placement() == builtin.InProcess {
			return e.inProcess(ctx, b, n.Argv[1:])
		}
		return e.isolated(ctx, ipc.RoleBuiltin, n)
	}

	return e.foreground(ctx, func() (*exec.Cmd, error) {
		return e.startExternal(ctx, n, e.stdin, e.stdout)
	})
}

// inProcess runs b in the invoking process and publishes its status.
func (e *Executor) inProcess(ctx context.Context, b builtin.Builtin, args []string) int {
	st := e.runBuiltin(ctx, b, args)
	e.sink.Publish(st)
	return st
}

func (e *Executor) runBuiltin(ctx context.Context, b builtin.Builtin, args []string) int {
	if err := b.Validate(args); err != nil {
		fmt.Fprintln(e.stderr, err)
		return 1
	}
	logging.FromContext(ctx).Debug("builtin", zap.String("name", b.Name()), zap.Strings("args", args))
	return b.Run(ctx, e, args, e.stdout, e.stderr)
}

// startExternal starts the program named by n with stdin and stdout as its
// streams unless n redirects them. Locals are added to the program's
// environment only.
func (e *Executor) startExternal(ctx context.Context, n *tree.Node, stdin, stdout *os.File) (*exec.Cmd, error) {
	in, out, closeFiles, err := redirects(n, stdin, stdout)
	if err != nil {
		return nil, err
	}
	defer closeFiles()

	cmd := exec.Command(n.Argv[0], n.Argv[1:]...)
	cmd.Stdin = in
	cmd.Stdout = out
	cmd.Stderr = e.stderr
	if len(n.Locals) > 0 {
		cmd.Env = append(os.Environ(), localEnv(n.Locals)...)
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("started", zap.Strings("argv", n.Argv), zap.Int("pid", cmd.Process.Pid))
	return cmd, nil
}

// foreground starts a process and waits for it, returning its encoded
// status. Interrupts are ignored from before the start until the process
// has been collected; the started program still gets the default action.
func (e *Executor) foreground(ctx context.Context, start func() (*exec.Cmd, error)) int {
	restore := e.signals.Ignore()
	defer restore()

	cmd, err := start()
	if err != nil {
		e.report(err)
		return proc.Errno(err)
	}
	return e.collect(ctx, cmd)
}

func (e *Executor) collect(ctx context.Context, cmd *exec.Cmd) int {
	err := cmd.Wait()
	if cmd.ProcessState == nil {
		e.report(err)
		return proc.Errno(err)
	}
	st := proc.StateStatus(cmd.ProcessState)
	logging.FromContext(ctx).Debug("exited", zap.Int("pid", cmd.Process.Pid), zap.Int("status", st))
	return st
}
