// Package executor evaluates command trees: it starts processes, wires
// pipes and redirections, toggles interrupt handling around waits and
// computes exit statuses.
package executor

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/builtin"
	"github.com/marcelocantos/treesh/internal/ipc"
	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/proc"
	"github.com/marcelocantos/treesh/internal/status"
	"github.com/marcelocantos/treesh/internal/tree"
)

// DefaultHomeVar is the variable cd reads when given no argument.
const DefaultHomeVar = "HOME"

// Options configures an Executor. Zero values select the process defaults.
type Options struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File

	Builtins *builtin.Registry
	Sink     status.Sink
	Signals  proc.Signals
	Logger   *zap.Logger

	StatusVar string // variable published by the default sink
	HomeVar   string // variable read by cd
	LogLevel  string // level for the logger of child processes

	// Self is the binary started to evaluate a subtree in its own process.
	// Defaults to os.Executable.
	Self string
}

// Executor evaluates command trees. It is not safe for concurrent use: the
// interrupt disposition, working directory and reaping are process-wide.
type Executor struct {
	stdin, stdout, stderr *os.File

	builtins *builtin.Registry
	sink     status.Sink
	signals  proc.Signals
	reaper   *proc.Reaper
	log      *zap.Logger

	statusVar string
	homeVar   string
	logLevel  string

	self    string
	selfErr error
}

var _ builtin.Host = (*Executor)(nil)

// New returns an Executor for opts.
func New(opts Options) *Executor {
	e := &Executor{
		stdin:     opts.Stdin,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		builtins:  opts.Builtins,
		sink:      opts.Sink,
		signals:   opts.Signals,
		log:       opts.Logger,
		statusVar: opts.StatusVar,
		homeVar:   opts.HomeVar,
		logLevel:  opts.LogLevel,
		self:      opts.Self,
	}
	if e.stdin == nil {
		e.stdin = os.Stdin
	}
	if e.stdout == nil {
		e.stdout = os.Stdout
	}
	if e.stderr == nil {
		e.stderr = os.Stderr
	}
	if e.builtins == nil {
		e.builtins = builtin.Defaults()
	}
	if e.statusVar == "" {
		e.statusVar = status.DefaultVar
	}
	if e.homeVar == "" {
		e.homeVar = DefaultHomeVar
	}
	if e.sink == nil {
		e.sink = status.NewEnvSink(e.statusVar)
	}
	if e.signals == nil {
		e.signals = proc.Interrupts{}
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.self == "" {
		e.self, e.selfErr = os.Executable()
	}
	e.reaper = proc.NewReaper(e.stderr, e.log)
	return e
}

// Run evaluates n as a top-level tree and publishes its status.
func (e *Executor) Run(ctx context.Context, n *tree.Node) int {
	if err := n.Validate(); err != nil {
		fmt.Fprintf(e.stderr, "treesh: invalid tree: %v\n", err)
		e.sink.Publish(2)
		return 2
	}
	st := e.eval(ctx, n, frame{})
	logging.FromContext(ctx).Debug("evaluated", zap.Stringer("tree", n), zap.Int("status", st))
	e.sink.Publish(st)
	return st
}

// HomeDir returns the value of the home variable.
func (e *Executor) HomeDir() (string, bool) {
	return os.LookupEnv(e.homeVar)
}

// WaitAll blocks with interrupts ignored until every descendant has
// terminated.
func (e *Executor) WaitAll(ctx context.Context) {
	restore := e.signals.Ignore()
	defer restore()
	done := e.reaper.WaitAll()
	logging.FromContext(ctx).Debug("waited", zap.Int("collected", len(done)))
}

// eval is the recursive interpreter. Every call, at every depth, restores
// the default interrupt disposition and reaps finished descendants first.
func (e *Executor) eval(ctx context.Context, n *tree.Node, f frame) int {
	e.signals.Default()
	e.reaper.Reap()

	switch n.Kind {
	case tree.KindAnd, tree.KindOr:
		return e.chain(ctx, n, f)
	case tree.KindSequence:
		return e.sequence(ctx, n, f)
	}

	if f.skip {
		logging.FromContext(ctx).Debug("skipped", zap.Stringer("node", n), zap.Int("status", f.status))
		return f.status
	}

	switch n.Kind {
	case tree.KindSimple:
		return e.simple(ctx, n)
	case tree.KindPipe:
		return e.pipeline(ctx, n)
	case tree.KindSubshell:
		return e.isolated(ctx, ipc.RoleSubshell, n)
	case tree.KindBackground:
		return e.background(ctx, n)
	}
	fmt.Fprintf(e.stderr, "treesh: unknown node kind %s\n", n.Kind)
	return 1
}

// report writes an error to the error stream.
func (e *Executor) report(err error) {
	fmt.Fprintf(e.stderr, "treesh: %v\n", err)
}
