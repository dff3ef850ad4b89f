// Package cli holds the bodies of the treesh sub-commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/audit"
	"github.com/marcelocantos/treesh/internal/executor"
	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/tree"
)

// StatusUsage is returned when no tree could be built from the input.
const StatusUsage = 2

// RunTree evaluates n as one top-level tree and records it in the audit
// log. source names where the tree came from ("exec", a file path or "-").
func RunTree(ctx context.Context, ex *executor.Executor, logger *audit.Logger, n *tree.Node, source string) int {
	start := time.Now()
	status := ex.Run(ctx, n)
	duration := time.Since(start)

	logAudit(ctx, logger, audit.Record{
		RunID:    logging.RunID(ctx),
		Tree:     n.String(),
		Source:   source,
		Status:   status,
		Duration: duration,
	})
	return status
}

// RunExec builds a tree from pre-split tokens and evaluates it:
// treesh exec -- <tokens...>
func RunExec(ctx context.Context, ex *executor.Executor, logger *audit.Logger, args []string, stderr io.Writer) int {
	n, err := tree.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "treesh exec: %v\n", err)
		return StatusUsage
	}
	return RunTree(ctx, ex, logger, n, "exec")
}

// RunFiles evaluates every tree document in paths in order. "-" reads
// standard input, as does an empty path list. The result is the status of
// the last tree evaluated.
func RunFiles(ctx context.Context, ex *executor.Executor, logger *audit.Logger, paths []string, stdin io.Reader, stderr io.Writer) int {
	if len(paths) == 0 {
		paths = []string{"-"}
	}

	status := 0
	for _, path := range paths {
		nodes, err := readTrees(path, stdin)
		if err != nil {
			fmt.Fprintf(stderr, "treesh run: %v\n", err)
			return StatusUsage
		}
		for _, n := range nodes {
			status = RunTree(ctx, ex, logger, n, path)
		}
	}
	return status
}

func readTrees(path string, stdin io.Reader) ([]*tree.Node, error) {
	if path == "-" {
		nodes, err := tree.Decode(stdin, tree.FormatFor(path))
		if err != nil {
			return nil, fmt.Errorf("stdin: %w", err)
		}
		return nodes, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	nodes, err := tree.Decode(f, tree.FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}

func logAudit(ctx context.Context, logger *audit.Logger, r audit.Record) {
	if logger == nil {
		return
	}
	r.Cwd, _ = os.Getwd()
	// Best-effort: a failed audit write never changes the status.
	if err := logger.Log(r); err != nil {
		logging.FromContext(ctx).Warn("audit write failed", zap.Error(err))
	}
}
