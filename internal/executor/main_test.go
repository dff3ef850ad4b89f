package executor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/marcelocantos/treesh/internal/tree"
)

// The test binary doubles as the child evaluator: spawned copies of it run
// the task they were handed and exit before any test runs.
func TestMain(m *testing.M) {
	if status, ok := Child(); ok {
		os.Exit(status)
	}
	goleak.VerifyTestMain(m)
}

const (
	testStatusVar = "TREESH_TEST_STATUS"
	testHomeVar   = "TREESH_TEST_HOME"
)

type recordSink struct {
	published []int
}

func (s *recordSink) Publish(st int) { s.published = append(s.published, st) }

type fakeSignals struct {
	defaults int
	ignores  int
	restores int
	// depth is the number of Ignore scopes currently open.
	depth int
}

func (s *fakeSignals) Default() { s.defaults++ }

func (s *fakeSignals) Ignore() func() {
	s.ignores++
	s.depth++
	return func() {
		s.restores++
		s.depth--
	}
}

type harness struct {
	t      *testing.T
	dir    string
	stdout *os.File
	stderr *os.File
	sink   *recordSink
	exec   *Executor
}

type harnessOption func(*Options)

func withSignals(s *fakeSignals) harnessOption {
	return func(o *Options) { o.Signals = s }
}

func withEnvSink() harnessOption {
	return func(o *Options) { o.Sink = nil }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, err := os.Create(filepath.Join(t.TempDir(), "stdout"))
	require.NoError(t, err)
	stderr, err := os.Create(filepath.Join(t.TempDir(), "stderr"))
	require.NoError(t, err)
	t.Cleanup(func() {
		stdout.Close()
		stderr.Close()
	})

	h := &harness{t: t, dir: dir, stdout: stdout, stderr: stderr, sink: &recordSink{}}
	o := Options{
		Stdin:     devNull(t),
		Stdout:    stdout,
		Stderr:    stderr,
		Sink:      h.sink,
		StatusVar: testStatusVar,
		HomeVar:   testHomeVar,
	}
	for _, opt := range opts {
		opt(&o)
	}
	h.exec = New(o)
	return h
}

func devNull(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Open(os.DevNull)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func (h *harness) run(n *tree.Node) int {
	h.t.Helper()
	return h.exec.Run(context.Background(), n)
}

func (h *harness) out() string {
	h.t.Helper()
	data, err := os.ReadFile(h.stdout.Name())
	require.NoError(h.t, err)
	return string(data)
}

func (h *harness) errOut() string {
	h.t.Helper()
	data, err := os.ReadFile(h.stderr.Name())
	require.NoError(h.t, err)
	return string(data)
}

func (h *harness) path(name string) string {
	return filepath.Join(h.dir, name)
}

func (h *harness) exists(name string) bool {
	_, err := os.Stat(h.path(name))
	return err == nil
}

func (h *harness) read(name string) string {
	h.t.Helper()
	data, err := os.ReadFile(h.path(name))
	require.NoError(h.t, err)
	return string(data)
}

// drain collects every descendant so nothing outlives the test.
func (h *harness) drain() {
	h.exec.reaper.WaitAll()
}

func sh(script string) *tree.Node {
	return tree.Cmd("/bin/sh", "-c", script)
}

func touch(name string) *tree.Node {
	return tree.Cmd("touch", name)
}

func realDir(t *testing.T, dir string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	return resolved
}

func cwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	return realDir(t, wd)
}

func lines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}
