package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/marcelocantos/treesh/internal/tree"
)

func TestRunsRight(t *testing.T) {
	assert.True(t, runsRight(tree.KindAnd, 0))
	assert.False(t, runsRight(tree.KindAnd, 1))
	assert.False(t, runsRight(tree.KindOr, 0))
	assert.True(t, runsRight(tree.KindOr, 130))
}

func TestStagesFlatten(t *testing.T) {
	a, b, c, d := tree.Cmd("a"), tree.Cmd("b"), tree.Cmd("c"), tree.Cmd("d")
	sub := tree.Subshell(tree.Cmd("e"))

	assert.Equal(t, []*tree.Node{a}, stages(a, nil))
	assert.Equal(t, []*tree.Node{a, b, c}, stages(tree.Pipe(a, tree.Pipe(b, c)), nil))
	assert.Equal(t, []*tree.Node{a, b, c, d}, stages(tree.Pipe(tree.Pipe(a, b), tree.Pipe(c, d)), nil))
	assert.Equal(t, []*tree.Node{sub, a}, stages(tree.Pipe(sub, a), nil))
}

// Skipped evaluation never reaches a process, so these run without
// spawning anything.
func TestSkippedTerminalsReturnFrameStatus(t *testing.T) {
	h := newHarness(t)
	f := frame{skip: true, status: 7}
	for _, n := range []*tree.Node{
		tree.Cmd("touch", "x"),
		tree.Pipe(tree.Cmd("touch", "x"), tree.Cmd("cat")),
		tree.Subshell(tree.Cmd("touch", "x")),
		tree.Bg(tree.Cmd("touch", "x"), nil),
	} {
		assert.Equal(t, 7, h.exec.eval(t.Context(), n, f), n.String())
	}
	assert.False(t, h.exists("x"))
	assert.Empty(t, h.errOut())
}
