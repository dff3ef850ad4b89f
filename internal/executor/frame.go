package executor

import (
	"context"

	"go.uber.org/zap"

	"github.com/marcelocantos/treesh/internal/logging"
	"github.com/marcelocantos/treesh/internal/tree"
)

// frame is the context an evaluation inherits from its caller. When skip is
// set, an ancestor has already decided the subtree's status: terminal nodes
// are not run and take status, while chains still resolve their own right
// operands.
type frame struct {
	skip   bool
	status int
}

// runsRight reports whether a chain of kind k evaluates its right operand
// after its left operand finished with left.
func runsRight(k tree.Kind, left int) bool {
	if k == tree.KindAnd {
		return left == 0
	}
	return left != 0
}

// chain evaluates && and ||.
func (e *Executor) chain(ctx context.Context, n *tree.Node, f frame) int {
	left := f.status
	if !f.skip {
		left = e.eval(ctx, n.Left, frame{})
	}

	if runsRight(n.Kind, left) {
		return e.eval(ctx, n.Right, frame{})
	}
	if n.Right.Kind.Terminal() {
		logging.FromContext(ctx).Debug("short-circuit", zap.Stringer("node", n.Right), zap.Int("status", left))
		return left
	}
	return e.eval(ctx, n.Right, frame{skip: true, status: left})
}

// sequence evaluates ;. Under skip the left operand is resolved without
// running; the right operand is unconditional and always runs. Classic
// shells that ignore skip for ; would run the left operand as well.
func (e *Executor) sequence(ctx context.Context, n *tree.Node, f frame) int {
	st := e.eval(ctx, n.Left, f)
	if n.Right != nil {
		st = e.eval(ctx, n.Right, frame{})
	}
	return st
}
