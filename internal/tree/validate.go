package tree

import (
	"errors"
	"fmt"
)

// Validate checks the shape invariants of the tree rooted at n.
func (n *Node) Validate() error {
	if n == nil {
		return errors.New("nil node")
	}
	switch n.Kind {
	case KindSimple:
		if len(n.Argv) == 0 || n.Argv[0] == "" {
			return errors.New("simple: missing command name")
		}
		if n.Left != nil || n.Right != nil {
			return errors.New("simple: unexpected operand")
		}
		return nil
	case KindSubshell:
		if n.Left == nil {
			return errors.New("subshell: missing body")
		}
		if n.Right != nil {
			return errors.New("subshell: unexpected right operand")
		}
	case KindPipe, KindAnd, KindOr:
		if n.Left == nil || n.Right == nil {
			return fmt.Errorf("%s: requires both operands", n.Kind)
		}
	case KindSequence, KindBackground:
		if n.Left == nil {
			return fmt.Errorf("%s: missing left operand", n.Kind)
		}
	default:
		return fmt.Errorf("unknown node kind: %d", int(n.Kind))
	}

	if n.Kind != KindSubshell {
		if len(n.Argv) > 0 {
			return fmt.Errorf("%s: unexpected argv", n.Kind)
		}
		if n.HasRedirects() {
			return fmt.Errorf("%s: redirections and locals belong to simple or subshell nodes", n.Kind)
		}
	}

	if err := n.Left.Validate(); err != nil {
		return err
	}
	if n.Right != nil {
		return n.Right.Validate()
	}
	return nil
}
