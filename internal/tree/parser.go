package tree

import (
	"fmt"
	"strings"
)

// Parse takes pre-tokenized args (operators as separate tokens) and builds a
// command tree. No quoting or expansion is performed. Chains are built
// right-leaning: a && b || c becomes And(a, Or(b, c)).
func Parse(args []string) (*Node, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	p := &parser{toks: args}
	n, err := p.list()
	if err != nil {
		return nil, err
	}
	if !p.done() {
		return nil, fmt.Errorf("unexpected %s", p.peek())
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

type parser struct {
	toks []string
	pos  int
}

func (p *parser) done() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() string {
	if p.done() {
		return ""
	}
	return p.toks[p.pos]
}

func (p *parser) next() string {
	tok := p.peek()
	p.pos++
	return tok
}

// startsCommand reports whether the next token can begin a command.
func (p *parser) startsCommand() bool {
	if p.done() {
		return false
	}
	switch p.peek() {
	case OpCloseGroup, OpSequential, OpBackground, OpAndThen, OpOrElse, OpPipe:
		return false
	}
	return true
}

// list := andor [ (';' | '&') [list] ]
func (p *parser) list() (*Node, error) {
	left, err := p.andOr()
	if err != nil {
		return nil, err
	}

	var kind Kind
	switch p.peek() {
	case OpSequential:
		kind = KindSequence
	case OpBackground:
		kind = KindBackground
	default:
		return left, nil
	}
	p.next()

	n := &Node{Kind: kind, Left: left}
	if p.startsCommand() {
		if n.Right, err = p.list(); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// andor := pipeline [ ('&&' | '||') andor ]
func (p *parser) andOr() (*Node, error) {
	left, err := p.pipeline()
	if err != nil {
		return nil, err
	}

	var kind Kind
	switch p.peek() {
	case OpAndThen:
		kind = KindAnd
	case OpOrElse:
		kind = KindOr
	default:
		return left, nil
	}
	op := p.next()

	if !p.startsCommand() {
		return nil, fmt.Errorf("empty command after %s", op)
	}
	right, err := p.andOr()
	if err != nil {
		return nil, err
	}
	return &Node{Kind: kind, Left: left, Right: right}, nil
}

// pipeline := stage [ '|' pipeline ]
func (p *parser) pipeline() (*Node, error) {
	left, err := p.stage()
	if err != nil {
		return nil, err
	}
	if p.peek() != OpPipe {
		return left, nil
	}
	p.next()

	if !p.startsCommand() {
		return nil, fmt.Errorf("empty segment after %s", OpPipe)
	}
	right, err := p.pipeline()
	if err != nil {
		return nil, err
	}
	return Pipe(left, right), nil
}

// stage := locals ( simple | '(' list ')' redirects )
func (p *parser) stage() (*Node, error) {
	if !p.startsCommand() {
		if p.done() {
			return nil, fmt.Errorf("missing command")
		}
		return nil, fmt.Errorf("missing command before %s", p.peek())
	}

	locals := make(map[string]string)
	for !p.done() {
		name, value, ok := assignment(p.peek())
		if !ok {
			break
		}
		locals[name] = value
		p.next()
	}

	var n *Node
	if p.peek() == OpOpenGroup {
		p.next()
		if !p.startsCommand() {
			return nil, fmt.Errorf("empty %s", OpOpenGroup+OpCloseGroup)
		}
		body, err := p.list()
		if err != nil {
			return nil, err
		}
		if p.next() != OpCloseGroup {
			return nil, fmt.Errorf("missing %s", OpCloseGroup)
		}
		n = Subshell(body)
		for isRedirect(p.peek()) {
			if err := p.redirect(n); err != nil {
				return nil, err
			}
		}
	} else {
		n = &Node{Kind: KindSimple}
		for p.startsCommand() && p.peek() != OpOpenGroup {
			if isRedirect(p.peek()) {
				if err := p.redirect(n); err != nil {
					return nil, err
				}
				continue
			}
			n.Argv = append(n.Argv, p.next())
		}
		if len(n.Argv) == 0 {
			return nil, fmt.Errorf("missing command name")
		}
		if p.peek() == OpOpenGroup {
			return nil, fmt.Errorf("unexpected %s", OpOpenGroup)
		}
	}

	if len(locals) > 0 {
		n.Locals = locals
	}
	return n, nil
}

func (p *parser) redirect(n *Node) error {
	op := p.next()
	if p.done() || isOperator(p.peek()) {
		return fmt.Errorf("%s requires a file path", op)
	}
	path := p.next()

	switch op {
	case OpRedirectIn:
		if n.In != "" {
			return fmt.Errorf("multiple %s redirects", OpRedirectIn)
		}
		n.In = path
	case OpRedirectOut, OpAppendOut:
		if n.Out != "" {
			return fmt.Errorf("multiple output redirects")
		}
		n.Out = path
		n.Append = op == OpAppendOut
	}
	return nil
}

func isRedirect(tok string) bool {
	return tok == OpRedirectIn || tok == OpRedirectOut || tok == OpAppendOut
}

func isOperator(tok string) bool {
	switch tok {
	case OpPipe, OpAndThen, OpOrElse, OpSequential, OpBackground,
		OpRedirectIn, OpRedirectOut, OpAppendOut, OpOpenGroup, OpCloseGroup:
		return true
	}
	return false
}

// assignment splits a NAME=value token. NAME must be a shell identifier.
func assignment(tok string) (name, value string, ok bool) {
	name, value, ok = strings.Cut(tok, "=")
	if !ok || name == "" {
		return "", "", false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return "", "", false
		}
	}
	return name, value, true
}
