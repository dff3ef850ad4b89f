package tree

import (
	"fmt"
	"sort"
	"strings"
)

// Operator tokens recognised by Parse. Each must arrive as its own token.
const (
	OpPipe        = "|"  // stdout → stdin
	OpAndThen     = "&&" // run next if previous succeeded
	OpOrElse      = "||" // run next if previous failed
	OpSequential  = ";"  // run next regardless of status
	OpBackground  = "&"  // run previous asynchronously
	OpRedirectIn  = "<"  // stdin from file
	OpRedirectOut = ">"  // stdout to file, truncating
	OpAppendOut   = ">>" // stdout to file, appending
	OpOpenGroup   = "("
	OpCloseGroup  = ")"
)

// Kind tags the variant of a Node.
type Kind int

const (
	KindSimple Kind = iota
	KindPipe
	KindSubshell
	KindAnd
	KindOr
	KindSequence
	KindBackground
)

var kindNames = [...]string{
	KindSimple:     "simple",
	KindPipe:       "pipe",
	KindSubshell:   "subshell",
	KindAnd:        "and",
	KindOr:         "or",
	KindSequence:   "sequence",
	KindBackground: "background",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name to a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown node kind: %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown node kind: %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Terminal reports whether short-circuit skipping stops at this kind: a
// skipped operand of this kind is not run and takes the skipped status.
func (k Kind) Terminal() bool {
	switch k {
	case KindSimple, KindPipe, KindSubshell, KindBackground:
		return true
	default:
		return false
	}
}

// Node is one vertex of a command tree. Which fields are meaningful depends
// on Kind; Validate enforces the shape.
type Node struct {
	Kind Kind `json:"kind"`

	Argv   []string          `json:"argv,omitempty"`   // simple only; Argv[0] is the program
	In     string            `json:"in,omitempty"`     // stdin redirect path, empty if none
	Out    string            `json:"out,omitempty"`    // stdout redirect path, empty if none
	Append bool              `json:"append,omitempty"` // open Out for append rather than truncate
	Locals map[string]string `json:"locals,omitempty"` // bound only in the executing process

	Left  *Node `json:"left,omitempty"`
	Right *Node `json:"right,omitempty"`
}

// Cmd returns a simple command node.
func Cmd(argv ...string) *Node {
	return &Node{Kind: KindSimple, Argv: argv}
}

// Pipe returns left | right.
func Pipe(left, right *Node) *Node {
	return &Node{Kind: KindPipe, Left: left, Right: right}
}

// Subshell returns ( body ).
func Subshell(body *Node) *Node {
	return &Node{Kind: KindSubshell, Left: body}
}

// And returns left && right.
func And(left, right *Node) *Node {
	return &Node{Kind: KindAnd, Left: left, Right: right}
}

// Or returns left || right.
func Or(left, right *Node) *Node {
	return &Node{Kind: KindOr, Left: left, Right: right}
}

// Seq returns left ; right. right may be nil.
func Seq(left, right *Node) *Node {
	return &Node{Kind: KindSequence, Left: left, Right: right}
}

// Bg returns left & right. right may be nil.
func Bg(left, right *Node) *Node {
	return &Node{Kind: KindBackground, Left: left, Right: right}
}

// RedirectIn sets the stdin redirect and returns n.
func (n *Node) RedirectIn(path string) *Node {
	n.In = path
	return n
}

// RedirectOut sets a truncating stdout redirect and returns n.
func (n *Node) RedirectOut(path string) *Node {
	n.Out, n.Append = path, false
	return n
}

// RedirectAppend sets an appending stdout redirect and returns n.
func (n *Node) RedirectAppend(path string) *Node {
	n.Out, n.Append = path, true
	return n
}

// Local binds name=value for the process executing n and returns n.
func (n *Node) Local(name, value string) *Node {
	if n.Locals == nil {
		n.Locals = make(map[string]string)
	}
	n.Locals[name] = value
	return n
}

// HasRedirects reports whether n carries any redirection or local binding.
func (n *Node) HasRedirects() bool {
	return n.In != "" || n.Out != "" || len(n.Locals) > 0
}

// String renders n as shell-like text. Arguments are not quoted.
func (n *Node) String() string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	n.write(&sb)
	return sb.String()
}

func (n *Node) write(sb *strings.Builder) {
	switch n.Kind {
	case KindSimple:
		n.writeLocals(sb)
		sb.WriteString(strings.Join(n.Argv, " "))
		n.writeRedirects(sb)
	case KindSubshell:
		n.writeLocals(sb)
		sb.WriteString(OpOpenGroup + " ")
		n.Left.write(sb)
		sb.WriteString(" " + OpCloseGroup)
		n.writeRedirects(sb)
	case KindPipe:
		n.writeBinary(sb, OpPipe)
	case KindAnd:
		n.writeBinary(sb, OpAndThen)
	case KindOr:
		n.writeBinary(sb, OpOrElse)
	case KindSequence:
		n.writeBinary(sb, OpSequential)
	case KindBackground:
		n.writeBinary(sb, OpBackground)
	}
}

func (n *Node) writeBinary(sb *strings.Builder, op string) {
	if n.Left != nil {
		n.Left.write(sb)
		sb.WriteString(" ")
	}
	sb.WriteString(op)
	if n.Right != nil {
		sb.WriteString(" ")
		n.Right.write(sb)
	}
}

func (n *Node) writeLocals(sb *strings.Builder) {
	names := make([]string, 0, len(n.Locals))
	for name := range n.Locals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(sb, "%s=%s ", name, n.Locals[name])
	}
}

func (n *Node) writeRedirects(sb *strings.Builder) {
	if n.In != "" {
		fmt.Fprintf(sb, " %s %s", OpRedirectIn, n.In)
	}
	if n.Out != "" {
		op := OpRedirectOut
		if n.Append {
			op = OpAppendOut
		}
		fmt.Fprintf(sb, " %s %s", op, n.Out)
	}
}
