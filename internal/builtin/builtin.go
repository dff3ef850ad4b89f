// Package builtin defines the commands the shell runs itself instead of
// starting an external program.
package builtin

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
)

// Placement says which process a built-in must run in.
type Placement int

const (
	// InProcess built-ins change the invoking process (cwd, children) and
	// run before any process creation.
	InProcess Placement = iota
	// Child built-ins only produce output and run in a separate process
	// with the node's redirections applied.
	Child
)

func (p Placement) String() string {
	switch p {
	case InProcess:
		return "in-process"
	case Child:
		return "child"
	default:
		return fmt.Sprintf("placement(%d)", int(p))
	}
}

// ParsePlacement converts a string to a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch s {
	case "in-process":
		return InProcess, nil
	case "child":
		return Child, nil
	default:
		return 0, fmt.Errorf("unknown placement: %q", s)
	}
}

// Host is the shell state a built-in may touch.
type Host interface {
	// HomeDir returns the home directory variable, if set.
	HomeDir() (string, bool)
	// WaitAll blocks until every descendant has terminated, reporting each.
	WaitAll(ctx context.Context)
}

// Builtin is the interface every built-in command implements.
type Builtin interface {
	// Name returns the command name matched against argv[0].
	Name() string

	// Description returns a human-readable summary for listings.
	Description() string

	Placement() Placement

	// Validate checks args (argv without the name). The error text is the
	// usage message shown to the user.
	Validate(args []string) error

	// Run executes the built-in and returns its status.
	Run(ctx context.Context, h Host, args []string, stdout, stderr io.Writer) int
}

// Registry maps command names to built-ins.
type Registry struct {
	mu       sync.RWMutex
	builtins map[string]Builtin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builtins: make(map[string]Builtin)}
}

// Defaults returns a registry holding cd, wait and dirs.
func Defaults() *Registry {
	r := NewRegistry()
	r.Register(Cd{})
	r.Register(Wait{})
	r.Register(Dirs{})
	return r
}

// Register adds b, replacing any built-in of the same name.
func (r *Registry) Register(b Builtin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builtins[b.Name()] = b
}

// Lookup returns the built-in called name.
func (r *Registry) Lookup(name string) (Builtin, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builtins[name]
	return b, ok
}

// All returns all registered built-ins sorted by name.
func (r *Registry) All() []Builtin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]Builtin, 0, len(r.builtins))
	for _, b := range r.builtins {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].Name() < all[j].Name()
	})
	return all
}
