package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marcelocantos/treesh/internal/proc"
)

// Dirs prints the working directory.
type Dirs struct{}

var _ Builtin = Dirs{}

func (Dirs) Name() string         { return "dirs" }
func (Dirs) Description() string  { return "print the working directory" }
func (Dirs) Placement() Placement { return Child }

func (Dirs) Validate(args []string) error {
	if len(args) > 0 {
		return errors.New("usage: dirs")
	}
	return nil
}

func (Dirs) Run(ctx context.Context, h Host, args []string, stdout, stderr io.Writer) int {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "dirs: %v\n", err)
		return proc.Errno(err)
	}
	fmt.Fprintln(stdout, wd)
	return 0
}
