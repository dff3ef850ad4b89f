package builtin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/marcelocantos/treesh/internal/proc"
)

// Cd changes the working directory of the invoking process.
type Cd struct{}

var _ Builtin = Cd{}

func (Cd) Name() string         { return "cd" }
func (Cd) Description() string  { return "change the working directory (default: home)" }
func (Cd) Placement() Placement { return InProcess }

func (Cd) Validate(args []string) error {
	if len(args) > 1 {
		return errors.New("usage: cd  OR  cd <directory-name>")
	}
	return nil
}

func (Cd) Run(ctx context.Context, h Host, args []string, stdout, stderr io.Writer) int {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		home, ok := h.HomeDir()
		if !ok {
			fmt.Fprintln(stderr, "cd: $HOME variable not set")
			return 1
		}
		dir = home
	}

	if err := os.Chdir(dir); err != nil {
		fmt.Fprintf(stderr, "cd: %v\n", err)
		return proc.Errno(err)
	}
	if wd, err := os.Getwd(); err == nil {
		_ = os.Setenv("PWD", wd)
	}
	return 0
}
