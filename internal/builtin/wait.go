package builtin

import (
	"context"
	"errors"
	"io"
)

// Wait blocks until no descendants of the invoking process remain.
type Wait struct{}

var _ Builtin = Wait{}

func (Wait) Name() string         { return "wait" }
func (Wait) Description() string  { return "wait for every background process to finish" }
func (Wait) Placement() Placement { return InProcess }

func (Wait) Validate(args []string) error {
	if len(args) > 0 {
		return errors.New("usage: wait")
	}
	return nil
}

func (Wait) Run(ctx context.Context, h Host, args []string, stdout, stderr io.Writer) int {
	h.WaitAll(ctx)
	return 0
}
