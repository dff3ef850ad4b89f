package cli

import (
	"fmt"
	"io"

	"github.com/marcelocantos/treesh/internal/builtin"
)

// RunList lists the registered built-in commands.
func RunList(reg *builtin.Registry, w io.Writer, placementFilter string) int {
	var filter *builtin.Placement
	if placementFilter != "" {
		p, err := builtin.ParsePlacement(placementFilter)
		if err != nil {
			fmt.Fprintf(w, "treesh builtins: %v\n", err)
			return 1
		}
		filter = &p
	}

	for _, b := range reg.All() {
		if filter != nil && b.Placement() != *filter {
			continue
		}
		fmt.Fprintf(w, "%-8s %-10s %s\n", b.Name(), b.Placement(), b.Description())
	}
	return 0
}
