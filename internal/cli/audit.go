package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/marcelocantos/treesh/internal/audit"
)

// DefaultShowCount is how many entries audit show prints by default.
const DefaultShowCount = 20

// RunAudit handles the treesh audit subcommand:
//
//	treesh audit verify
//	treesh audit show [count]
//	treesh audit run <run-id>
func RunAudit(w io.Writer, logPath string, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(w, "usage: treesh audit <verify|show|run>")
		return 1
	}

	switch args[0] {
	case "verify":
		n, err := audit.Verify(logPath)
		if err != nil {
			fmt.Fprintf(w, "audit verification FAILED after %d entries: %v\n", n, err)
			return 1
		}
		fmt.Fprintf(w, "audit log integrity verified (%d entries)\n", n)
		return 0

	case "show", "tail":
		count := DefaultShowCount
		if len(args) > 1 {
			c, err := strconv.Atoi(args[1])
			if err != nil || c <= 0 {
				fmt.Fprintf(w, "treesh audit: invalid count %q\n", args[1])
				return 1
			}
			count = c
		}
		entries, err := audit.Tail(logPath, count)
		if err != nil {
			fmt.Fprintf(w, "treesh audit: %v\n", err)
			return 1
		}
		return printEntries(w, entries)

	case "run":
		if len(args) != 2 {
			fmt.Fprintln(w, "usage: treesh audit run <run-id>")
			return 1
		}
		entries, err := audit.ForRun(logPath, args[1])
		if err != nil {
			fmt.Fprintf(w, "treesh audit: %v\n", err)
			return 1
		}
		return printEntries(w, entries)

	default:
		fmt.Fprintf(w, "treesh audit: unknown subcommand %q\n", args[0])
		return 1
	}
}

func printEntries(w io.Writer, entries []audit.Entry) int {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no audit entries")
		return 0
	}
	for _, e := range entries {
		data, _ := json.MarshalIndent(e, "", "  ")
		fmt.Fprintf(w, "%s\n", data)
	}
	return 0
}
