package ipc

import (
	"os"
	"strings"
)

// ChildEnvKey marks a process started to run a task sent by its parent.
const ChildEnvKey = "TREESH_CHILD"

// ChildEnv returns env with the child marker set. Any marker already in env
// is replaced.
func ChildEnv(env []string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && k == ChildEnvKey {
			continue
		}
		out = append(out, kv)
	}
	return append(out, ChildEnvKey+"=1")
}

// TakeChildMarker reports whether this process was started as a child and
// removes the marker so that programs it runs do not inherit it.
func TakeChildMarker() bool {
	if os.Getenv(ChildEnvKey) != "1" {
		return false
	}
	_ = os.Unsetenv(ChildEnvKey)
	return true
}
