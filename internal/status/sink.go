// Package status records the last completed exit status of the process.
package status

import (
	"os"
	"strconv"
)

// DefaultVar is the environment variable that holds the last status.
const DefaultVar = "?"

// Sink receives the status of every completed top-level evaluation and of
// the built-ins that publish their own.
type Sink interface {
	Publish(status int)
}

// EnvSink stores the status as a decimal string in the process
// environment. The value is overwritten on every Publish and never cleared.
type EnvSink struct {
	Var string
}

// NewEnvSink returns an EnvSink writing to name, or DefaultVar if empty.
func NewEnvSink(name string) EnvSink {
	if name == "" {
		name = DefaultVar
	}
	return EnvSink{Var: name}
}

func (s EnvSink) Publish(status int) {
	_ = os.Setenv(s.Var, strconv.Itoa(status))
}

// Last returns the status most recently published to name. ok is false when
// nothing has been published or the value is not a number.
func Last(name string) (status int, ok bool) {
	v, found := os.LookupEnv(name)
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Discard is a Sink that drops every status.
var Discard Sink = discard{}

type discard struct{}

func (discard) Publish(int) {}
