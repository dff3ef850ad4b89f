package proc

import (
	"os"
	"os/signal"
)

// Signals controls how the process reacts to the interrupt signal.
type Signals interface {
	// Default restores the terminating disposition.
	Default()
	// Ignore shields the process from interrupts until restore is called.
	Ignore() (restore func())
}

// Interrupts is the Signals implementation backed by os/signal.
//
// Ignore catches and discards interrupts instead of installing SIG_IGN:
// children started inside the window keep the default action, and restore
// returns the process to the terminating disposition.
type Interrupts struct{}

func (Interrupts) Default() {
	signal.Reset(os.Interrupt)
}

func (Interrupts) Ignore() func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return func() { signal.Stop(ch) }
}
