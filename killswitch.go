package piquouze

import (
	"github.com/dozm/piquouze/errorx"
)

// killSwitch tracks the factories currently being resolved and refuses to
// enter one twice.
type killSwitch struct {
	circuit []string
	seen    map[string]bool
}

func (k *killSwitch) Enter(name string) error {
	if k.seen[name] {
		cycle := make([]string, 0, len(k.circuit)+1)
		cycle = append(cycle, k.circuit...)
		return &errorx.CycleError{Cycle: append(cycle, name)}
	}

	k.circuit = append(k.circuit, name)
	k.seen[name] = true
	return nil
}

func (k *killSwitch) Exit() {
	n := len(k.circuit) - 1
	if n < 0 {
		return
	}
	delete(k.seen, k.circuit[n])
	k.circuit = k.circuit[:n]
}

// Depth is the number of factories on the resolution stack.
func (k *killSwitch) Depth() int {
	return len(k.circuit)
}

func newKillSwitch() *killSwitch {
	return &killSwitch{
		circuit: make([]string, 0, 8),
		seen:    make(map[string]bool),
	}
}
