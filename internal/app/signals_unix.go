//go:build !windows

package app

import (
	"os"
	"syscall"
)

// contSignals lists the signals that mean the process was resumed after a
// stop.
func contSignals() []os.Signal {
	return []os.Signal{syscall.SIGCONT}
}
