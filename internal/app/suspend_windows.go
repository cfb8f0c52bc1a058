//go:build windows

package app

// Windows has no SIGTSTP; suspend does nothing.
func (app *Application) suspendToShell() {
}

func (app *Application) resumeAfterStop() bool {
	return false
}
