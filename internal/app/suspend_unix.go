//go:build !windows

package app

import (
	"syscall"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/vgrid/internal/state"
)

func (app *Application) suspendToShell() {
	_ = app.screen.Suspend()
	// Stop only this process so the launching shell keeps job control.
	_ = syscall.Kill(syscall.Getpid(), syscall.SIGTSTP)
}

// resumeAfterStop takes the terminal back after SIGCONT and re-lays out the
// sheets for a terminal that may have been resized meanwhile.
func (app *Application) resumeAfterStop() bool {
	if err := app.screen.Resume(); err != nil {
		app.state.Env.Logger.Warn("resume failed", "err", err)
		return false
	}
	app.screen.Sync()
	_ = app.screen.PostEvent(tcell.NewEventInterrupt("resume"))
	if w, h := app.screen.Size(); w > 0 && h > 0 {
		_, _ = app.reducer.Reduce(app.state, statepkg.ResizeAction{Width: w, Height: h})
	}
	return true
}
