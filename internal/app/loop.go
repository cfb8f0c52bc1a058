package app

import (
	"os"
	"os/signal"
	"time"

	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/vgrid/internal/state"
)

const shutdownTimeout = 2 * time.Second

// Run drives the application until a quit command: draw a frame, wait for
// input, a dispatched action, a posted mutation or the pacer timeout, then
// apply it. Finished tasks are reaped once per frame.
func (app *Application) Run() {
	defer app.stop()

	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := app.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case eventChan <- ev:
			case <-app.done:
				return
			}
		}
	}()

	var sigContCh chan os.Signal
	if sigs := contSignals(); len(sigs) > 0 {
		sigContCh = make(chan os.Signal, 1)
		signal.Notify(sigContCh, sigs...)
		defer signal.Stop(sigContCh)
	}

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	renderPending := true
	for !app.state.ShouldQuit {
		if app.reap() {
			renderPending = true
		}
		if renderPending {
			app.decorateStack()
			app.renderer.Render(app.state)
			renderPending = false
		}

		var timeout <-chan time.Time
		busy := app.state.Env.Tasks.Busy()
		if wait, ok := app.pacer.Next(busy); ok {
			timer = resetTimer(timer, wait)
			timeout = timer.C
		}

		select {
		case ev := <-eventChan:
			app.pacer.Reset()
			if app.handleEvent(ev) {
				renderPending = true
			}
		case action := <-app.actionCh:
			if app.handleAction(action) {
				renderPending = true
			}
		case fn := <-app.postCh:
			fn()
			renderPending = true
		case <-timeout:
			// Progress and elapsed times move while tasks run.
			renderPending = busy
		case <-sigContCh:
			if app.resumeAfterStop() {
				renderPending = true
			}
		}

		if app.processActions() {
			renderPending = true
		}
	}
}

func resetTimer(timer *time.Timer, wait time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(wait)
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
	timer.Reset(wait)
	return timer
}

// reap collects finished tasks and reports whether any did finish.
func (app *Application) reap() bool {
	done := app.state.Env.Tasks.Reap()
	for _, t := range done {
		app.state.Env.Logger.Debug("task reaped", "task", t.Name, "state", t.State().String(), "elapsed", t.Elapsed())
	}
	return len(done) > 0
}

func (app *Application) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		app.input.ProcessEvent(ev)
	case *tcell.EventResize:
		app.screen.Sync()
		app.input.ProcessEvent(ev)
	case *tcell.EventInterrupt:
		return true
	default:
		return false
	}
	return true
}

func (app *Application) processActions() bool {
	changed := false
	for {
		select {
		case action := <-app.actionCh:
			if app.handleAction(action) {
				changed = true
			}
		default:
			return changed
		}
	}
}

func (app *Application) handleAction(action statepkg.Action) bool {
	if action == nil {
		return false
	}

	switch action.(type) {
	case statepkg.SuspendAction:
		app.suspendToShell()
		app.resumeAfterStop()
		return true
	}

	// Failures are already on the status line.
	_, _ = app.reducer.Reduce(app.state, action)
	return true
}
