package app

import (
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/vgrid/internal/loader"
	"github.com/kk-code-lab/vgrid/internal/sheet"
	statepkg "github.com/kk-code-lab/vgrid/internal/state"
	"github.com/kk-code-lab/vgrid/internal/task"
	inputui "github.com/kk-code-lab/vgrid/internal/ui/input"
	renderui "github.com/kk-code-lab/vgrid/internal/ui/render"
)

// Application represents the running app.
type Application struct {
	screen   tcell.Screen
	state    *statepkg.AppState
	reducer  *statepkg.StateReducer
	renderer *renderui.Renderer
	input    *inputui.InputHandler
	actionCh chan statepkg.Action
	postCh   chan func()
	done     chan struct{}
	stopOnce sync.Once
	pacer    *task.Pacer

	// decorated holds the sheets that already got the configured colorizers.
	decorated map[*sheet.Base]struct{}
}

// NewScreen creates and initialises the terminal screen.
func NewScreen() (tcell.Screen, error) {
	tcell.SetEncodingFallback(tcell.EncodingFallbackUTF8)
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return screen, nil
}

// NewApplication binds an initialised screen and env into an application.
// env.Post is taken over by the application loop.
func NewApplication(screen tcell.Screen, env *sheet.Env) *Application {
	state := statepkg.NewAppState(env)
	state.ScreenWidth, state.ScreenHeight = screen.Size()

	actionCh := make(chan statepkg.Action, 64)
	state.SetDispatch(func(action statepkg.Action) {
		select {
		case actionCh <- action:
		default:
			go func() { actionCh <- action }()
		}
	})

	app := &Application{
		screen:    screen,
		state:     state,
		reducer:   statepkg.NewStateReducer(),
		renderer:  renderui.NewRenderer(screen),
		input:     inputui.NewInputHandler(actionCh),
		actionCh:  actionCh,
		postCh:    make(chan func()),
		done:      make(chan struct{}),
		pacer:     task.NewPacer(),
		decorated: make(map[*sheet.Base]struct{}),
	}
	env.Post = app.post

	app.input.SetState(state)
	app.renderer.SetHelp(app.helpEntries())
	return app
}

// State exposes the application state. It must only be touched from the
// loop goroutine or after Run returned.
func (app *Application) State() *statepkg.AppState {
	return app.state
}

// Open pushes a sheet for every path and starts loading it.
func (app *Application) Open(paths ...string) error {
	for _, path := range paths {
		sh, err := loader.Open(app.state.Env, path)
		if err != nil {
			return err
		}
		app.decorate(sh.Core())
		app.state.PushAndLoad(sh)
	}
	return nil
}

// Close stops background work and releases the terminal.
func (app *Application) Close() error {
	app.stop()
	app.state.Env.Tasks.Shutdown(shutdownTimeout)
	app.screen.Fini()
	return nil
}

func (app *Application) stop() {
	app.stopOnce.Do(func() { close(app.done) })
}

// post runs fn on the loop goroutine. After shutdown fn is dropped.
func (app *Application) post(fn func()) {
	select {
	case app.postCh <- fn:
	case <-app.done:
	}
}

// decorate installs the configured colorizers on b once.
func (app *Application) decorate(b *sheet.Base) {
	if _, ok := app.decorated[b]; ok {
		return
	}
	app.decorated[b] = struct{}{}
	env := app.state.Env
	for _, err := range b.ApplyRules(env.Options.Colorizers) {
		env.Log.ReportError("config", "colorizer|"+err.Error(), err.Error(), err.Error())
	}
}

// decorateStack decorates sheets pushed by commands and forgets popped ones.
func (app *Application) decorateStack() {
	live := make(map[*sheet.Base]struct{}, len(app.state.Sheets))
	for _, sh := range app.state.Sheets {
		b := sh.Core()
		if b == nil {
			continue
		}
		live[b] = struct{}{}
		app.decorate(b)
	}
	for b := range app.decorated {
		if _, ok := live[b]; !ok {
			delete(app.decorated, b)
		}
	}
}

func (app *Application) helpEntries() []renderui.HelpEntry {
	cmds := app.reducer.Commands()
	entries := make([]renderui.HelpEntry, 0, len(cmds))
	for _, cmd := range cmds {
		entries = append(entries, renderui.HelpEntry{
			Keys:    app.input.KeysFor(cmd.Name),
			Command: cmd.Name,
			Help:    cmd.Help,
		})
	}
	return entries
}
