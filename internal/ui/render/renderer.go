package render

import (
	"github.com/gdamore/tcell/v2"

	statepkg "github.com/kk-code-lab/vgrid/internal/state"
	"github.com/kk-code-lab/vgrid/internal/textutil"
)

// Renderer handles all UI rendering
type Renderer struct {
	screen  tcell.Screen
	theme   ColorTheme
	metrics *textutil.Metrics
	help    []HelpEntry
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{
		screen:  screen,
		metrics: textutil.Default(),
	}
}

// SetHelp sets the entries listed by the help overlay.
func (r *Renderer) SetHelp(entries []HelpEntry) {
	r.help = entries
}

// Render draws the entire UI based on state
func (r *Renderer) Render(state *statepkg.AppState) {
	r.screen.Clear()
	r.screen.HideCursor()

	w, h := r.screen.Size()
	if state == nil || state.Env == nil {
		r.screen.Show()
		return
	}
	r.metrics = state.Env.Metrics
	r.theme = GetColorTheme(state.Env.Colors)

	if state.HelpVisible {
		r.drawHelpOverlay(w, h)
		r.screen.Show()
		return
	}

	for i, pane := range state.Panes() {
		r.drawPane(state, pane, w, i == 0)
	}
	r.drawStatusLine(state, w, h)

	r.screen.Show()
}
