package render

import (
	"strings"

	statepkg "github.com/kk-code-lab/vgrid/internal/state"
	"github.com/kk-code-lab/vgrid/internal/textutil"
)

// buildFooterHelpSegments assembles context-aware help hints for the status
// line.
func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}
	switch {
	case state.Prompt != nil:
		return []string{"↵: accept", "Esc: cancel"}
	case len(state.Sheets) == 0:
		return []string{"?: help", "q: quit"}
	default:
		return []string{"?: help"}
	}
}

// drawStatusLine draws the prompt when one is open; otherwise the latest
// status message on the left and the sheet summary on the right.
func (r *Renderer) drawStatusLine(state *statepkg.AppState, w, h int) {
	y := h - 1
	if y < 0 {
		return
	}
	r.fillSpan(0, y, w, ' ', r.theme.Status)

	hints := strings.Join(buildFooterHelpSegments(state), "  ")
	if p := state.Prompt; p != nil {
		r.drawPrompt(p, y, w, hints)
		return
	}

	right := hints
	if b := state.Current(); b != nil {
		right = formatSheetStatus(b) + "  " + hints
	}
	right = textutil.SanitizeTerminalText(right)
	start := r.drawRightAligned(0, y, w, " "+right, r.theme.Status)

	if msg, ok := state.Env.Log.Last(); ok {
		style := r.theme.Status
		if msg.IsError {
			style = r.theme.StatusError
		}
		r.clipdraw(0, y, start, msg.Text, style, ' ')
	}
}

func (r *Renderer) drawPrompt(p *statepkg.Prompt, y, w int, hints string) {
	start := w
	if hintW := r.metrics.Width(hints); hintW+2 < w/2 {
		start = r.drawRightAligned(0, y, w, " "+hints, r.theme.Status)
	}
	x := r.drawTextLine(0, y, start, p.Label, r.theme.Prompt)

	// Keep the cursor on screen by scrolling long input left.
	avail := start - x - 1
	if avail <= 0 {
		return
	}
	offset := 0
	for r.metrics.Width(string(p.Buffer[offset:p.Cursor])) > avail {
		offset++
	}
	visible := string(p.Buffer[offset:])
	r.clipdraw(x, y, avail+1, visible, r.theme.Status, ' ')
	cursorX := x + r.metrics.Width(string(p.Buffer[offset:p.Cursor]))
	r.screen.ShowCursor(cursorX, y)
}
