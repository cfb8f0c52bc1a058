package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	textutil "github.com/kk-code-lab/vgrid/internal/textutil"
)

// HelpEntry is one line of the help overlay.
type HelpEntry struct {
	Keys    []string
	Command string
	Help    string
}

func buildHelpOverlayLines(entries []HelpEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if len(entry.Keys) == 0 {
			continue
		}
		lines = append(lines, formatHelpOverlayEntry(entry))
	}
	return lines
}

func formatHelpOverlayEntry(entry HelpEntry) string {
	keys := textutil.SanitizeTerminalText(strings.Join(entry.Keys, ", "))
	desc := textutil.SanitizeTerminalText(entry.Help)
	return fmt.Sprintf("  %-14s %-16s %s", keys, entry.Command, desc)
}

func (r *Renderer) drawHelpOverlay(w, h int) {
	baseStyle := tcell.StyleDefault
	headerStyle := r.theme.Status

	title := " Help "
	titleStart := 0
	titleWidth := r.metrics.Width(title)
	if w > titleWidth {
		titleStart = (w - titleWidth) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	lines := buildHelpOverlayLines(r.help)
	row := 2
	maxRow := h - 1
	for _, line := range lines {
		if row >= maxRow {
			break
		}
		r.clipdraw(0, row, w, strings.TrimRight(line, " "), baseStyle, ' ')
		row++
	}

	if h > 0 {
		r.clipdraw(0, h-1, w, "? toggle · Esc/q close", headerStyle, ' ')
	}
}
