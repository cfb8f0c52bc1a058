package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/vgrid/internal/textutil"
)

// drawTextLine draws text from startX, attaching zero-width runes to the
// preceding cell. It returns the x after the last drawn cell.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	i := 0

	for i < len(runes) {
		mainc := runes[i]
		w := r.metrics.RuneWidth(mainc)
		if x-startX+w > maxWidth {
			break
		}
		i++

		var combc []rune
		for i < len(runes) && r.metrics.RuneWidth(runes[i]) == 0 && !textutil.IsOdd(runes[i]) {
			combc = append(combc, runes[i])
			i++
		}
		if textutil.IsOdd(mainc) {
			mainc = r.metrics.Placeholder()
		}

		r.screen.SetContent(x, y, mainc, combc, style)
		x += w
	}

	return x
}

// clipdraw clips text to width cells, draws it at x, and fills the rest of
// the span with fill. It returns the drawn text width.
func (r *Renderer) clipdraw(x, y, width int, text string, style tcell.Style, fill rune) int {
	if width <= 0 {
		return 0
	}
	clipped, _ := r.metrics.Clip(text, width)
	end := r.drawTextLine(x, y, width, clipped, style)
	for fx := end; fx < x+width; fx++ {
		r.screen.SetContent(fx, y, fill, nil, style)
	}
	return end - x
}

// fillSpan paints width cells from x with ch.
func (r *Renderer) fillSpan(x, y, width int, ch rune, style tcell.Style) {
	for i := 0; i < width; i++ {
		r.screen.SetContent(x+i, y, ch, nil, style)
	}
}

// drawRightAligned draws text ending at the right edge of [x, x+width).
func (r *Renderer) drawRightAligned(x, y, width int, text string, style tcell.Style) int {
	clipped, w := r.metrics.Clip(text, width)
	start := x + width - w
	r.drawTextLine(start, y, w, clipped, style)
	return start
}
