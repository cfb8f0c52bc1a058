package render

import (
	"fmt"
	"runtime/debug"

	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/vgrid/internal/colors"
	"github.com/kk-code-lab/vgrid/internal/sheet"
	statepkg "github.com/kk-code-lab/vgrid/internal/state"
)

// drawPane draws one sheet: its header line, then the visible rows. A
// panic while drawing is recorded in the error log and the pane is left
// showing the failure, unless strict mode asks for the crash.
func (r *Renderer) drawPane(state *statepkg.AppState, pane statepkg.Pane, w int, active bool) {
	env := state.Env
	b := pane.Sheet.Core()
	defer func() {
		if rec := recover(); rec != nil {
			if env.Options.Strict {
				panic(rec)
			}
			r.drawFailed(env, b, pane, w, rec)
		}
	}()

	b.CheckCursor()
	r.drawHeaderLine(b, pane.Y, w, active)

	opts := env.Options
	fill := opts.FillRune()
	vcols := b.VisibleCols()
	top := b.TopRowIndex
	for j, row := range b.VisibleRows() {
		y := pane.Y + 1 + j
		if j >= pane.Height-1 {
			break
		}
		idx := top + j
		rowAttr := b.RowAttr(row, idx)
		r.fillSpan(0, y, w, ' ', rowAttr.Style())
		sepStyle := colors.Update(r.theme.ColumnSep, rowAttr).Style()

		for i, c := range vcols {
			l, ok := b.Layout(i)
			if !ok {
				continue
			}
			attr := b.CellAttr(sheet.CellRef{Col: c, Row: row, ColIdx: i, RowIdx: idx})
			text := c.DisplayValue(row, b.ColumnWidth(c))
			r.clipdraw(l.X, y, l.Width, text, attr.Style(), fill)
			r.drawSeparator(b, i, l, y, w, sepStyle)
		}
	}
}

func (r *Renderer) drawHeaderLine(b *sheet.Base, y, w int, active bool) {
	opts := b.Env().Options
	vcols := b.VisibleCols()
	sepStyle := r.theme.ColumnSep.Style()
	firstScroll := -1

	for i, c := range vcols {
		l, ok := b.Layout(i)
		if !ok {
			continue
		}
		if !c.IsKey() && firstScroll < 0 {
			firstScroll = l.X
		}
		attr := r.theme.Header
		if active && i == b.CursorVisibleColIndex {
			attr = colors.Update(attr, r.theme.CurrentHeader)
		}
		attr = colors.Update(attr, b.CellAttr(sheet.CellRef{Col: c, ColIdx: i, RowIdx: -1}))
		r.clipdraw(l.X, y, l.Width, c.Name(), attr.Style(), ' ')
		r.drawSeparator(b, i, l, y, w, sepStyle)
	}

	if b.MoreLeft() && firstScroll >= 0 {
		r.clipdraw(firstScroll, y, r.metrics.Width(opts.MoreLeft), opts.MoreLeft, r.theme.More, ' ')
	}
	if b.MoreRight() {
		r.drawRightAligned(0, y, w, opts.MoreRight, r.theme.More)
	}
}

// drawSeparator draws the gap after visible column i. The gap after the
// last key column uses the key separator.
func (r *Renderer) drawSeparator(b *sheet.Base, i int, l sheet.ColLayout, y, w int, style tcell.Style) {
	opts := b.Env().Options
	x := l.X + l.Width
	sepW := r.metrics.Width(opts.ColumnSep)
	if sepW <= 0 || x >= w {
		return
	}
	glyph := opts.ColumnSep
	if nKeys := b.NKeys(); i == nKeys-1 && nKeys < len(b.VisibleCols()) {
		glyph = opts.KeySep
	}
	r.clipdraw(x, y, min(sepW, w-x), glyph, style, ' ')
}

func (r *Renderer) drawFailed(env *sheet.Env, b *sheet.Base, pane statepkg.Pane, w int, rec any) {
	msg := fmt.Sprint(rec)
	name := "sheet"
	if b != nil {
		name = b.Name()
	}
	env.Log.ReportError(
		"render",
		"render|"+name+"|"+msg,
		fmt.Sprintf("draw %s: %s", name, msg),
		fmt.Sprintf("%s\n%s", msg, debug.Stack()),
	)
	style := r.theme.StatusError
	for y := pane.Y; y < pane.Y+pane.Height; y++ {
		r.fillSpan(0, y, w, ' ', tcell.StyleDefault)
	}
	r.clipdraw(0, pane.Y, w, name+": draw failed", style, ' ')
}
