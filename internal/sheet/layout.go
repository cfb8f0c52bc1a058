package sheet

// ColLayout is the screen span of one visible column. Width is the drawn
// width, which may be clipped at the right edge of the window.
type ColLayout struct {
	X     int
	Width int
}

// SetWindow resizes the viewport and re-clamps the cursor. A size change
// drops measured column widths; explicit widths are kept.
func (b *Base) SetWindow(width, height int) {
	width, height = max(width, 0), max(height, 0)
	if width != b.windowWidth || height != b.windowHeight {
		for _, c := range b.Columns() {
			c.forgetMeasuredWidth()
		}
	}
	b.windowWidth = width
	b.windowHeight = height
	b.CheckCursor()
}

// Window returns the viewport size in cells.
func (b *Base) Window() (width, height int) { return b.windowWidth, b.windowHeight }

// VisibleRowCount is the number of data rows the viewport shows.
func (b *Base) VisibleRowCount() int { return max(b.windowHeight, 1) }

// VisibleRows returns the rows currently in the viewport.
func (b *Base) VisibleRows() []*Row {
	rows := b.Rows()
	lo := min(max(b.TopRowIndex, 0), len(rows))
	hi := min(lo+b.VisibleRowCount(), len(rows))
	return rows[lo:hi]
}

// VisibleCols returns key columns first, then the remaining non-hidden
// columns, each group in sheet order.
func (b *Base) VisibleCols() []*Column {
	cols := b.Columns()
	out := make([]*Column, 0, len(cols))
	for _, c := range cols {
		if c.IsKey() && !c.Hidden() {
			out = append(out, c)
		}
	}
	for _, c := range cols {
		if !c.IsKey() && !c.Hidden() {
			out = append(out, c)
		}
	}
	return out
}

// NKeys returns the number of visible key columns.
func (b *Base) NKeys() int {
	n := 0
	for _, c := range b.Columns() {
		if c.IsKey() && !c.Hidden() {
			n++
		}
	}
	return n
}

// Layout returns the span of visible column i from the last CalcColLayout.
func (b *Base) Layout(i int) (ColLayout, bool) {
	l, ok := b.layout[i]
	return l, ok
}

// RowY returns the viewport line of row index i.
func (b *Base) RowY(i int) (int, bool) {
	y := i - b.TopRowIndex
	return y, y >= 0 && y < b.VisibleRowCount() && i < b.NumRows()
}

// MoreLeft reports non-key columns scrolled off to the left.
func (b *Base) MoreLeft() bool { return b.LeftVisibleColIndex > b.NKeys() }

// MoreRight reports columns past or clipped at the right edge.
func (b *Base) MoreRight() bool {
	return b.rightClipped || b.rightColumn < len(b.VisibleCols())-1
}

// separatorWidth is the cell count between adjacent columns.
func (b *Base) separatorWidth() int {
	return b.env.Metrics.Width(b.env.Options.ColumnSep)
}

// ColumnWidth resolves the width of c, sizing it from the visible rows if
// unset. The computed width sticks once rows exist to measure, until the
// window is resized or the column renamed.
func (b *Base) ColumnWidth(c *Column) int {
	if w := c.Width(); w >= 0 {
		return w
	}
	return b.autoWidth(c, b.VisibleRows())
}

func (b *Base) autoWidth(c *Column, rows []*Row) int {
	m := b.env.Metrics
	w := m.Width(c.Name())
	for _, r := range rows {
		w = max(w, m.Width(c.DisplayValue(r, 0)))
	}
	if !c.IsKey() && b.env.Options.DefaultWidth > 0 {
		w = min(w, b.env.Options.DefaultWidth)
	}
	w = max(w, 1)
	if len(rows) > 0 {
		c.setMeasuredWidth(w)
	}
	return w
}

// CalcColLayout assigns screen spans to the key columns and then to
// non-key columns from LeftVisibleColIndex until the window is full.
func (b *Base) CalcColLayout() {
	vcols := b.VisibleCols()
	nKeys := b.NKeys()
	sep := b.separatorWidth()
	layout := make(map[int]ColLayout, len(vcols))
	b.rightColumn = -1
	b.rightClipped = false

	x := 0
	place := func(i int) bool {
		if x >= b.windowWidth {
			return false
		}
		w := b.ColumnWidth(vcols[i])
		drawn := min(w, b.windowWidth-x)
		layout[i] = ColLayout{X: x, Width: drawn}
		b.rightColumn = i
		b.rightClipped = drawn < w
		x += w + sep
		return true
	}
	for i := 0; i < nKeys; i++ {
		if !place(i) {
			break
		}
	}
	for i := max(b.LeftVisibleColIndex, nKeys); i < len(vcols); i++ {
		if !place(i) {
			break
		}
	}
	b.layout = layout
}

// fullyVisible reports whether visible column i is laid out unclipped.
func (b *Base) fullyVisible(i int, vcols []*Column) bool {
	l, ok := b.layout[i]
	return ok && l.Width == b.ColumnWidth(vcols[i])
}

// EnsureCursorVisible scrolls so the cursor row and column are on screen.
func (b *Base) EnsureCursorVisible() {
	n := b.VisibleRowCount()
	switch {
	case b.CursorRowIndex < b.TopRowIndex:
		b.TopRowIndex = b.CursorRowIndex
	case b.CursorRowIndex >= b.TopRowIndex+n:
		b.TopRowIndex = b.CursorRowIndex - n + 1
	}

	vcols := b.VisibleCols()
	nKeys := b.NKeys()
	if b.LeftVisibleColIndex < nKeys {
		b.LeftVisibleColIndex = nKeys
	}
	if b.CursorVisibleColIndex >= nKeys && b.CursorVisibleColIndex < b.LeftVisibleColIndex {
		b.LeftVisibleColIndex = b.CursorVisibleColIndex
	}
	for {
		b.CalcColLayout()
		cur := b.CursorVisibleColIndex
		if cur < nKeys || cur >= len(vcols) || b.fullyVisible(cur, vcols) {
			return
		}
		if b.LeftVisibleColIndex >= cur {
			// Wider than the window: leftmost and clipped is the best fit.
			return
		}
		b.LeftVisibleColIndex++
	}
}

// CheckCursor clamps the cursor and scroll positions after rows or columns
// change, then makes the cursor visible.
func (b *Base) CheckCursor() {
	nrows := b.NumRows()
	b.CursorRowIndex = clamp(b.CursorRowIndex, 0, nrows-1)
	b.TopRowIndex = clamp(b.TopRowIndex, 0, nrows-1)

	ncols := len(b.VisibleCols())
	b.CursorVisibleColIndex = clamp(b.CursorVisibleColIndex, 0, ncols-1)
	b.LeftVisibleColIndex = clamp(b.LeftVisibleColIndex, 0, ncols-1)

	b.EnsureCursorVisible()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}

// CursorDown moves the cursor n rows; negative n moves up.
func (b *Base) CursorDown(n int) {
	b.CursorRowIndex += n
	b.CheckCursor()
}

// CursorRight moves the cursor n visible columns; negative n moves left.
func (b *Base) CursorRight(n int) {
	b.CursorVisibleColIndex += n
	b.CheckCursor()
}

// PageDown scrolls a viewport height, keeping the cursor's screen line.
func (b *Base) PageDown(pages int) {
	delta := pages * b.VisibleRowCount()
	b.TopRowIndex += delta
	b.CursorRowIndex += delta
	b.CheckCursor()
}

func (b *Base) GoTop() {
	b.CursorRowIndex = 0
	b.CheckCursor()
}

func (b *Base) GoBottom() {
	b.CursorRowIndex = b.NumRows() - 1
	b.CheckCursor()
}

func (b *Base) GoLeftmost() {
	b.CursorVisibleColIndex = 0
	b.CheckCursor()
}

func (b *Base) GoRightmost() {
	b.CursorVisibleColIndex = len(b.VisibleCols()) - 1
	b.CheckCursor()
}
