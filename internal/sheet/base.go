package sheet

import (
	"sync"

	"github.com/kk-code-lab/vgrid/internal/task"
)

// Sheet is a grid of rows and columns that knows how to (re)load itself.
// Concrete sheets embed *Base and implement Reload.
type Sheet interface {
	Core() *Base
	// Reload repopulates the rows. It runs on a task goroutine and should
	// call t.Checkpoint between rows.
	Reload(t *task.Task) error
}

// RowOpener is implemented by sheets whose rows open into sub-sheets.
type RowOpener interface {
	OpenRow(r *Row) (Sheet, error)
}

// Base holds the state shared by every sheet: rows, columns, selection,
// cursor and viewport. Rows and columns may grow from task goroutines while
// the UI goroutine reads them; cursor and viewport fields belong to the UI
// goroutine.
type Base struct {
	env   *Env
	Tasks *task.Group

	mu      sync.RWMutex
	name    string
	columns []*Column
	rows    []*Row
	nextID  uint64
	// gen counts reloads; a reordering computed from an older row set is
	// not installed.
	gen uint64

	selMu    sync.RWMutex
	selected map[uint64]struct{}

	// CursorRowIndex indexes rows; CursorVisibleColIndex and
	// LeftVisibleColIndex index VisibleCols.
	CursorRowIndex        int
	CursorVisibleColIndex int
	TopRowIndex           int
	LeftVisibleColIndex   int

	windowWidth  int
	windowHeight int
	layout       map[int]ColLayout
	rightColumn  int
	rightClipped bool

	colorizers []Colorizer
}

// NewBase returns an empty sheet named name.
func NewBase(env *Env, name string) *Base {
	b := &Base{
		env:      env,
		Tasks:    task.NewGroup(),
		name:     name,
		selected: make(map[uint64]struct{}),
		layout:   make(map[int]ColLayout),
	}
	b.colorizers = builtinColorizers()
	return b
}

// Core lets types embedding *Base satisfy most of Sheet.
func (b *Base) Core() *Base { return b }

func (b *Base) Env() *Env { return b.env }

func (b *Base) Name() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.name
}

func (b *Base) SetName(name string) {
	b.mu.Lock()
	b.name = name
	b.mu.Unlock()
}

// AddColumn appends columns and attaches them to the sheet.
func (b *Base) AddColumn(cols ...*Column) {
	for _, c := range cols {
		c.attach(b)
	}
	b.mu.Lock()
	b.columns = append(b.columns, cols...)
	b.mu.Unlock()
}

// InsertColumn places c at index i of Columns.
func (b *Base) InsertColumn(i int, c *Column) {
	c.attach(b)
	b.mu.Lock()
	i = max(0, min(i, len(b.columns)))
	b.columns = append(b.columns, nil)
	copy(b.columns[i+1:], b.columns[i:])
	b.columns[i] = c
	b.mu.Unlock()
}

// Columns returns a snapshot of all columns, hidden ones included.
func (b *Base) Columns() []*Column {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.columns[:len(b.columns):len(b.columns)]
}

// ColumnByName returns the first column called name.
func (b *Base) ColumnByName(name string) (*Column, bool) {
	for _, c := range b.Columns() {
		if c.Name() == name {
			return c, true
		}
	}
	return nil, false
}

// MoveColumn moves the column at index from to index to.
func (b *Base) MoveColumn(from, to int) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := len(b.columns)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return false
	}
	cols := make([]*Column, 0, n)
	moved := b.columns[from]
	for i, c := range b.columns {
		if i != from {
			cols = append(cols, c)
		}
	}
	cols = append(cols[:to], append([]*Column{moved}, cols[to:]...)...)
	b.columns = cols
	return true
}

// AddRow appends a row wrapping data and returns it.
func (b *Base) AddRow(data any) *Row {
	b.mu.Lock()
	r := &Row{ID: b.nextID, Data: data}
	b.nextID++
	b.rows = append(b.rows, r)
	b.mu.Unlock()
	return r
}

// AdoptRows appends existing rows, keeping their IDs.
func (b *Base) AdoptRows(rows []*Row) {
	b.mu.Lock()
	for _, r := range rows {
		if r.ID >= b.nextID {
			b.nextID = r.ID + 1
		}
	}
	b.rows = append(b.rows, rows...)
	b.mu.Unlock()
}

// Rows returns a snapshot of the rows. Later appends do not affect it.
func (b *Base) Rows() []*Row {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rows[:len(b.rows):len(b.rows)]
}

func (b *Base) NumRows() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.rows)
}

// RowAt returns the row at index i.
func (b *Base) RowAt(i int) (*Row, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if i < 0 || i >= len(b.rows) {
		return nil, false
	}
	return b.rows[i], true
}

// DeleteRows removes rows for which drop returns true and returns how many
// went. The cursor stays on the same row where possible.
func (b *Base) DeleteRows(drop func(r *Row) bool) int {
	cur, _ := b.RowAt(b.CursorRowIndex)
	b.mu.Lock()
	kept := make([]*Row, 0, len(b.rows))
	for _, r := range b.rows {
		if !drop(r) {
			kept = append(kept, r)
		}
	}
	n := len(b.rows) - len(kept)
	b.rows = kept
	b.mu.Unlock()
	if n > 0 {
		alive := make(map[uint64]struct{}, len(kept))
		for _, r := range kept {
			alive[r.ID] = struct{}{}
		}
		b.selMu.Lock()
		for id := range b.selected {
			if _, ok := alive[id]; !ok {
				delete(b.selected, id)
			}
		}
		b.selMu.Unlock()
		b.placeCursorOn(cur)
	}
	return n
}

// resetRows clears the rows before a reload. Selection survives: IDs are
// reassigned in load order, so an unchanged source reselects the same rows.
func (b *Base) resetRows() {
	b.mu.Lock()
	b.rows = nil
	b.nextID = 0
	b.gen++
	cols := b.columns
	b.mu.Unlock()
	for _, c := range cols {
		c.Invalidate()
	}
}

// rowsAt returns a snapshot of the rows with the current reload generation.
func (b *Base) rowsAt() ([]*Row, uint64) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rows[:len(b.rows):len(b.rows)], b.gen
}

// replaceRows installs a reordering of the rows taken at generation gen,
// keeping the cursor on its row. Rows deleted since are left out and rows
// appended since follow the reordered ones. After a reload nothing is
// installed and false is returned.
func (b *Base) replaceRows(rows []*Row, gen uint64) bool {
	cur, _ := b.RowAt(b.CursorRowIndex)
	b.mu.Lock()
	if gen != b.gen {
		b.mu.Unlock()
		return false
	}
	live := make(map[*Row]struct{}, len(b.rows))
	for _, r := range b.rows {
		live[r] = struct{}{}
	}
	merged := make([]*Row, 0, len(b.rows))
	for _, r := range rows {
		if _, ok := live[r]; ok {
			merged = append(merged, r)
			delete(live, r)
		}
	}
	for _, r := range b.rows {
		if _, ok := live[r]; ok {
			merged = append(merged, r)
		}
	}
	b.rows = merged
	b.mu.Unlock()
	b.placeCursorOn(cur)
	return true
}

func (b *Base) placeCursorOn(r *Row) {
	if r != nil {
		for i, row := range b.Rows() {
			if row == r {
				b.CursorRowIndex = i
				break
			}
		}
	}
	b.CheckCursor()
}

// CursorRow returns the row under the cursor.
func (b *Base) CursorRow() (*Row, bool) { return b.RowAt(b.CursorRowIndex) }

// CursorColumn returns the visible column under the cursor.
func (b *Base) CursorColumn() (*Column, bool) {
	vcols := b.VisibleCols()
	if b.CursorVisibleColIndex < 0 || b.CursorVisibleColIndex >= len(vcols) {
		return nil, false
	}
	return vcols[b.CursorVisibleColIndex], true
}

// SetKey marks or unmarks c as a key column. Key columns move to the
// front of the visible columns.
func (b *Base) SetKey(c *Column, key bool) {
	cur, _ := b.CursorColumn()
	c.setKey(key)
	b.placeColCursorOn(cur)
}

// HideColumn hides c and keeps the cursor in range.
func (b *Base) HideColumn(c *Column) {
	c.SetWidth(0)
	b.CheckCursor()
}

// UnhideAll makes every hidden column visible again.
func (b *Base) UnhideAll() {
	for _, c := range b.Columns() {
		if c.Hidden() {
			c.SetWidth(WidthUnset)
		}
	}
	b.CheckCursor()
}

func (b *Base) placeColCursorOn(c *Column) {
	if c != nil {
		for i, vc := range b.VisibleCols() {
			if vc == c {
				b.CursorVisibleColIndex = i
				break
			}
		}
	}
	b.CheckCursor()
}

// IsSelected reports whether r is selected.
func (b *Base) IsSelected(r *Row) bool {
	b.selMu.RLock()
	defer b.selMu.RUnlock()
	_, ok := b.selected[r.ID]
	return ok
}

// Select marks rows as selected.
func (b *Base) Select(rows ...*Row) {
	b.selMu.Lock()
	for _, r := range rows {
		b.selected[r.ID] = struct{}{}
	}
	b.selMu.Unlock()
}

// Unselect clears the selection mark of rows.
func (b *Base) Unselect(rows ...*Row) {
	b.selMu.Lock()
	for _, r := range rows {
		delete(b.selected, r.ID)
	}
	b.selMu.Unlock()
}

// ToggleSelect flips the selection of r.
func (b *Base) ToggleSelect(r *Row) {
	b.selMu.Lock()
	if _, ok := b.selected[r.ID]; ok {
		delete(b.selected, r.ID)
	} else {
		b.selected[r.ID] = struct{}{}
	}
	b.selMu.Unlock()
}

// ClearSelection unselects every row.
func (b *Base) ClearSelection() {
	b.selMu.Lock()
	clear(b.selected)
	b.selMu.Unlock()
}

// SelectedCount returns the number of selected rows.
func (b *Base) SelectedCount() int {
	b.selMu.RLock()
	defer b.selMu.RUnlock()
	return len(b.selected)
}

// SelectedRows returns selected rows in sheet order.
func (b *Base) SelectedRows() []*Row {
	rows := b.Rows()
	b.selMu.RLock()
	defer b.selMu.RUnlock()
	out := make([]*Row, 0, len(b.selected))
	for _, r := range rows {
		if _, ok := b.selected[r.ID]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Busy reports whether the sheet has running tasks.
func (b *Base) Busy() bool { return b.Tasks.Len() > 0 }

// Spawn runs fn as a task of this sheet.
func (b *Base) Spawn(name string, fn task.Func) *task.Task {
	return b.env.Tasks.Spawn(b.Tasks, name, fn)
}

// CancelTasks cancels every running task of the sheet.
func (b *Base) CancelTasks() int { return b.Tasks.CancelAll() }

// StartReload clears s and spawns its Reload. Column definitions, widths,
// and the selection persist.
func StartReload(s Sheet) *task.Task {
	b := s.Core()
	return b.Spawn("load "+b.Name(), func(t *task.Task) error {
		b.resetRows()
		return s.Reload(t)
	})
}
