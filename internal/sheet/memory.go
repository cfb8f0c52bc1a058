package sheet

import "github.com/kk-code-lab/vgrid/internal/task"

// MemorySheet is a sheet over a fixed set of rows held in memory. Reload
// restores the original rows.
type MemorySheet struct {
	*Base
	source []*Row
}

// NewMemorySheet builds a sheet from cols and rows. The rows are added
// immediately and again on every reload.
func NewMemorySheet(env *Env, name string, cols []*Column, rows []*Row) *MemorySheet {
	s := &MemorySheet{Base: NewBase(env, name), source: rows}
	s.AddColumn(cols...)
	s.AdoptRows(rows)
	return s
}

// NewMemorySheetFromData wraps each element of data as a row.
func NewMemorySheetFromData(env *Env, name string, cols []*Column, data []any) *MemorySheet {
	rows := make([]*Row, len(data))
	for i, d := range data {
		rows[i] = &Row{ID: uint64(i), Data: d}
	}
	return NewMemorySheet(env, name, cols, rows)
}

func (s *MemorySheet) Reload(t *task.Task) error {
	s.AdoptRows(s.source)
	return nil
}
