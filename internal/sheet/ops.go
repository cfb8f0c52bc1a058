package sheet

import (
	"context"
	"regexp"
	"slices"

	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/value"
)

const opChunk = 2048

// SortKey orders rows by one column.
type SortKey struct {
	Col  *Column
	Desc bool
}

// SortRows reorders the rows by keys on a task. Sort values are computed in
// parallel chunks; the new order is installed on the UI goroutine, keeping
// the cursor on its row.
func (b *Base) SortRows(keys ...SortKey) *task.Task {
	return b.Spawn("sort "+b.Name(), func(t *task.Task) error {
		rows, gen := b.rowsAt()
		vals := make([][]value.Value, len(keys))
		for k := range keys {
			vals[k] = make([]value.Value, len(rows))
		}
		t.SetStatus("computing sort keys")
		err := task.ForEachChunk(t, len(rows), opChunk, func(_ context.Context, lo, hi int) error {
			for i := lo; i < hi; i++ {
				for k, key := range keys {
					vals[k][i] = key.Col.SortValue(rows[i])
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		if err := t.Checkpoint(); err != nil {
			return err
		}

		order := make([]int, len(rows))
		for i := range order {
			order[i] = i
		}
		slices.SortStableFunc(order, func(i, j int) int {
			for k, key := range keys {
				if c := value.CompareSorted(vals[k][i], vals[k][j], key.Desc); c != 0 {
					return c
				}
			}
			return 0
		})
		sorted := make([]*Row, len(rows))
		for i, idx := range order {
			sorted[i] = rows[idx]
		}
		if err := t.Checkpoint(); err != nil {
			return err
		}
		b.env.post(func() {
			if !b.replaceRows(sorted, gen) {
				b.env.Log.Status("sort discarded: " + b.Name() + " was reloaded")
			}
		})
		return nil
	})
}

// SelectWhere evaluates match over every row on a task and selects (or
// unselects) the matching rows. The count of matches is reported as status.
func (b *Base) SelectWhere(name string, selectRows bool, match func(r *Row) bool) *task.Task {
	return b.Spawn(name, func(t *task.Task) error {
		rows := b.Rows()
		hits := make([]bool, len(rows))
		err := task.ForEachChunk(t, len(rows), opChunk, func(_ context.Context, lo, hi int) error {
			for i := lo; i < hi; i++ {
				hits[i] = match(rows[i])
			}
			return nil
		})
		if err != nil {
			return err
		}
		matched := make([]*Row, 0)
		for i, hit := range hits {
			if hit {
				matched = append(matched, rows[i])
			}
		}
		if selectRows {
			b.Select(matched...)
			b.env.Log.Statusf("selected %d rows", len(matched))
		} else {
			b.Unselect(matched...)
			b.env.Log.Statusf("unselected %d rows", len(matched))
		}
		return nil
	})
}

// SelectRegex selects rows whose display value in col matches pattern.
func (b *Base) SelectRegex(col *Column, pattern string, selectRows bool) (*task.Task, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return b.SelectWhere("select "+pattern, selectRows, func(r *Row) bool {
		return re.MatchString(col.DisplayValue(r, 0))
	}), nil
}

// FilterSelected returns a new sheet over the selected rows, with copies of
// the column definitions.
func (b *Base) FilterSelected() *MemorySheet {
	cols := b.Columns()
	copies := make([]*Column, len(cols))
	for i, c := range cols {
		copies[i] = c.Clone()
	}
	return NewMemorySheet(b.env, b.Name()+"_selected", copies, b.SelectedRows())
}
