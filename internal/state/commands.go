package state

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kk-code-lab/vgrid/internal/sheet"
	"github.com/kk-code-lab/vgrid/internal/value"
)

// Command is a named operation on the application state. Key bindings map
// to command names; the registry maps names to behavior.
type Command struct {
	Name string
	Help string
	Run  func(s *AppState) error
}

var (
	errNoSheet  = errors.New("no sheet")
	errNoRow    = errors.New("no row under cursor")
	errNoColumn = errors.New("no column under cursor")
)

// onSheet adapts fn to run against the top sheet.
func onSheet(fn func(s *AppState, b *sheet.Base) error) func(*AppState) error {
	return func(s *AppState) error {
		b := s.Current()
		if b == nil {
			return errNoSheet
		}
		return fn(s, b)
	}
}

// onCell adapts fn to run against the cursor row and column.
func onCell(fn func(s *AppState, b *sheet.Base, r *sheet.Row, c *sheet.Column) error) func(*AppState) error {
	return onSheet(func(s *AppState, b *sheet.Base) error {
		r, ok := b.CursorRow()
		if !ok {
			return errNoRow
		}
		c, ok := b.CursorColumn()
		if !ok {
			return errNoColumn
		}
		return fn(s, b, r, c)
	})
}

// onColumn adapts fn to run against the cursor column.
func onColumn(fn func(s *AppState, b *sheet.Base, c *sheet.Column) error) func(*AppState) error {
	return onSheet(func(s *AppState, b *sheet.Base) error {
		c, ok := b.CursorColumn()
		if !ok {
			return errNoColumn
		}
		return fn(s, b, c)
	})
}

func move(fn func(b *sheet.Base)) func(*AppState) error {
	return onSheet(func(_ *AppState, b *sheet.Base) error {
		fn(b)
		return nil
	})
}

// DefaultCommands returns the built-in command registry.
func DefaultCommands() map[string]Command {
	cmds := []Command{
		// Movement
		{"go-down", "move cursor down", move(func(b *sheet.Base) { b.CursorDown(1) })},
		{"go-up", "move cursor up", move(func(b *sheet.Base) { b.CursorDown(-1) })},
		{"go-left", "move cursor left", move(func(b *sheet.Base) { b.CursorRight(-1) })},
		{"go-right", "move cursor right", move(func(b *sheet.Base) { b.CursorRight(1) })},
		{"page-down", "scroll one page down", move(func(b *sheet.Base) { b.PageDown(1) })},
		{"page-up", "scroll one page up", move(func(b *sheet.Base) { b.PageDown(-1) })},
		{"go-top", "go to first row", move((*sheet.Base).GoTop)},
		{"go-bottom", "go to last row", move((*sheet.Base).GoBottom)},
		{"go-leftmost", "go to first column", move((*sheet.Base).GoLeftmost)},
		{"go-rightmost", "go to last column", move((*sheet.Base).GoRightmost)},

		// Selection
		{"select-row", "select row and advance", markRow((*sheet.Base).Select)},
		{"unselect-row", "unselect row and advance", markRow((*sheet.Base).Unselect)},
		{"toggle-row", "toggle selection and advance", markRow(func(b *sheet.Base, rows ...*sheet.Row) {
			for _, r := range rows {
				b.ToggleSelect(r)
			}
		})},
		{"select-all", "select every row", onSheet(func(s *AppState, b *sheet.Base) error {
			b.Select(b.Rows()...)
			s.Env.Log.Statusf("selected %d rows", b.SelectedCount())
			return nil
		})},
		{"unselect-all", "clear the selection", onSheet(func(s *AppState, b *sheet.Base) error {
			n := b.SelectedCount()
			b.ClearSelection()
			s.Env.Log.Statusf("unselected %d rows", n)
			return nil
		})},
		{"select-regex", "select rows matching a regex in this column", regexPrompt(true)},
		{"unselect-regex", "unselect rows matching a regex in this column", regexPrompt(false)},

		// Columns
		{"toggle-key", "toggle key column", onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
			b.SetKey(c, !c.IsKey())
			return nil
		})},
		{"hide-col", "hide column", onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
			b.HideColumn(c)
			return nil
		})},
		{"unhide-all", "show hidden columns", move((*sheet.Base).UnhideAll)},
		{"widen-col", "widen column", resize(1)},
		{"narrow-col", "narrow column", resize(-1)},
		{"reset-width", "size column to its contents", onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
			c.SetWidth(sheet.WidthUnset)
			b.CheckCursor()
			return nil
		})},
		{"type-int", "set column type int", setType(value.TypeInt)},
		{"type-float", "set column type float", setType(value.TypeFloat)},
		{"type-string", "set column type string", setType(value.TypeString)},
		{"type-date", "set column type date", setType(value.TypeDate)},
		{"type-any", "set column type any", setType(value.TypeAny)},

		// Sort
		{"sort-asc", "sort ascending by column", sortBy(false)},
		{"sort-desc", "sort descending by column", sortBy(true)},

		// Editing
		{"edit-cell", "edit cell", onCell(editCell)},
		{"set-null", "set cell to null", onCell(func(_ *AppState, _ *sheet.Base, r *sheet.Row, c *sheet.Column) error {
			return c.SetValue(r, value.Null())
		})},
		{"delete-row", "delete row", onSheet(deleteRows(false))},
		{"delete-selected", "delete selected rows", onSheet(deleteRows(true))},

		// Sheets
		{"filter-selected", "open selected rows as a new sheet", onSheet(func(s *AppState, b *sheet.Base) error {
			if b.SelectedCount() == 0 {
				return errors.New("no rows selected")
			}
			s.PushAndLoad(b.FilterSelected())
			return nil
		})},
		{"open-row", "open row as a sheet", openRow},
		{"reload", "reload sheet", func(s *AppState) error {
			top := s.Top()
			if top == nil {
				return errNoSheet
			}
			sheet.StartReload(top)
			return nil
		}},
		{"cancel-sheet", "cancel this sheet's tasks", onSheet(func(s *AppState, b *sheet.Base) error {
			s.Env.Log.Statusf("cancelled %d tasks", b.CancelTasks())
			return nil
		})},
		{"errors-sheet", "show recent errors", func(s *AppState) error {
			s.PushAndLoad(sheet.NewErrorsSheet(s.Env))
			return nil
		}},
		{"tasks-sheet", "show tasks", func(s *AppState) error {
			s.PushAndLoad(sheet.NewTasksSheet(s.Env))
			return nil
		}},
		{"toggle-split", "split screen with the previous sheet", func(s *AppState) error {
			s.Split = !s.Split
			s.Layout()
			return nil
		}},
		{"quit-sheet", "close sheet", func(s *AppState) error {
			s.Pop()
			if len(s.Sheets) == 0 {
				s.ShouldQuit = true
			}
			return nil
		}},
		{"quit-all", "quit", func(s *AppState) error {
			s.ShouldQuit = true
			return nil
		}},
		{"suspend", "suspend to the shell", func(s *AppState) error {
			s.Dispatch(SuspendAction{})
			return nil
		}},
		{"help", "toggle help", func(s *AppState) error {
			s.HelpVisible = !s.HelpVisible
			return nil
		}},
	}
	registry := make(map[string]Command, len(cmds))
	for _, c := range cmds {
		registry[c.Name] = c
	}
	return registry
}

// SortedCommands lists a registry by name.
func SortedCommands(registry map[string]Command) []Command {
	out := make([]Command, 0, len(registry))
	for _, c := range registry {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func markRow(mark func(b *sheet.Base, rows ...*sheet.Row)) func(*AppState) error {
	return onSheet(func(_ *AppState, b *sheet.Base) error {
		r, ok := b.CursorRow()
		if !ok {
			return errNoRow
		}
		mark(b, r)
		b.CursorDown(1)
		return nil
	})
}

func regexPrompt(selectRows bool) func(*AppState) error {
	label := "select regex: "
	if !selectRows {
		label = "unselect regex: "
	}
	return onColumn(func(s *AppState, b *sheet.Base, c *sheet.Column) error {
		s.OpenPrompt(label, "", func(s *AppState, text string) error {
			_, err := b.SelectRegex(c, text, selectRows)
			return err
		})
		return nil
	})
}

func resize(delta int) func(*AppState) error {
	return onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
		c.SetWidth(max(b.ColumnWidth(c)+delta, 1))
		b.CheckCursor()
		return nil
	})
}

func setType(t value.Type) func(*AppState) error {
	return onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
		c.SetType(t)
		b.CheckCursor()
		return nil
	})
}

func sortBy(desc bool) func(*AppState) error {
	return onColumn(func(_ *AppState, b *sheet.Base, c *sheet.Column) error {
		b.SortRows(sheet.SortKey{Col: c, Desc: desc})
		return nil
	})
}

func editCell(s *AppState, _ *sheet.Base, r *sheet.Row, c *sheet.Column) error {
	if !c.Editable() {
		return fmt.Errorf("%s: %w", c.Name(), sheet.ErrNotEditable)
	}
	initial := ""
	if v := c.TypedValue(r); !v.IsNull() && !v.IsError() {
		initial = value.Format(v, c.Type(), c.Format())
	}
	s.OpenPrompt(c.Name()+": ", initial, func(_ *AppState, text string) error {
		return c.SetText(r, text)
	})
	return nil
}

func deleteRows(selected bool) func(s *AppState, b *sheet.Base) error {
	return func(s *AppState, b *sheet.Base) error {
		if s.Env.Options.ReadOnly {
			s.Env.Log.Status("read-only: rows not deleted")
			return nil
		}
		var n int
		if selected {
			n = b.DeleteRows(b.IsSelected)
		} else {
			r, ok := b.CursorRow()
			if !ok {
				return errNoRow
			}
			n = b.DeleteRows(func(x *sheet.Row) bool { return x == r })
		}
		s.Env.Log.Statusf("deleted %d rows", n)
		return nil
	}
}

func openRow(s *AppState) error {
	top := s.Top()
	if top == nil {
		return errNoSheet
	}
	opener, ok := top.(sheet.RowOpener)
	if !ok {
		return fmt.Errorf("%s: rows do not open", top.Core().Name())
	}
	r, ok := top.Core().CursorRow()
	if !ok {
		return errNoRow
	}
	sub, err := opener.OpenRow(r)
	if err != nil {
		return err
	}
	s.PushAndLoad(sub)
	return nil
}
