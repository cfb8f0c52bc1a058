package state

import (
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/sheet"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/value"
)

func newTestState(t *testing.T, tweak ...func(*config.Options)) (*AppState, *StateReducer) {
	t.Helper()
	opts := config.Defaults()
	for _, f := range tweak {
		f(opts)
	}
	env := sheet.NewEnv(opts, nil)
	t.Cleanup(func() { env.Tasks.Shutdown(time.Second) })
	s := NewAppState(env)
	r := NewStateReducer()
	_, err := r.Reduce(s, ResizeAction{Width: 40, Height: 12})
	require.NoError(t, err)
	return s, r
}

type record struct {
	Name string
	Qty  int
}

// fruitSheet has an editable name column and an int qty column.
func fruitSheet(env *sheet.Env) *sheet.MemorySheet {
	data := []any{
		&record{"apple", 3},
		&record{"banana", 12},
		&record{"cherry", 7},
		&record{"date", 1},
	}
	name := sheet.NewColumn("name", value.TypeString, func(r *sheet.Row) (value.Value, error) {
		return value.String(r.Data.(*record).Name), nil
	}, sheet.WithSetter(func(r *sheet.Row, v value.Value) error {
		r.Data.(*record).Name = v.String()
		return nil
	}))
	qty := sheet.NewColumn("qty", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
		return value.Int(int64(r.Data.(*record).Qty)), nil
	})
	return sheet.NewMemorySheetFromData(env, "fruit", []*sheet.Column{name, qty}, data)
}

func run(t *testing.T, r *StateReducer, s *AppState, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := r.Reduce(s, CommandAction{Name: name})
		require.NoError(t, err, name)
	}
}

func waitIdle(t *testing.T, b *sheet.Base) {
	t.Helper()
	require.Eventually(t, func() bool { return !b.Busy() }, 5*time.Second, 5*time.Millisecond)
}

func typeText(t *testing.T, r *StateReducer, s *AppState, text string) {
	t.Helper()
	for _, ch := range text {
		_, err := r.Reduce(s, PromptCharAction{Char: ch})
		require.NoError(t, err)
	}
}

func TestResizeSizesTopSheet(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))

	w, h := s.Current().Window()
	assert.Equal(t, 40, w)
	assert.Equal(t, 10, h, "one status line and one header line")

	_, err := r.Reduce(s, ResizeAction{Width: 30, Height: 5})
	require.NoError(t, err)
	w, h = s.Current().Window()
	assert.Equal(t, 30, w)
	assert.Equal(t, 3, h)
}

func TestMovementCommands(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()

	run(t, r, s, "go-down", "go-down", "go-right")
	assert.Equal(t, 2, b.CursorRowIndex)
	assert.Equal(t, 1, b.CursorVisibleColIndex)

	run(t, r, s, "go-bottom", "go-down")
	assert.Equal(t, 3, b.CursorRowIndex)

	run(t, r, s, "go-top", "go-up", "go-leftmost")
	assert.Equal(t, 0, b.CursorRowIndex)
	assert.Equal(t, 0, b.CursorVisibleColIndex)

	run(t, r, s, "go-rightmost")
	assert.Equal(t, 1, b.CursorVisibleColIndex)
}

func TestCommandWithoutSheetReportsError(t *testing.T) {
	s, r := newTestState(t)
	_, err := r.Reduce(s, CommandAction{Name: "go-down"})
	assert.ErrorIs(t, err, errNoSheet)
	assert.Equal(t, err, s.LastError)

	msg, ok := s.Env.Log.Last()
	require.True(t, ok)
	assert.Equal(t, "go-down: no sheet", msg.Text)

	_, err = r.Reduce(s, CommandAction{Name: "no-such"})
	assert.Error(t, err)
}

func TestSelectionCommands(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()

	run(t, r, s, "select-row", "toggle-row")
	assert.Equal(t, 2, b.SelectedCount())
	assert.Equal(t, 2, b.CursorRowIndex, "marking advances the cursor")

	run(t, r, s, "go-top", "unselect-row")
	assert.Equal(t, 1, b.SelectedCount())

	run(t, r, s, "select-all")
	assert.Equal(t, 4, b.SelectedCount())
	run(t, r, s, "unselect-all")
	assert.Equal(t, 0, b.SelectedCount())
}

func TestSelectRegexPrompt(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()

	run(t, r, s, "select-regex")
	require.NotNil(t, s.Prompt)
	assert.Equal(t, "select regex: ", s.Prompt.Label)

	typeText(t, r, s, "an")
	_, err := r.Reduce(s, PromptSubmitAction{})
	require.NoError(t, err)
	assert.Nil(t, s.Prompt)
	waitIdle(t, b)
	assert.Equal(t, 1, b.SelectedCount())

	run(t, r, s, "select-regex")
	typeText(t, r, s, "(")
	_, err = r.Reduce(s, PromptSubmitAction{})
	assert.Error(t, err, "bad regex is reported")
	msg, _ := s.Env.Log.Last()
	assert.Contains(t, msg.Text, "select regex:")
}

func TestPromptEditing(t *testing.T) {
	s, r := newTestState(t)
	var got string
	s.OpenPrompt("> ", "hello world", func(_ *AppState, text string) error {
		got = text
		return nil
	})

	steps := []Action{
		PromptDeleteWordAction{},
		PromptMoveCursorAction{Direction: "home"},
		PromptCharAction{Char: '['},
		PromptMoveCursorAction{Direction: "end"},
		PromptBackspaceAction{},
		PromptCharAction{Char: ']'},
		PromptMoveCursorAction{Direction: "home"},
		PromptMoveCursorAction{Direction: "right"},
		PromptDeleteAction{},
	}
	for _, a := range steps {
		_, err := r.Reduce(s, a)
		require.NoError(t, err)
	}
	assert.Equal(t, "[ello]", s.Prompt.Text())

	_, err := r.Reduce(s, PromptSubmitAction{})
	require.NoError(t, err)
	assert.Equal(t, "[ello]", got)

	s.OpenPrompt("> ", "abc", nil)
	_, err = r.Reduce(s, PromptClearAction{})
	require.NoError(t, err)
	assert.Empty(t, s.Prompt.Text())
	_, err = r.Reduce(s, PromptCancelAction{})
	require.NoError(t, err)
	assert.Nil(t, s.Prompt)
}

func TestEditCell(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()
	name := b.Columns()[0]
	row, _ := b.RowAt(0)

	run(t, r, s, "edit-cell")
	require.NotNil(t, s.Prompt)
	assert.Equal(t, "apple", s.Prompt.Text())
	_, err := r.Reduce(s, PromptClearAction{})
	require.NoError(t, err)
	typeText(t, r, s, "apricot")
	_, err = r.Reduce(s, PromptSubmitAction{})
	require.NoError(t, err)
	assert.Equal(t, "apricot", name.DisplayValue(row, 0))

	run(t, r, s, "go-right")
	_, err = r.Reduce(s, CommandAction{Name: "edit-cell"})
	assert.ErrorIs(t, err, sheet.ErrNotEditable)
	assert.Nil(t, s.Prompt)
}

func TestReadOnlyRefusesEdits(t *testing.T) {
	s, r := newTestState(t, func(o *config.Options) { o.ReadOnly = true })
	s.Push(fruitSheet(s.Env))
	b := s.Current()
	row, _ := b.RowAt(0)

	run(t, r, s, "set-null", "delete-row")
	assert.Equal(t, "apple", b.Columns()[0].DisplayValue(row, 0))
	assert.Equal(t, 4, b.NumRows())
	msg, _ := s.Env.Log.Last()
	assert.Equal(t, "read-only: rows not deleted", msg.Text)
}

func TestDeleteRows(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()

	run(t, r, s, "delete-row")
	assert.Equal(t, 3, b.NumRows())
	run(t, r, s, "select-row", "select-row", "delete-selected")
	assert.Equal(t, 1, b.NumRows())
	assert.Equal(t, 0, b.SelectedCount())
}

func TestColumnCommands(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()
	name, qty := b.Columns()[0], b.Columns()[1]

	before := b.ColumnWidth(name)
	run(t, r, s, "widen-col", "widen-col", "narrow-col")
	assert.Equal(t, before+1, name.Width())
	run(t, r, s, "reset-width")
	assert.Equal(t, before, b.ColumnWidth(name))

	run(t, r, s, "go-right", "toggle-key")
	assert.True(t, qty.IsKey())
	assert.Equal(t, []*sheet.Column{qty, name}, b.VisibleCols())
	assert.Equal(t, 0, b.CursorVisibleColIndex, "cursor follows the column")

	run(t, r, s, "type-string")
	assert.Equal(t, value.TypeString, qty.Type())

	run(t, r, s, "hide-col")
	assert.Equal(t, []*sheet.Column{name}, b.VisibleCols())
	run(t, r, s, "unhide-all")
	assert.Len(t, b.VisibleCols(), 2)
}

func TestSortCommand(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()

	run(t, r, s, "go-right", "sort-desc")
	waitIdle(t, b)
	var qtys []int
	for _, row := range b.Rows() {
		qtys = append(qtys, row.Data.(*record).Qty)
	}
	assert.Equal(t, []int{12, 7, 3, 1}, qtys)
}

func TestSheetStack(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	fruit := s.Current()

	_, err := r.Reduce(s, CommandAction{Name: "filter-selected"})
	assert.Error(t, err, "nothing selected")

	run(t, r, s, "select-row", "select-row", "filter-selected")
	require.Len(t, s.Sheets, 2)
	sub := s.Current()
	waitIdle(t, sub)
	assert.Equal(t, "fruit_selected", sub.Name())
	assert.Equal(t, 2, sub.NumRows())

	run(t, r, s, "toggle-split")
	panes := s.Panes()
	require.Len(t, panes, 2)
	assert.Same(t, sub, panes[0].Sheet.Core())
	assert.Same(t, fruit, panes[1].Sheet.Core())
	assert.Equal(t, panes[0].Height, panes[1].Y)

	run(t, r, s, "quit-sheet")
	assert.Same(t, fruit, s.Current())
	assert.Len(t, s.Panes(), 1, "split needs two sheets")
	assert.False(t, s.ShouldQuit)

	run(t, r, s, "quit-sheet")
	assert.True(t, s.ShouldQuit)
}

func TestMetaSheetCommands(t *testing.T) {
	s, r := newTestState(t)
	s.Env.Log.ReportError("test", "k1", "boom", "detail")

	run(t, r, s, "errors-sheet")
	errs := s.Current()
	waitIdle(t, errs)
	assert.Equal(t, "errors", errs.Name())
	assert.Equal(t, 1, errs.NumRows())

	run(t, r, s, "tasks-sheet")
	tasks := s.Current()
	waitIdle(t, tasks)
	assert.Equal(t, "tasks", tasks.Name())

	_, err := r.Reduce(s, CommandAction{Name: "open-row"})
	assert.Error(t, err)
}

type openerSheet struct {
	*sheet.MemorySheet
}

func (o openerSheet) OpenRow(row *sheet.Row) (sheet.Sheet, error) {
	n := row.Data.(int)
	if n < 0 {
		return nil, errors.New("cannot open")
	}
	data := make([]any, n)
	for i := range data {
		data[i] = i
	}
	col := sheet.NewColumn("n", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
		return value.Int(int64(r.Data.(int))), nil
	})
	return sheet.NewMemorySheetFromData(o.Env(), fmt.Sprintf("sub%d", n), []*sheet.Column{col}, data), nil
}

func TestOpenRow(t *testing.T) {
	s, r := newTestState(t)
	col := sheet.NewColumn("n", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
		return value.Int(int64(r.Data.(int))), nil
	})
	s.Push(openerSheet{sheet.NewMemorySheetFromData(s.Env, "parent", []*sheet.Column{col}, []any{3, -1})})

	run(t, r, s, "open-row")
	sub := s.Current()
	waitIdle(t, sub)
	assert.Equal(t, "sub3", sub.Name())
	assert.Equal(t, 3, sub.NumRows())

	run(t, r, s, "quit-sheet", "go-down")
	_, err := r.Reduce(s, CommandAction{Name: "open-row"})
	assert.EqualError(t, err, "cannot open")
}

func TestCancelSheet(t *testing.T) {
	s, r := newTestState(t)
	s.Push(fruitSheet(s.Env))
	b := s.Current()
	started := make(chan struct{})
	b.Spawn("spin", func(tk *task.Task) error {
		close(started)
		for {
			if err := tk.Checkpoint(); err != nil {
				return err
			}
			time.Sleep(time.Millisecond)
		}
	})
	<-started
	run(t, r, s, "cancel-sheet")
	waitIdle(t, b)
	assert.Eventually(t, func() bool {
		var texts []string
		for _, m := range s.Env.Log.Messages() {
			texts = append(texts, m.Text)
		}
		return slices.Contains(texts, "cancelled 1 tasks") && slices.Contains(texts, "spin cancelled")
	}, 5*time.Second, 5*time.Millisecond)
}

func TestCommandsAreListedByName(t *testing.T) {
	r := NewStateReducer()
	cmds := r.Commands()
	require.NotEmpty(t, cmds)
	for i := 1; i < len(cmds); i++ {
		assert.Less(t, cmds[i-1].Name, cmds[i].Name)
	}
	for _, c := range cmds {
		assert.NotEmpty(t, c.Help, c.Name)
	}
	r.Register(Command{Name: "noop", Help: "nothing", Run: func(*AppState) error { return nil }})
	_, ok := r.Command("noop")
	assert.True(t, ok)
}

func TestQuitAction(t *testing.T) {
	s, r := newTestState(t)
	_, err := r.Reduce(s, QuitAction{})
	require.NoError(t, err)
	assert.True(t, s.ShouldQuit)
}

func TestSuspendIsDispatched(t *testing.T) {
	s, r := newTestState(t)
	var got []Action
	s.SetDispatch(func(a Action) { got = append(got, a) })

	_, err := r.Reduce(s, CommandAction{Name: "suspend"})
	require.NoError(t, err)
	assert.Equal(t, []Action{SuspendAction{}}, got)
}
