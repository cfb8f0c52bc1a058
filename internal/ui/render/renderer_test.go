package render

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/sheet"
	statepkg "github.com/kk-code-lab/vgrid/internal/state"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/value"
)

func newScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func newState(t *testing.T, w, h int, tweak ...func(*config.Options)) *statepkg.AppState {
	t.Helper()
	opts := config.Defaults()
	for _, f := range tweak {
		f(opts)
	}
	env := sheet.NewEnv(opts, nil)
	t.Cleanup(func() { env.Tasks.Shutdown(time.Second) })
	s := statepkg.NewAppState(env)
	s.ScreenWidth, s.ScreenHeight = w, h
	return s
}

func lineText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		mainc, _, _, _ := screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		b.WriteRune(mainc)
	}
	return strings.TrimRight(b.String(), " ")
}

func attrAt(screen tcell.SimulationScreen, x, y int) tcell.AttrMask {
	_, _, style, _ := screen.GetContent(x, y)
	_, _, attrs := style.Decompose()
	return attrs
}

func fruitSheet(env *sheet.Env) *sheet.MemorySheet {
	type fruit struct {
		name string
		qty  int
	}
	data := []any{fruit{"apple", 3}, fruit{"banana", 12}, fruit{"cherry", 7}}
	name := sheet.NewColumn("name", value.TypeString, func(r *sheet.Row) (value.Value, error) {
		return value.String(r.Data.(fruit).name), nil
	})
	qty := sheet.NewColumn("qty", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
		return value.Int(int64(r.Data.(fruit).qty)), nil
	})
	return sheet.NewMemorySheetFromData(env, "fruit", []*sheet.Column{name, qty}, data)
}

func TestRenderGrid(t *testing.T) {
	screen := newScreen(t, 30, 6)
	state := newState(t, 30, 6)
	state.Push(fruitSheet(state.Env))

	r := NewRenderer(screen)
	r.Render(state)

	assert.Equal(t, "name   qty", lineText(screen, 0))
	assert.Equal(t, "apple    3", lineText(screen, 1))
	assert.Equal(t, "banana  12", lineText(screen, 2))
	assert.Equal(t, "cherry   7", lineText(screen, 3))
	assert.Equal(t, "", lineText(screen, 4))
	assert.Contains(t, lineText(screen, 5), "fruit · 3 rows")

	assert.NotZero(t, attrAt(screen, 0, 1)&tcell.AttrReverse, "cursor row")
	assert.Zero(t, attrAt(screen, 0, 2)&tcell.AttrReverse)
	assert.NotZero(t, attrAt(screen, 0, 0)&tcell.AttrBold, "cursor column header")
}

func TestRenderNotesAndSelection(t *testing.T) {
	screen := newScreen(t, 40, 6)
	state := newState(t, 40, 6)
	col := sheet.NewColumn("v", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
		switch n := r.Data.(int); n {
		case 1:
			return value.Null(), nil
		case 2:
			return value.String("x"), nil
		default:
			return value.Int(int64(n)), nil
		}
	})
	s := sheet.NewMemorySheetFromData(state.Env, "notes", []*sheet.Column{col}, []any{0, 1, 2, 3})
	state.Push(s)
	third, _ := s.RowAt(3)
	s.Select(third)

	NewRenderer(screen).Render(state)
	assert.Equal(t, "0", strings.TrimSpace(lineText(screen, 1)))
	assert.Equal(t, "∅", strings.TrimSpace(lineText(screen, 2)))
	assert.Equal(t, "?", strings.TrimSpace(lineText(screen, 3)))
	assert.Contains(t, lineText(screen, 5), "1 selected")

	_, _, style, _ := screen.GetContent(0, 4)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.PaletteColor(215), fg, "selected row color")
}

func TestRenderKeyColumnsAndIndicators(t *testing.T) {
	screen := newScreen(t, 12, 5)
	state := newState(t, 12, 5)
	var cols []*sheet.Column
	for _, name := range []string{"id", "aaaa", "bbbb", "cccc"} {
		cols = append(cols, sheet.NewColumn(name, value.TypeString, func(r *sheet.Row) (value.Value, error) {
			return value.String(name), nil
		}))
	}
	s := sheet.NewMemorySheetFromData(state.Env, "wide", cols, []any{0})
	state.Push(s)
	s.SetKey(cols[0], true)

	r := NewRenderer(screen)
	r.Render(state)
	assert.Equal(t, "id│aaaa bbb>", lineText(screen, 0))

	s.GoRightmost()
	r.Render(state)
	assert.Equal(t, "id│<bbb cccc", lineText(screen, 0))
	assert.Equal(t, "id│bbbb cccc", lineText(screen, 1))
}

func TestRenderSplit(t *testing.T) {
	screen := newScreen(t, 30, 9)
	state := newState(t, 30, 9)
	state.Push(fruitSheet(state.Env))
	sub := fruitSheet(state.Env)
	sub.SetName("second")
	state.Push(sub)
	state.Split = true
	state.Layout()

	NewRenderer(screen).Render(state)
	assert.Equal(t, "name   qty", lineText(screen, 0))
	assert.Equal(t, "apple    3", lineText(screen, 1))
	assert.Equal(t, "name   qty", lineText(screen, 4), "lower pane header")
	assert.Contains(t, lineText(screen, 8), "second")
}

func TestRenderPrompt(t *testing.T) {
	screen := newScreen(t, 60, 4)
	state := newState(t, 60, 4)
	state.OpenPrompt("edit: ", "abc", nil)

	NewRenderer(screen).Render(state)
	line := lineText(screen, 3)
	assert.True(t, strings.HasPrefix(line, "edit: abc"), line)
	assert.Contains(t, line, "Esc: cancel")
}

func TestRenderStatusMessage(t *testing.T) {
	screen := newScreen(t, 60, 4)
	state := newState(t, 60, 4)
	state.Push(fruitSheet(state.Env))
	state.Env.Log.ReportError("test", "k", "line one\nboom", "detail")

	NewRenderer(screen).Render(state)
	line := lineText(screen, 3)
	assert.True(t, strings.HasPrefix(line, "boom"), line)
	_, _, style, _ := screen.GetContent(0, 3)
	fg, _, _ := style.Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
}

// hollowSheet never had its Base set, as a half-built sheet might.
type hollowSheet struct {
	*sheet.Base
}

func (hollowSheet) Reload(*task.Task) error { return nil }

func TestRenderRecoversFromDrawPanic(t *testing.T) {
	screen := newScreen(t, 40, 5)
	state := newState(t, 40, 5)
	state.Sheets = append(state.Sheets, hollowSheet{})

	r := NewRenderer(screen)
	require.NotPanics(t, func() { r.Render(state) })
	assert.Equal(t, "sheet: draw failed", lineText(screen, 0))
	assert.Equal(t, 1, state.Env.Log.ErrorCount())
	assert.Contains(t, state.Env.Log.Errors()[0].Detail, "goroutine")

	r.Render(state)
	assert.Equal(t, 1, state.Env.Log.ErrorCount(), "repeated failures are not re-recorded")
}

func TestRenderStrictModeRepanics(t *testing.T) {
	screen := newScreen(t, 40, 5)
	state := newState(t, 40, 5, func(o *config.Options) { o.Strict = true })
	state.Sheets = append(state.Sheets, hollowSheet{})

	assert.Panics(t, func() { NewRenderer(screen).Render(state) })
}

func TestRenderHelpOverlay(t *testing.T) {
	screen := newScreen(t, 50, 6)
	state := newState(t, 50, 6)
	state.HelpVisible = true

	r := NewRenderer(screen)
	r.SetHelp([]HelpEntry{
		{Keys: []string{"j", "Down"}, Command: "go-down", Help: "move cursor down"},
		{Command: "unbound", Help: "not listed"},
	})
	r.Render(state)
	assert.Equal(t, "Help", strings.TrimSpace(lineText(screen, 0)))
	assert.Equal(t, "  j, Down        go-down          move cursor down", lineText(screen, 2))
	assert.Equal(t, "", lineText(screen, 3))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "999", formatCompactNumber(999))
	assert.Equal(t, "9999", formatCompactNumber(9999))
	assert.Equal(t, "12.3k", formatCompactNumber(12_345))
	assert.Equal(t, "2M", formatCompactNumber(2_000_000))
	assert.Equal(t, "250ms", formatDurationShort(250*time.Millisecond))
	assert.Equal(t, "1.5s", formatDurationShort(1500*time.Millisecond))
	assert.Equal(t, "2m", formatDurationShort(2*time.Minute))
}
