package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/sheet"
	inputui "github.com/kk-code-lab/vgrid/internal/ui/input"
)

func newTestApp(t *testing.T, tweak ...func(*config.Options)) (*Application, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(40, 8)

	opts := config.Defaults()
	for _, f := range tweak {
		f(opts)
	}
	app := NewApplication(screen, sheet.NewEnv(opts, nil))
	t.Cleanup(func() { _ = app.Close() })
	return app, screen
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fruit.csv")
	require.NoError(t, os.WriteFile(path, []byte("name,qty\napple,3\nbanana,12\n"), 0o644))
	return path
}

func waitLoaded(t *testing.T, app *Application) {
	t.Helper()
	require.Eventually(t, func() bool {
		return !app.state.Env.Tasks.Busy()
	}, 5*time.Second, 5*time.Millisecond)
}

func runAsync(app *Application) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		app.Run()
		close(finished)
	}()
	return finished
}

func waitFinished(t *testing.T, finished <-chan struct{}) {
	t.Helper()
	select {
	case <-finished:
	case <-time.After(5 * time.Second):
		t.Fatal("application loop did not stop")
	}
}

func lineText(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	line := make([]rune, 0, w)
	for x := 0; x < w; x++ {
		mainc, _, _, _ := screen.GetContent(x, y)
		if mainc == 0 {
			mainc = ' '
		}
		line = append(line, mainc)
	}
	return string(line)
}

func TestRunAppliesKeysUntilLastSheetCloses(t *testing.T) {
	app, screen := newTestApp(t)
	require.NoError(t, app.Open(writeCSV(t)))
	waitLoaded(t, app)
	b := app.State().Current()
	require.NotNil(t, b)

	screen.InjectKey(tcell.KeyRune, 'j', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 's', tcell.ModNone)
	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	waitFinished(t, runAsync(app))

	assert.True(t, app.State().ShouldQuit)
	assert.Empty(t, app.State().Sheets)
	require.Equal(t, 1, b.SelectedCount())
	name, ok := b.ColumnByName("name")
	require.True(t, ok)
	assert.Equal(t, "banana", name.DisplayValue(b.SelectedRows()[0], 0))

	assert.Contains(t, lineText(screen, 0), "name")
	assert.Contains(t, lineText(screen, 1), "apple")
}

func TestPostRunsOnLoop(t *testing.T) {
	app, _ := newTestApp(t)
	finished := runAsync(app)

	ran := false
	app.state.Env.Post(func() {
		ran = true
		app.state.ShouldQuit = true
	})
	waitFinished(t, finished)
	assert.True(t, ran)

	// After the loop stopped, posted work is dropped instead of blocking.
	dropped := true
	app.state.Env.Post(func() { dropped = false })
	assert.True(t, dropped)
}

func TestOpenAppliesConfiguredColorizers(t *testing.T) {
	app, _ := newTestApp(t, func(o *config.Options) {
		o.Colorizers = []config.ColorRule{
			{Scope: "cell", Prec: 9, Color: "green", When: `column == "qty" && text == "12"`},
			{Scope: "row", Color: "red", When: "value >"},
		}
	})
	require.NoError(t, app.Open(writeCSV(t)))
	waitLoaded(t, app)

	b := app.State().Current()
	qty, ok := b.ColumnByName("qty")
	require.True(t, ok)
	banana, ok := b.RowAt(1)
	require.True(t, ok)
	apple, _ := b.RowAt(0)

	hit := b.CellAttr(sheet.CellRef{Col: qty, Row: banana, ColIdx: 1, RowIdx: 1})
	assert.Equal(t, tcell.ColorGreen, hit.Color)
	miss := b.CellAttr(sheet.CellRef{Col: qty, Row: apple, ColIdx: 1, RowIdx: 0})
	assert.NotEqual(t, tcell.ColorGreen, miss.Color)
	assert.Equal(t, 1, app.State().Env.Log.ErrorCount(), "bad rule reported")

	// Re-decorating the same sheet must not stack the rules twice.
	app.decorateStack()
	assert.Equal(t, 1, app.State().Env.Log.ErrorCount())
}

func TestOpenMissingFile(t *testing.T) {
	app, _ := newTestApp(t)
	err := app.Open(filepath.Join(t.TempDir(), "absent.csv"))
	assert.Error(t, err)
	assert.Empty(t, app.State().Sheets)
}

func TestHelpEntriesCarryBindings(t *testing.T) {
	app, _ := newTestApp(t)
	var found bool
	for _, e := range app.helpEntries() {
		if e.Command == "go-down" {
			found = true
			assert.Equal(t, []string{"j", "Down"}, e.Keys)
			assert.NotEmpty(t, e.Help)
		}
	}
	assert.True(t, found)
}

func TestEveryBindingNamesACommand(t *testing.T) {
	app, _ := newTestApp(t)
	for key, name := range inputui.DefaultBindings() {
		_, ok := app.reducer.Command(name)
		assert.True(t, ok, "%q is bound to unknown command %q", key, name)
	}
}
