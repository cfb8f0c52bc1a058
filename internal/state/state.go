package state

import (
	"github.com/kk-code-lab/vgrid/internal/sheet"
)

// AppState is the single source of truth. It is owned by the UI goroutine;
// background tasks reach it only through Env.Post.
type AppState struct {
	Env *sheet.Env

	// Sheets is the sheet stack; the last entry is on top.
	Sheets []sheet.Sheet

	// Split shows the sheet beneath the top one in the lower half.
	Split bool

	Prompt      *Prompt
	HelpVisible bool

	// Dimensions
	ScreenWidth  int
	ScreenHeight int

	// Error state
	LastError error

	ShouldQuit bool

	dispatchAction func(Action)
}

// Pane is the screen area given to one sheet: a header line at Y followed
// by Height-1 data lines.
type Pane struct {
	Sheet  sheet.Sheet
	Y      int
	Height int
}

// NewAppState returns an empty state bound to env.
func NewAppState(env *sheet.Env) *AppState {
	return &AppState{Env: env}
}

// SetDispatch exposes the reducer dispatch hook to other packages.
func (s *AppState) SetDispatch(fn func(Action)) {
	s.dispatchAction = fn
}

// Dispatch queues a for the application loop. Without a dispatch hook it
// is dropped.
func (s *AppState) Dispatch(a Action) {
	if s.dispatchAction != nil {
		s.dispatchAction(a)
	}
}

// Top returns the sheet on top of the stack, or nil.
func (s *AppState) Top() sheet.Sheet {
	if len(s.Sheets) == 0 {
		return nil
	}
	return s.Sheets[len(s.Sheets)-1]
}

// Current returns the Base of the top sheet, or nil.
func (s *AppState) Current() *sheet.Base {
	if top := s.Top(); top != nil {
		return top.Core()
	}
	return nil
}

// Push puts sh on top of the stack and sizes it to its pane.
func (s *AppState) Push(sh sheet.Sheet) {
	s.Sheets = append(s.Sheets, sh)
	s.Layout()
}

// PushAndLoad pushes sh and starts its reload.
func (s *AppState) PushAndLoad(sh sheet.Sheet) {
	s.Push(sh)
	sheet.StartReload(sh)
}

// Pop removes the top sheet and cancels its tasks. It reports whether a
// sheet was removed.
func (s *AppState) Pop() bool {
	top := s.Top()
	if top == nil {
		return false
	}
	top.Core().CancelTasks()
	s.Sheets[len(s.Sheets)-1] = nil
	s.Sheets = s.Sheets[:len(s.Sheets)-1]
	s.Layout()
	return true
}

// Panes splits the screen above the status line between the visible
// sheets, top sheet first.
func (s *AppState) Panes() []Pane {
	avail := s.ScreenHeight - 1
	top := s.Top()
	if top == nil || avail <= 0 {
		return nil
	}
	if !s.Split || len(s.Sheets) < 2 || avail < 4 {
		return []Pane{{Sheet: top, Y: 0, Height: avail}}
	}
	upper := avail / 2
	return []Pane{
		{Sheet: top, Y: 0, Height: upper},
		{Sheet: s.Sheets[len(s.Sheets)-2], Y: upper, Height: avail - upper},
	}
}

// Layout sizes every visible sheet's viewport to its pane.
func (s *AppState) Layout() {
	for _, p := range s.Panes() {
		p.Sheet.Core().SetWindow(s.ScreenWidth, max(p.Height-1, 0))
	}
}
