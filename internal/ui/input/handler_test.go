package input

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/vgrid/internal/state"
)

func expectAction(t *testing.T, ch chan statepkg.Action) statepkg.Action {
	t.Helper()
	select {
	case action := <-ch:
		return action
	default:
		t.Fatal("Expected an action to be emitted")
		return nil
	}
}

func expectNoAction(t *testing.T, ch chan statepkg.Action) {
	t.Helper()
	select {
	case action := <-ch:
		t.Fatalf("Expected no action, got %#v", action)
	default:
	}
}

func runeKey(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestSingleKeyBindings(t *testing.T) {
	tests := []struct {
		ev   *tcell.EventKey
		want string
	}{
		{tcell.NewEventKey(tcell.KeyDown, 0, tcell.ModNone), "go-down"},
		{runeKey('j'), "go-down"},
		{tcell.NewEventKey(tcell.KeyPgUp, 0, tcell.ModNone), "page-up"},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), "open-row"},
		{tcell.NewEventKey(tcell.KeyCtrlR, 0, tcell.ModCtrl), "reload"},
		{runeKey('['), "sort-asc"},
		{runeKey('|'), "select-regex"},
		{runeKey('q'), "quit-sheet"},
	}

	for _, tt := range tests {
		actionChan := make(chan statepkg.Action, 1)
		handler := NewInputHandler(actionChan)
		handler.SetState(&statepkg.AppState{})

		if !handler.ProcessEvent(tt.ev) {
			t.Fatalf("%s: expected an action", KeyName(tt.ev))
		}
		action := expectAction(t, actionChan)
		cmd, ok := action.(statepkg.CommandAction)
		if !ok || cmd.Name != tt.want {
			t.Fatalf("%s: expected %s, got %#v", KeyName(tt.ev), tt.want, action)
		}
	}
}

func TestPrefixKeys(t *testing.T) {
	actionChan := make(chan statepkg.Action, 1)
	handler := NewInputHandler(actionChan)
	handler.SetState(&statepkg.AppState{})

	if handler.ProcessEvent(runeKey('g')) {
		t.Fatal("prefix key should not emit an action")
	}
	if handler.Pending() != "g" {
		t.Fatalf("expected pending prefix g, got %q", handler.Pending())
	}
	handler.ProcessEvent(runeKey('s'))
	if cmd := expectAction(t, actionChan).(statepkg.CommandAction); cmd.Name != "select-all" {
		t.Fatalf("expected select-all, got %s", cmd.Name)
	}

	handler.ProcessEvent(runeKey('z'))
	handler.ProcessEvent(runeKey('x'))
	expectNoAction(t, actionChan)
	if handler.Pending() != "" {
		t.Fatal("unknown sequence should clear the prefix")
	}

	handler.ProcessEvent(runeKey('s'))
	if cmd := expectAction(t, actionChan).(statepkg.CommandAction); cmd.Name != "select-row" {
		t.Fatalf("expected select-row, got %s", cmd.Name)
	}
}

func TestUnboundKeyIsIgnored(t *testing.T) {
	actionChan := make(chan statepkg.Action, 1)
	handler := NewInputHandler(actionChan)
	handler.SetState(&statepkg.AppState{})

	if handler.ProcessEvent(runeKey('Y')) {
		t.Fatal("unbound key should not emit")
	}
	expectNoAction(t, actionChan)
}

func TestPromptKeys(t *testing.T) {
	state := &statepkg.AppState{}
	state.OpenPrompt("> ", "", nil)

	tests := []struct {
		ev   *tcell.EventKey
		want statepkg.Action
	}{
		{runeKey('q'), statepkg.PromptCharAction{Char: 'q'}},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), statepkg.PromptSubmitAction{}},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), statepkg.PromptCancelAction{}},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), statepkg.PromptBackspaceAction{}},
		{tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModCtrl), statepkg.PromptDeleteWordAction{}},
		{tcell.NewEventKey(tcell.KeyHome, 0, tcell.ModNone), statepkg.PromptMoveCursorAction{Direction: "home"}},
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), statepkg.PromptMoveCursorAction{Direction: "left"}},
	}
	for _, tt := range tests {
		actionChan := make(chan statepkg.Action, 1)
		handler := NewInputHandler(actionChan)
		handler.SetState(state)
		handler.ProcessEvent(tt.ev)
		if got := expectAction(t, actionChan); got != tt.want {
			t.Fatalf("%s: expected %#v, got %#v", KeyName(tt.ev), tt.want, got)
		}
	}
}

func TestEscapeHidesHelp(t *testing.T) {
	actionChan := make(chan statepkg.Action, 1)
	handler := NewInputHandler(actionChan)
	handler.SetState(&statepkg.AppState{HelpVisible: true})

	handler.ProcessEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if _, ok := expectAction(t, actionChan).(statepkg.ToggleHelpAction); !ok {
		t.Fatal("Expected ToggleHelpAction")
	}

	handler.ProcessEvent(runeKey('j'))
	expectNoAction(t, actionChan)
}

func TestResizeEvent(t *testing.T) {
	actionChan := make(chan statepkg.Action, 1)
	handler := NewInputHandler(actionChan)
	handler.ProcessEvent(tcell.NewEventResize(80, 24))
	if got := expectAction(t, actionChan); got != (statepkg.ResizeAction{Width: 80, Height: 24}) {
		t.Fatalf("unexpected action %#v", got)
	}
}

func TestKeysFor(t *testing.T) {
	handler := NewInputHandler(make(chan statepkg.Action, 1))
	keys := handler.KeysFor("go-top")
	want := []string{"g k", "Home", "g Up"}
	if len(keys) != len(want) {
		t.Fatalf("expected %v, got %v", want, keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, keys)
		}
	}
}
