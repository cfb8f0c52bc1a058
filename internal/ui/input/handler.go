package input

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/vgrid/internal/state"
)

// DefaultBindings maps key sequences to command names. A sequence is one
// key name, or a prefix key and a key separated by a space.
func DefaultBindings() map[string]string {
	return map[string]string{
		"Down": "go-down", "j": "go-down",
		"Up": "go-up", "k": "go-up",
		"Left": "go-left", "h": "go-left",
		"Right": "go-right", "l": "go-right",
		"PgDn": "page-down", "Ctrl-F": "page-down",
		"PgUp": "page-up", "Ctrl-B": "page-up",
		"Home": "go-top", "g k": "go-top", "g Up": "go-top",
		"End": "go-bottom", "g j": "go-bottom", "g Down": "go-bottom",
		"g h": "go-leftmost", "g Left": "go-leftmost",
		"g l": "go-rightmost", "g Right": "go-rightmost",

		"s": "select-row", "u": "unselect-row", "t": "toggle-row",
		"g s": "select-all", "g u": "unselect-all",
		"|": "select-regex", "\\": "unselect-regex",

		"!": "toggle-key", "-": "hide-col", "g -": "unhide-all",
		">": "widen-col", "<": "narrow-col", "_": "reset-width",
		"#": "type-int", "%": "type-float", "~": "type-string",
		"@": "type-date", "z ~": "type-any",

		"[": "sort-asc", "]": "sort-desc",

		"e": "edit-cell", "z d": "set-null",
		"d": "delete-row", "g d": "delete-selected",

		"\"": "filter-selected", "Enter": "open-row",
		"Ctrl-R": "reload", "Ctrl-C": "cancel-sheet",
		"Ctrl-E": "errors-sheet", "Ctrl-T": "tasks-sheet",
		"Z": "toggle-split",
		"q": "quit-sheet", "g q": "quit-all", "Ctrl-Q": "quit-all",
		"Ctrl-Z": "suspend",
		"?":      "help",
	}
}

// InputHandler converts tcell events to Actions
type InputHandler struct {
	actionChan chan statepkg.Action
	state      *statepkg.AppState // Reference to current state for mode checking
	bindings   map[string]string
	prefixes   map[string]struct{}
	pending    string
}

// NewInputHandler creates a new input handler
func NewInputHandler(actionChan chan statepkg.Action) *InputHandler {
	ih := &InputHandler{actionChan: actionChan}
	ih.SetBindings(DefaultBindings())
	return ih
}

// SetState sets the state reference for mode checking
func (ih *InputHandler) SetState(state *statepkg.AppState) {
	ih.state = state
}

// SetBindings replaces the key map. Prefix keys are derived from the
// two-key sequences.
func (ih *InputHandler) SetBindings(bindings map[string]string) {
	ih.bindings = bindings
	ih.prefixes = make(map[string]struct{})
	for seq := range bindings {
		if prefix, _, ok := strings.Cut(seq, " "); ok {
			ih.prefixes[prefix] = struct{}{}
		}
	}
	ih.pending = ""
}

// KeysFor lists the sequences bound to command, sorted.
func (ih *InputHandler) KeysFor(command string) []string {
	var keys []string
	for seq, name := range ih.bindings {
		if name == command {
			keys = append(keys, seq)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Pending returns the prefix key awaiting its second key.
func (ih *InputHandler) Pending() string { return ih.pending }

// ProcessEvent converts a tcell event into an Action. It reports whether
// an action was emitted.
func (ih *InputHandler) ProcessEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return ih.processKeyEvent(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		ih.actionChan <- statepkg.ResizeAction{Width: w, Height: h}
		return true
	default:
		return false
	}
}

// KeyName names a key event the way bindings spell it: the rune itself for
// printable keys, tcell's key name otherwise.
func KeyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		name := string(ev.Rune())
		if ev.Modifiers()&tcell.ModAlt != 0 {
			name = "Alt-" + name
		}
		return name
	}
	if name, ok := tcell.KeyNames[ev.Key()]; ok {
		return name
	}
	return fmt.Sprintf("Key[%d]", ev.Key())
}

// processKeyEvent handles keyboard input
func (ih *InputHandler) processKeyEvent(ev *tcell.EventKey) bool {
	if ih.state != nil && ih.state.Prompt != nil {
		return ih.processPromptKey(ev)
	}

	if ih.state != nil && ih.state.HelpVisible {
		switch ev.Key() {
		case tcell.KeyEscape:
			ih.actionChan <- statepkg.ToggleHelpAction{}
			return true
		case tcell.KeyRune:
			if r := ev.Rune(); r == '?' || r == 'q' {
				ih.actionChan <- statepkg.ToggleHelpAction{}
				return true
			}
		}
		return false
	}

	name := KeyName(ev)
	if ih.pending != "" {
		seq := ih.pending + " " + name
		ih.pending = ""
		if cmd, ok := ih.bindings[seq]; ok {
			ih.actionChan <- statepkg.CommandAction{Name: cmd}
			return true
		}
		return false
	}
	if _, ok := ih.prefixes[name]; ok {
		ih.pending = name
		return false
	}
	if cmd, ok := ih.bindings[name]; ok {
		ih.actionChan <- statepkg.CommandAction{Name: cmd}
		return true
	}
	return false
}

func (ih *InputHandler) processPromptKey(ev *tcell.EventKey) bool {
	var action statepkg.Action
	switch ev.Key() {
	case tcell.KeyEnter:
		action = statepkg.PromptSubmitAction{}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		action = statepkg.PromptCancelAction{}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		action = statepkg.PromptBackspaceAction{}
	case tcell.KeyDelete, tcell.KeyCtrlD:
		action = statepkg.PromptDeleteAction{}
	case tcell.KeyCtrlW:
		action = statepkg.PromptDeleteWordAction{}
	case tcell.KeyCtrlU:
		action = statepkg.PromptClearAction{}
	case tcell.KeyLeft, tcell.KeyCtrlB:
		action = statepkg.PromptMoveCursorAction{Direction: "left"}
	case tcell.KeyRight, tcell.KeyCtrlF:
		action = statepkg.PromptMoveCursorAction{Direction: "right"}
	case tcell.KeyHome, tcell.KeyCtrlA:
		action = statepkg.PromptMoveCursorAction{Direction: "home"}
	case tcell.KeyEnd, tcell.KeyCtrlE:
		action = statepkg.PromptMoveCursorAction{Direction: "end"}
	case tcell.KeyRune:
		action = statepkg.PromptCharAction{Char: ev.Rune()}
	default:
		return false
	}
	ih.actionChan <- action
	return true
}
