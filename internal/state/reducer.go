package state

import (
	"fmt"
	"strings"
)

// StateReducer applies actions to the state through the command registry.
type StateReducer struct {
	commands map[string]Command
}

// NewStateReducer creates a reducer with the built-in commands.
func NewStateReducer() *StateReducer {
	return &StateReducer{commands: DefaultCommands()}
}

// Register adds or replaces a command.
func (r *StateReducer) Register(cmd Command) {
	r.commands[cmd.Name] = cmd
}

// Command looks up a command by name.
func (r *StateReducer) Command(name string) (Command, bool) {
	cmd, ok := r.commands[name]
	return cmd, ok
}

// Commands lists the registry by name.
func (r *StateReducer) Commands() []Command {
	return SortedCommands(r.commands)
}

// Reduce applies action to state. Command failures are reported on the
// status line and returned.
func (r *StateReducer) Reduce(state *AppState, action Action) (*AppState, error) {
	switch a := action.(type) {

	// ===== COMMANDS =====

	case CommandAction:
		return state, r.run(state, a.Name)

	// ===== VIEW =====

	case ResizeAction:
		state.ScreenWidth = a.Width
		state.ScreenHeight = a.Height
		state.Layout()
		return state, nil

	case ToggleHelpAction:
		state.HelpVisible = !state.HelpVisible
		return state, nil

	// ===== PROMPT =====

	case PromptCharAction:
		if p := state.Prompt; p != nil {
			p.insert(a.Char)
		}
		return state, nil

	case PromptBackspaceAction:
		if p := state.Prompt; p != nil {
			p.backspace()
		}
		return state, nil

	case PromptDeleteAction:
		if p := state.Prompt; p != nil {
			p.deleteForward()
		}
		return state, nil

	case PromptDeleteWordAction:
		if p := state.Prompt; p != nil {
			p.deleteWord()
		}
		return state, nil

	case PromptClearAction:
		if p := state.Prompt; p != nil {
			p.Buffer = p.Buffer[:0]
			p.Cursor = 0
		}
		return state, nil

	case PromptMoveCursorAction:
		if p := state.Prompt; p != nil {
			p.move(a.Direction)
		}
		return state, nil

	case PromptSubmitAction:
		p := state.Prompt
		if p == nil {
			return state, nil
		}
		state.Prompt = nil
		if p.OnSubmit == nil {
			return state, nil
		}
		return state, r.report(state, strings.TrimSuffix(p.Label, ": "), p.OnSubmit(state, p.Text()))

	case PromptCancelAction:
		state.Prompt = nil
		return state, nil

	// ===== APPLICATION =====

	case QuitAction:
		state.ShouldQuit = true
		return state, nil
	}

	return state, fmt.Errorf("unknown action %T", action)
}

func (r *StateReducer) run(state *AppState, name string) error {
	cmd, ok := r.commands[name]
	if !ok {
		return r.report(state, name, fmt.Errorf("no such command"))
	}
	return r.report(state, name, cmd.Run(state))
}

// report records a command failure for the status line and log.
func (r *StateReducer) report(state *AppState, name string, err error) error {
	if err == nil {
		state.LastError = nil
		return nil
	}
	state.LastError = err
	if env := state.Env; env != nil {
		env.Logger.Warn("command failed", "command", name, "err", err)
		env.Log.Statusf("%s: %v", name, err)
	}
	return err
}
