package state

// Action is the base interface for all state mutations
type Action interface{}

// ===== COMMAND ACTIONS =====

// CommandAction runs a registered command by name.
type CommandAction struct {
	Name string
}

// ===== VIEW ACTIONS =====

type ResizeAction struct {
	Width  int
	Height int
}

type ToggleHelpAction struct{}

// ===== PROMPT ACTIONS =====

type PromptCharAction struct {
	Char rune
}
type PromptBackspaceAction struct{}
type PromptDeleteAction struct{}
type PromptDeleteWordAction struct{}
type PromptClearAction struct{}
type PromptMoveCursorAction struct {
	Direction string // "left", "right", "home", "end"
}
type PromptSubmitAction struct{}
type PromptCancelAction struct{}

// ===== APPLICATION ACTIONS =====

type QuitAction struct{}

// SuspendAction stops the process and hands the terminal back to the shell
// until it is resumed.
type SuspendAction struct{}
