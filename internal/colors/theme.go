package colors

// Theme names used by the renderer and built-in colorizers.
const (
	Default       = "default"
	CurrentRow    = "current_row"
	CurrentCol    = "current_col"
	CurrentHeader = "current_hdr"
	SelectedRow   = "selected_row"
	KeyCol        = "key_col"
	ColumnSep     = "column_sep"
	Header        = "header"
	Error         = "error"
	TypeError     = "note_type"
	Null          = "note_null"
	MoreIndicator = "more"
	Status        = "status"
	StatusError   = "status_error"
	Prompt        = "prompt"
)

// DefaultTheme returns the built-in attribute specs for the theme names.
func DefaultTheme() map[string]string {
	return map[string]string{
		Default:       "normal",
		CurrentRow:    "reverse",
		CurrentCol:    "bold",
		CurrentHeader: "bold reverse",
		SelectedRow:   "215 yellow",
		KeyCol:        "81 cyan",
		ColumnSep:     "246 blue",
		Header:        "bold underline",
		Error:         "red",
		TypeError:     "226 yellow",
		Null:          "dim",
		MoreIndicator: "bold 33",
		Status:        "bold",
		StatusError:   "bold red",
		Prompt:        "bold 33",
	}
}
