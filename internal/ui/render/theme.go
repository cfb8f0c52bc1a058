package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/kk-code-lab/vgrid/internal/colors"
)

// ColorTheme holds the styles of the fixed screen parts, resolved from the
// color table once per frame.
type ColorTheme struct {
	Header        colors.Attr
	CurrentHeader colors.Attr
	ColumnSep     colors.Attr
	More          tcell.Style
	Status        tcell.Style
	StatusError   tcell.Style
	Prompt        tcell.Style
}

// GetColorTheme resolves the theme from table.
func GetColorTheme(table *colors.Table) ColorTheme {
	return ColorTheme{
		Header:        table.Get(colors.Header),
		CurrentHeader: table.Get(colors.CurrentHeader),
		ColumnSep:     table.Get(colors.ColumnSep),
		More:          table.Get(colors.MoreIndicator).Style(),
		Status:        table.Get(colors.Status).Style(),
		StatusError:   table.Get(colors.StatusError).Style(),
		Prompt:        table.Get(colors.Prompt).Style(),
	}
}
