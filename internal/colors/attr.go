package colors

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// AttrMask is a bitfield of non-color style flags.
type AttrMask uint8

const (
	AttrBold AttrMask = 1 << iota
	AttrUnderline
	AttrReverse
	AttrDim
	AttrItalic
	AttrBlink
)

var attrNames = map[string]AttrMask{
	"bold":      AttrBold,
	"underline": AttrUnderline,
	"reverse":   AttrReverse,
	"dim":       AttrDim,
	"italic":    AttrItalic,
	"blink":     AttrBlink,
}

// Attr is a resolved terminal attribute: an optional foreground color, a set
// of style flags and the precedence it was requested at.
type Attr struct {
	Color    tcell.Color
	HasColor bool
	Flags    AttrMask
	Prec     int
}

// Neutral is the attribute with no color, no flags and zero precedence.
var Neutral = Attr{}

// Update merges b over a: style flags are unioned, b's color wins only when b
// has a color and b.Prec >= a.Prec, and the result carries the higher
// precedence of the two.
func Update(a, b Attr) Attr {
	out := a
	out.Flags = a.Flags | b.Flags
	if b.HasColor && b.Prec >= a.Prec {
		out.Color = b.Color
		out.HasColor = true
	}
	if b.Prec > out.Prec {
		out.Prec = b.Prec
	}
	return out
}

// WithPrec returns a copy of a at precedence prec.
func (a Attr) WithPrec(prec int) Attr {
	a.Prec = prec
	return a
}

// Style converts a to a tcell style.
func (a Attr) Style() tcell.Style {
	st := tcell.StyleDefault
	if a.HasColor {
		st = st.Foreground(a.Color)
	}
	return st.
		Bold(a.Flags&AttrBold != 0).
		Underline(a.Flags&AttrUnderline != 0).
		Reverse(a.Flags&AttrReverse != 0).
		Dim(a.Flags&AttrDim != 0).
		Italic(a.Flags&AttrItalic != 0).
		Blink(a.Flags&AttrBlink != 0)
}

// ParseAttr parses a space-separated attribute spec such as "bold 33" or
// "underline red". The first recognised color wins; later colors act as
// fallbacks that are ignored. Unknown words are skipped, so a misconfigured
// theme degrades to fewer attributes rather than failing.
func ParseAttr(spec string) (Attr, bool) {
	var a Attr
	known := false
	for _, word := range strings.Fields(strings.ToLower(spec)) {
		if word == "normal" {
			known = true
			continue
		}
		if flag, ok := attrNames[word]; ok {
			a.Flags |= flag
			known = true
			continue
		}
		if a.HasColor {
			continue
		}
		if c, ok := parseColor(word); ok {
			a.Color = c
			a.HasColor = true
			known = true
		}
	}
	return a, known
}

func parseColor(word string) (tcell.Color, bool) {
	if n, err := strconv.Atoi(word); err == nil {
		if n < 0 || n > 255 {
			return tcell.ColorDefault, false
		}
		return tcell.PaletteColor(n), true
	}
	c := tcell.GetColor(word)
	if c == tcell.ColorDefault {
		return c, false
	}
	return c, true
}
