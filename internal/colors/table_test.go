package colors

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAttr(t *testing.T) {
	tests := []struct {
		spec     string
		color    tcell.Color
		hasColor bool
		flags    AttrMask
	}{
		{"bold", tcell.ColorDefault, false, AttrBold},
		{"bold 33", tcell.PaletteColor(33), true, AttrBold},
		{"215 yellow", tcell.PaletteColor(215), true, 0},
		{"underline red", tcell.ColorRed, true, AttrUnderline},
		{"reverse bogus", tcell.ColorDefault, false, AttrReverse},
		{"300 blue", tcell.ColorBlue, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			a, ok := ParseAttr(tt.spec)
			require.True(t, ok)
			assert.Equal(t, tt.hasColor, a.HasColor)
			if tt.hasColor {
				assert.Equal(t, tt.color, a.Color)
			}
			assert.Equal(t, tt.flags, a.Flags)
		})
	}
}

func TestParseAttrUnknown(t *testing.T) {
	_, ok := ParseAttr("sparkly glitter")
	assert.False(t, ok)
}

func TestUpdate(t *testing.T) {
	red := Attr{Color: tcell.ColorRed, HasColor: true, Flags: AttrBold, Prec: 1}
	blue := Attr{Color: tcell.ColorBlue, HasColor: true, Prec: 2}

	got := Update(red, blue)
	assert.Equal(t, tcell.ColorBlue, got.Color)
	assert.Equal(t, AttrBold, got.Flags)
	assert.Equal(t, 2, got.Prec)

	got = Update(blue, red)
	assert.Equal(t, tcell.ColorBlue, got.Color, "lower precedence must not take the color")
	assert.Equal(t, AttrBold, got.Flags, "flags are unioned regardless of precedence")
	assert.Equal(t, 2, got.Prec)

	flagsOnly := Attr{Flags: AttrUnderline, Prec: 5}
	got = Update(red, flagsOnly)
	assert.Equal(t, tcell.ColorRed, got.Color)
	assert.Equal(t, AttrBold|AttrUnderline, got.Flags)
	assert.Equal(t, 5, got.Prec)
}

func TestResolveStackPrecedence(t *testing.T) {
	table := NewTable(map[string]string{"red": "bold red", "blue": "blue"})

	got := table.ResolveStack([]Request{{Name: "blue", Prec: 2}, {Name: "red", Prec: 1}})
	assert.True(t, got.HasColor)
	assert.Equal(t, tcell.ColorBlue, got.Color)
	assert.Equal(t, AttrBold, got.Flags&AttrBold, "style from the lower tier survives")
	assert.Equal(t, 2, got.Prec)
}

func TestResolveStackSameTierLaterWins(t *testing.T) {
	table := NewTable(nil)
	got := table.ResolveStack([]Request{{Name: "red", Prec: 3}, {Name: "green", Prec: 3}})
	assert.Equal(t, tcell.ColorGreen, got.Color)
}

func TestUnknownNameIsNeutral(t *testing.T) {
	table := NewTable(map[string]string{"broken": "not-a-color"})
	assert.Equal(t, Neutral, table.Get("broken"))
	assert.Equal(t, Neutral, table.Get("missing-name"))

	got := table.ResolveStack([]Request{{Name: "missing-name", Prec: 9}, {Name: "red", Prec: 1}})
	assert.Equal(t, tcell.ColorRed, got.Color, "unknown names must not block lower tiers")
}

func TestStyle(t *testing.T) {
	a := Attr{Color: tcell.ColorRed, HasColor: true, Flags: AttrBold | AttrReverse}
	fg, _, attrs := a.Style().Decompose()
	assert.Equal(t, tcell.ColorRed, fg)
	assert.NotZero(t, attrs&tcell.AttrBold)
	assert.NotZero(t, attrs&tcell.AttrReverse)
	assert.Zero(t, attrs&tcell.AttrUnderline)
}
