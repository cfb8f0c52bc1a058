package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplayWidth(t *testing.T) {
	m := NewMetrics(Config{})
	tests := []struct {
		name string
		text string
		want int
	}{
		{"ascii", "abc", 3},
		{"empty", "", 0},
		{"wide cjk", "你好", 4},
		{"fullwidth latin", "ＡＢ", 4},
		{"combining acute", "e\u0301", 1},
		{"zero width space visible", "a\u200bb", 3},
		{"tab is placeholder", "a\tb", 3},
		{"emoji", "😀", 2},
		{"ambiguous default narrow", "±", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Width(tt.text))
		})
	}
}

func TestDisplayWidthAmbiguousWide(t *testing.T) {
	m := NewMetrics(Config{AmbiguousWidth: 2})
	assert.Equal(t, 2, m.Width("±"))
	assert.Equal(t, 4, m.Width("a±b"))
}

func TestPlaceholderIsOneCellWhenAmbiguousIsWide(t *testing.T) {
	m := NewMetrics(Config{AmbiguousWidth: 2})
	require.Equal(t, '·', m.Placeholder())
	assert.Equal(t, 1, m.RuneWidth('\t'))
	assert.Equal(t, 4, m.Width("\tabc"))
	assert.Equal(t, 1, m.Width("·"), "drawn placeholder measures like the codepoint it stands for")

	out, w := m.Clip("\tabc", 1)
	assert.Equal(t, "·", out)
	assert.Equal(t, 1, w)

	out, w = m.Clip("\t\tabc", 3)
	assert.Equal(t, "·…", out)
	assert.Equal(t, 3, w, "the truncator is ambiguous and stays wide")
}

func TestDisplayWidthMemoised(t *testing.T) {
	m := NewMetrics(Config{CacheSize: 8})
	text := "naïve café"
	first := m.Width(text)
	_, ok := m.widths.Get(text)
	require.True(t, ok, "non-ascii widths should be cached")
	assert.Equal(t, first, m.Width(text))
}

func TestClip(t *testing.T) {
	m := NewMetrics(Config{})
	tests := []struct {
		name      string
		text      string
		width     int
		want      string
		wantWidth int
	}{
		{"fits", "value", 20, "value", 5},
		{"exact fit", "value", 5, "value", 5},
		{"adds truncator", "verylongname", 6, "veryl…", 6},
		{"wide runes dropped for truncator", "你好世界", 5, "你好…", 5},
		{"wide rune makes room", "你好世界", 4, "你…", 3},
		{"width one returns first char", "example", 1, "e", 1},
		{"width one wide char", "你好", 1, "", 0},
		{"zero width", "anything", 0, "", 0},
		{"odd space substituted", "a\u00a0b", 3, "a·b", 3},
		{"control substituted", "a\x1bb", 5, "a·b", 3},
		{"combining kept", "e\u0301x", 2, "e\u0301x", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, w := m.Clip(tt.text, tt.width)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantWidth, w)
		})
	}
}

func TestClipMultiWidthTruncator(t *testing.T) {
	m := NewMetrics(Config{Truncator: ">>"})
	got, w := m.Clip("abcdefgh", 5)
	assert.Equal(t, "abc>>", got)
	assert.Equal(t, 5, w)

	got, w = m.Clip("你好世界", 5)
	assert.Equal(t, "你>>", got)
	assert.Equal(t, 4, w)
}

func TestClipTruncatorTooWide(t *testing.T) {
	m := NewMetrics(Config{Truncator: "[more]"})
	got, w := m.Clip("abcdefgh", 4)
	assert.Equal(t, "abcd", got)
	assert.Equal(t, 4, w)
}

func TestClipNeverExceedsWidth(t *testing.T) {
	samples := []string{
		"", "a", "hello world", "你好世界你好", "ééé",
		"tab\tand\nnewline", "mixed 你 a​ b 😀😀", strings.Repeat("ｗ", 30),
		"‮evil", "±±±±±",
	}
	for _, ambiguous := range []int{1, 2} {
		m := NewMetrics(Config{AmbiguousWidth: ambiguous})
		for _, s := range samples {
			for w := 1; w <= 12; w++ {
				clipped, cw := m.Clip(s, w)
				assert.LessOrEqual(t, m.Width(clipped), w, "Clip(%q, %d) = %q", s, w, clipped)
				assert.Equal(t, m.Width(clipped), cw, "reported width for Clip(%q, %d)", s, w)
			}
		}
	}
}

func TestExpandTabs(t *testing.T) {
	assert.Equal(t, "a   b", ExpandTabs("a\tb", 4))
	assert.Equal(t, "你  b", ExpandTabs("你\tb", 4))
	assert.Equal(t, "plain", ExpandTabs("plain", 4))
}
