package textutil

import "strings"

const DefaultTabWidth = 8

// ExpandTabs expands tabs with the default metrics.
func ExpandTabs(text string, tabWidth int) string {
	return Default().ExpandTabs(text, tabWidth)
}

// ExpandTabs replaces each tab with spaces up to the next multiple of
// tabWidth, counting columns by display width.
func (m *Metrics) ExpandTabs(text string, tabWidth int) string {
	if tabWidth <= 0 || !strings.ContainsRune(text, '\t') {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + tabWidth)
	col := 0
	for _, r := range text {
		if r != '\t' {
			b.WriteRune(r)
			col += m.RuneWidth(r)
			continue
		}
		n := tabWidth - col%tabWidth
		b.WriteString(strings.Repeat(" ", n))
		col += n
	}
	return b.String()
}
