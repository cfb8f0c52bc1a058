package textutil

import "strings"

// formattingRunes are zero-width or bidi formatting codepoints. They measure
// as zero width in most tables but are drawn as a visible placeholder so a
// cell containing them never looks empty or reorders its neighbours.
var formattingRunes = map[rune]struct{}{
	0x061C: {}, // ALM
	0x200B: {}, // ZWSP
	0x200C: {}, // ZWNJ
	0x200D: {}, // ZWJ
	0x200E: {}, // LRM
	0x200F: {}, // RLM
	0x202A: {}, // LRE
	0x202B: {}, // RLE
	0x202C: {}, // PDF
	0x202D: {}, // LRO
	0x202E: {}, // RLO
	0x2028: {}, // LSEP
	0x2029: {}, // PSEP
	0x00AD: {}, // SHY
	0x180E: {}, // MVS
	0x2060: {}, // WJ
	0x2066: {}, // LRI
	0x2067: {}, // RLI
	0x2068: {}, // FSI
	0x2069: {}, // PDI
	0xFEFF: {}, // BOM
}

// SanitizeTerminalText replaces control characters so user-controlled text cannot
// inject terminal escape sequences when rendered.
func SanitizeTerminalText(text string) string {
	for _, r := range text {
		if requiresSanitization(r) {
			return sanitize(text)
		}
	}
	return text
}

func requiresSanitization(r rune) bool {
	if r == '\t' || r == '\n' || r == '\r' {
		return true
	}
	if isFormattingRune(r) {
		return true
	}
	return isControl(r)
}

func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case isFormattingRune(r):
			// dropped: status text has no column to keep aligned
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case isControl(r):
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isFormattingRune(r rune) bool {
	_, ok := formattingRunes[r]
	return ok
}

func isControl(r rune) bool {
	return (r >= 0 && r < 0x20) || (r >= 0x7f && r < 0xa0)
}

// LastLine returns the final non-empty line of a multi-line message.
func LastLine(text string) string {
	text = strings.TrimRight(text, "\r\n ")
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return strings.TrimSpace(text)
}
