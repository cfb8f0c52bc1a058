package textutil

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/width"
)

const (
	defaultWidthCacheSize = 16384
	DefaultTruncator      = "…"
	DefaultPlaceholder    = '·'
)

// Metrics measures and clips text in terminal cells. A Metrics value is safe
// for concurrent use; widths of whole strings are memoised because the same
// cell text is measured on every frame.
type Metrics struct {
	ambiguous   int
	truncator   string
	placeholder rune
	widths      *lru.Cache[string, int]
}

// Config tunes a Metrics instance. Zero fields fall back to defaults.
type Config struct {
	AmbiguousWidth int
	Truncator      string
	Placeholder    rune
	CacheSize      int
}

// NewMetrics builds a Metrics from cfg.
func NewMetrics(cfg Config) *Metrics {
	m := &Metrics{
		ambiguous:   cfg.AmbiguousWidth,
		truncator:   cfg.Truncator,
		placeholder: cfg.Placeholder,
	}
	if m.ambiguous != 2 {
		m.ambiguous = 1
	}
	if m.truncator == "" {
		m.truncator = DefaultTruncator
	}
	if m.placeholder == 0 {
		m.placeholder = DefaultPlaceholder
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = defaultWidthCacheSize
	}
	cache, err := lru.New[string, int](size)
	if err != nil {
		panic(err) // only fails for non-positive sizes
	}
	m.widths = cache
	return m
}

var (
	defaultMetrics   *Metrics
	defaultMetricsMu sync.RWMutex
)

// Default returns the process-wide Metrics used by the package-level helpers.
func Default() *Metrics {
	defaultMetricsMu.RLock()
	m := defaultMetrics
	defaultMetricsMu.RUnlock()
	if m != nil {
		return m
	}
	defaultMetricsMu.Lock()
	defer defaultMetricsMu.Unlock()
	if defaultMetrics == nil {
		defaultMetrics = NewMetrics(Config{})
	}
	return defaultMetrics
}

// SetDefault replaces the process-wide Metrics, typically once at startup
// after options are loaded.
func SetDefault(m *Metrics) {
	defaultMetricsMu.Lock()
	defaultMetrics = m
	defaultMetricsMu.Unlock()
}

// DisplayWidth reports the printable width of text using the default Metrics.
func DisplayWidth(text string) int {
	return Default().Width(text)
}

// Clip clips text to maxWidth cells using the default Metrics.
func Clip(text string, maxWidth int) (string, int) {
	return Default().Clip(text, maxWidth)
}

// Truncator returns the truncation indicator.
func (m *Metrics) Truncator() string { return m.truncator }

// Placeholder returns the glyph drawn in place of odd codepoints.
func (m *Metrics) Placeholder() rune { return m.placeholder }

// IsOdd reports whether r is drawn as the placeholder glyph instead of
// literally: formatting runes, controls and whitespace other than ' '.
func IsOdd(r rune) bool {
	if r == ' ' {
		return false
	}
	if isFormattingRune(r) || isControl(r) {
		return true
	}
	return unicode.IsSpace(r)
}

// RuneWidth returns the cell width of a single codepoint. Odd codepoints
// and the placeholder itself occupy one cell whatever the placeholder's
// own class, so clipped text measures the same when drawn.
func (m *Metrics) RuneWidth(r rune) int {
	if IsOdd(r) || r == m.placeholder {
		return 1
	}
	return m.classWidth(r)
}

func (m *Metrics) classWidth(r rune) int {
	if r < utf8.RuneSelf {
		return 1
	}
	if unicode.In(r, unicode.Mn, unicode.Me) || runewidth.RuneWidth(r) == 0 {
		return 0
	}
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	case width.EastAsianAmbiguous:
		return m.ambiguous
	default:
		return 1
	}
}

// Width returns the display width of text.
func (m *Metrics) Width(text string) int {
	if isPlainASCII(text) {
		return len(text)
	}
	if w, ok := m.widths.Get(text); ok {
		return w
	}
	w := 0
	for _, r := range text {
		w += m.RuneWidth(r)
	}
	m.widths.Add(text, w)
	return w
}

func isPlainASCII(text string) bool {
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c >= 0x7f {
			return false
		}
	}
	return true
}

type clipUnit struct {
	glyph rune
	width int
}

// Clip returns the longest prefix of text fitting in maxWidth cells, with the
// truncation indicator appended when text had to be cut and the indicator
// fits. Odd codepoints are replaced by the placeholder glyph. The returned
// int is the display width of the returned string.
//
// A maxWidth of 1 yields the first character unmodified (no indicator).
func (m *Metrics) Clip(text string, maxWidth int) (string, int) {
	if maxWidth <= 0 || text == "" {
		return "", 0
	}
	if maxWidth == 1 {
		r, _ := utf8.DecodeRuneInString(text)
		if IsOdd(r) {
			return string(m.placeholder), 1
		}
		w := m.RuneWidth(r)
		if w > 1 {
			return "", 0
		}
		return string(r), w
	}
	if isPlainASCII(text) && len(text) <= maxWidth {
		return text, len(text)
	}

	units := make([]clipUnit, 0, maxWidth)
	used := 0
	for _, r := range text {
		u := clipUnit{glyph: r, width: m.RuneWidth(r)}
		if IsOdd(r) {
			u.glyph = m.placeholder
		}
		if used+u.width > maxWidth {
			tw := m.Width(m.truncator)
			if tw > maxWidth {
				return unitsString(units, ""), used
			}
			for used+tw > maxWidth && len(units) > 0 {
				used -= units[len(units)-1].width
				units = units[:len(units)-1]
			}
			return unitsString(units, m.truncator), used + tw
		}
		units = append(units, u)
		used += u.width
	}
	return unitsString(units, ""), used
}

func unitsString(units []clipUnit, suffix string) string {
	var b strings.Builder
	b.Grow(len(units) + len(suffix))
	for _, u := range units {
		b.WriteRune(u.glyph)
	}
	b.WriteString(suffix)
	return b.String()
}
