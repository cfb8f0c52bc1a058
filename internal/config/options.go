package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ColorRule is a configured colorizer: cells in scope matching When (an
// expression over value, display, column, row and selected) get Color at
// precedence Prec.
type ColorRule struct {
	Scope string `toml:"scope"` // "row", "col" or "cell"
	Prec  int    `toml:"prec"`
	Color string `toml:"color"`
	When  string `toml:"when"`
}

// DefaultCacheSize bounds each column's value cache when cache_size is
// not positive.
const DefaultCacheSize = 4096

// Options is the application option table.
type Options struct {
	DefaultWidth   int    `toml:"default_width"`
	NullGlyph      string `toml:"null_glyph"`
	ErrorGlyph     string `toml:"error_glyph"`
	TypeErrorGlyph string `toml:"type_error_glyph"`
	Truncator      string `toml:"truncator"`
	OddSpace       string `toml:"oddspace"`
	MoreLeft       string `toml:"more_left"`
	MoreRight      string `toml:"more_right"`
	ColumnSep      string `toml:"col_sep"`
	KeySep         string `toml:"key_sep"`
	Fill           string `toml:"fill"`
	AmbiguousWidth int    `toml:"ambiguous_width"`
	CacheSize      int    `toml:"cache_size"`
	ErrorRing      int    `toml:"error_ring"`
	ReadOnly       bool   `toml:"read_only"`
	Strict         bool   `toml:"strict"`

	CSVDelimiter string `toml:"csv_delimiter"`
	Encoding     string `toml:"encoding"`
	HeaderRows   int    `toml:"header_rows"`

	Theme      map[string]string `toml:"theme"`
	Colorizers []ColorRule       `toml:"colorizer"`
}

// Defaults returns the built-in option table.
func Defaults() *Options {
	return &Options{
		DefaultWidth:   20,
		NullGlyph:      "∅",
		ErrorGlyph:     "!",
		TypeErrorGlyph: "?",
		Truncator:      "…",
		OddSpace:       "·",
		MoreLeft:       "<",
		MoreRight:      ">",
		ColumnSep:      " ",
		KeySep:         "│",
		Fill:           " ",
		AmbiguousWidth: 1,
		CacheSize:      DefaultCacheSize,
		ErrorRing:      10,
		Encoding:       "utf-8",
		HeaderRows:     1,
		Theme:          map[string]string{},
	}
}

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "vgrid", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error when
// optional is set.
func Load(path string, optional bool) (*Options, error) {
	opts := Defaults()
	if path == "" {
		return opts, nil
	}
	md, err := toml.DecodeFile(path, opts)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return opts, nil
		}
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config %s: unknown option %q", path, undecoded[0].String())
	}
	return opts, opts.Validate()
}

// Validate normalises out-of-range values and rejects unusable ones.
func (o *Options) Validate() error {
	if o.DefaultWidth < 1 {
		return fmt.Errorf("default_width must be positive, got %d", o.DefaultWidth)
	}
	if o.AmbiguousWidth != 1 && o.AmbiguousWidth != 2 {
		return fmt.Errorf("ambiguous_width must be 1 or 2, got %d", o.AmbiguousWidth)
	}
	if o.CacheSize < 1 {
		o.CacheSize = DefaultCacheSize
	}
	if o.ErrorRing < 1 {
		o.ErrorRing = 10
	}
	if o.Fill == "" {
		o.Fill = " "
	}
	if o.Theme == nil {
		o.Theme = map[string]string{}
	}
	for i, r := range o.Colorizers {
		switch r.Scope {
		case "row", "col", "cell":
		default:
			return fmt.Errorf("colorizer %d: scope must be row, col or cell, got %q", i, r.Scope)
		}
		if r.When == "" {
			return fmt.Errorf("colorizer %d: empty when expression", i)
		}
	}
	return nil
}

// FillRune returns the first rune of Fill.
func (o *Options) FillRune() rune {
	for _, r := range o.Fill {
		return r
	}
	return ' '
}

// OddSpaceRune returns the first rune of OddSpace.
func (o *Options) OddSpaceRune() rune {
	for _, r := range o.OddSpace {
		return r
	}
	return 0
}
