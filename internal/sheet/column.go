package sheet

import (
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"

	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/value"
)

// WidthUnset marks a column whose width is computed from visible content.
const WidthUnset = -1

// ErrNotEditable is returned by SetValue on columns without a setter.
var ErrNotEditable = errors.New("column is not editable")

// Getter computes a raw cell value from a row. It may fail or panic.
type Getter func(r *Row) (value.Value, error)

// Setter writes a cell value back into a row.
type Setter func(r *Row, v value.Value) error

// Column turns rows into cell values: raw getter output is memoised per row,
// coerced to the column type on demand, and formatted for display. Faults at
// any step become error values instead of escaping.
type Column struct {
	mu    sync.RWMutex
	name  string
	typ   value.Type
	fmt   string
	key   bool
	width int
	// auto marks width as measured from rows rather than set explicitly.
	auto   bool
	getter Getter
	setter Setter

	cached    bool
	cacheSize int
	cache     *lru.Cache[uint64, value.Value]

	// typeFaults holds the keys of coercion failures already reported.
	typeFaults map[string]struct{}

	sheet *Base
}

// ColumnOption customises NewColumn.
type ColumnOption func(*Column)

// WithSetter makes the column editable.
func WithSetter(s Setter) ColumnOption { return func(c *Column) { c.setter = s } }

// WithWidth fixes the column width. Zero hides the column.
func WithWidth(w int) ColumnOption { return func(c *Column) { c.width = w } }

// WithFormat sets a fmt-style (or time layout) display format.
func WithFormat(f string) ColumnOption { return func(c *Column) { c.fmt = f } }

// AsKey marks the column as a key column.
func AsKey() ColumnOption { return func(c *Column) { c.key = true } }

// Uncached disables raw value memoisation, for cheap getters.
func Uncached() ColumnOption { return func(c *Column) { c.cached = false } }

// WithCacheSize bounds the per-column value cache.
func WithCacheSize(n int) ColumnOption { return func(c *Column) { c.cacheSize = n } }

// NewColumn builds a column of type typ reading cells through get.
func NewColumn(name string, typ value.Type, get Getter, opts ...ColumnOption) *Column {
	c := &Column{
		name:   name,
		typ:    typ,
		width:  WidthUnset,
		getter: get,
		cached: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone copies the column definition without its cache or sheet.
func (c *Column) Clone() *Column {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return &Column{
		name:      c.name,
		typ:       c.typ,
		fmt:       c.fmt,
		key:       c.key,
		width:     c.width,
		auto:      c.auto,
		getter:    c.getter,
		setter:    c.setter,
		cached:    c.cached,
		cacheSize: c.cacheSize,
	}
}

func (c *Column) attach(b *Base) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sheet = b
	if !c.cached {
		return
	}
	size := c.cacheSize
	if size <= 0 {
		size = b.env.Options.CacheSize
	}
	if size <= 0 {
		size = config.DefaultCacheSize
	}
	cache, err := lru.New[uint64, value.Value](size)
	if err != nil {
		panic(err)
	}
	c.cache = cache
}

func (c *Column) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName renames the column. A measured width is recomputed; an explicit
// one is kept.
func (c *Column) SetName(name string) {
	c.mu.Lock()
	c.name = name
	if c.auto {
		c.width, c.auto = WidthUnset, false
	}
	c.mu.Unlock()
}

func (c *Column) Type() value.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.typ
}

func (c *Column) SetType(t value.Type) {
	c.mu.Lock()
	c.typ = t
	c.typeFaults = nil
	c.mu.Unlock()
}

func (c *Column) Format() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fmt
}

func (c *Column) SetFormat(f string) {
	c.mu.Lock()
	c.fmt = f
	c.mu.Unlock()
}

func (c *Column) IsKey() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *Column) setKey(key bool) {
	c.mu.Lock()
	c.key = key
	c.mu.Unlock()
}

// Width returns the fixed width, 0 for hidden, or WidthUnset.
func (c *Column) Width() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.width
}

// SetWidth fixes the width. Negative values unset it.
func (c *Column) SetWidth(w int) {
	if w < 0 {
		w = WidthUnset
	}
	c.mu.Lock()
	c.width, c.auto = w, false
	c.mu.Unlock()
}

// setMeasuredWidth records a width computed from the visible rows.
func (c *Column) setMeasuredWidth(w int) {
	c.mu.Lock()
	c.width, c.auto = w, true
	c.mu.Unlock()
}

// forgetMeasuredWidth unsets a measured width so it is computed again.
func (c *Column) forgetMeasuredWidth() {
	c.mu.Lock()
	if c.auto {
		c.width, c.auto = WidthUnset, false
	}
	c.mu.Unlock()
}

// Hidden reports whether the column is excluded from the visible columns.
func (c *Column) Hidden() bool { return c.Width() == 0 }

// Editable reports whether SetValue can succeed.
func (c *Column) Editable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.setter != nil
}

// SetGetter replaces the getter and drops every cached value.
func (c *Column) SetGetter(g Getter) {
	c.mu.Lock()
	c.getter = g
	c.mu.Unlock()
	c.Invalidate()
}

// Invalidate drops every cached value.
func (c *Column) Invalidate() {
	if cache := c.valueCache(); cache != nil {
		cache.Purge()
	}
}

// InvalidateRow drops the cached value for r.
func (c *Column) InvalidateRow(r *Row) {
	if cache := c.valueCache(); cache != nil {
		cache.Remove(r.ID)
	}
}

func (c *Column) valueCache() *lru.Cache[uint64, value.Value] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache
}

// Value returns the raw value for r, computing it at most once while it
// stays cached. Eviction is in insertion order: hits do not refresh.
func (c *Column) Value(r *Row) value.Value {
	cache := c.valueCache()
	if cache != nil {
		if v, ok := cache.Peek(r.ID); ok {
			return v
		}
	}
	v := c.compute(r)
	if cache != nil {
		cache.Add(r.ID, v)
	}
	return v
}

func (c *Column) compute(r *Row) (out value.Value) {
	c.mu.RLock()
	get := c.getter
	c.mu.RUnlock()
	if get == nil {
		return value.Null()
	}
	defer func() {
		if rec := recover(); rec != nil {
			if c.strict() {
				panic(rec)
			}
			out = c.fail(r, errors.WithStack(value.PanicError{Value: rec}))
		}
	}()
	v, err := get(r)
	switch {
	case err != nil:
		if c.strict() {
			panic(err)
		}
		return c.fail(r, err)
	case v.IsError():
		return value.FromFault(v.Fault().Forward())
	}
	return v
}

func (c *Column) fail(r *Row, err error) value.Value {
	fault := value.NewFault(value.FaultCompute, err)
	if b := c.sheet; b != nil {
		name := c.Name()
		key := fmt.Sprintf("%s|%s|%d|%s", b.Name(), name, r.ID, fault.Key())
		b.env.Log.ReportError(b.Name()+"."+name, key, fmt.Sprintf("%s[%d]: %s", name, r.ID, fault.Message), fault.Detail)
	}
	return value.FromFault(fault)
}

func (c *Column) strict() bool {
	return c.sheet != nil && c.sheet.env.Options.Strict
}

// TypedValue returns the value for r coerced to the column type. Error
// values pass through unchanged; a failed coercion yields a type fault.
func (c *Column) TypedValue(r *Row) value.Value {
	v := c.Value(r)
	if v.IsError() || v.IsNull() {
		return v
	}
	tv, err := value.Coerce(v, c.Type())
	if err != nil {
		fault := value.NewTypeFault(err)
		c.reportTypeFault(r, fault)
		return value.FromFault(fault)
	}
	return tv
}

// reportTypeFault enters the first coercion failure of each error type in
// the error ring. Later cells failing the same way are not reported.
func (c *Column) reportTypeFault(r *Row, fault *value.Fault) {
	b := c.sheet
	if b == nil {
		return
	}
	key := fmt.Sprintf("%d|%s", fault.Kind, fault.ErrType)
	c.mu.Lock()
	_, seen := c.typeFaults[key]
	if !seen {
		if c.typeFaults == nil {
			c.typeFaults = make(map[string]struct{})
		}
		c.typeFaults[key] = struct{}{}
	}
	name := c.name
	typ := c.typ
	c.mu.Unlock()
	if seen {
		return
	}
	b.env.Log.ReportError(b.Name()+"."+name, fmt.Sprintf("%s|%s|%s|%s", b.Name(), name, typ, key),
		fmt.Sprintf("%s[%d]: not %s: %s", name, r.ID, typ, fault.Message), fault.Detail)
}

// ConcreteValue is TypedValue with faults replaced by the type's zero value.
func (c *Column) ConcreteValue(r *Row) value.Value {
	v := c.TypedValue(r)
	if v.IsError() {
		return c.Type().Zero()
	}
	return v
}

// SortValue is the key used for ordering rows by this column. Faults stay
// faults so they group together at the top.
func (c *Column) SortValue(r *Row) value.Value {
	return c.TypedValue(r)
}

// DisplayValue formats the cell for a column drawn width cells wide.
// Numeric columns are right-aligned when width is positive.
func (c *Column) DisplayValue(r *Row, width int) string {
	tv := c.TypedValue(r)
	opts := defaultGlyphs
	if c.sheet != nil {
		o := c.sheet.env.Options
		opts = glyphs{null: o.NullGlyph, err: o.ErrorGlyph, typeErr: o.TypeErrorGlyph}
	}
	switch {
	case tv.IsError():
		if tv.Fault().Kind == value.FaultType {
			return opts.typeErr
		}
		return opts.err
	case tv.IsNull():
		return opts.null
	}
	typ := c.Type()
	text := value.Format(tv, typ, c.Format())
	if width > 0 && typ.IsNumeric() {
		w := c.measure(text)
		if w < width {
			text = strings.Repeat(" ", width-w) + text
		}
	}
	return text
}

func (c *Column) measure(text string) int {
	if c.sheet != nil {
		return c.sheet.env.Metrics.Width(text)
	}
	return len([]rune(text))
}

// SetValue writes v through the setter and invalidates the row's cache.
// In read-only mode the edit is refused with a status message.
func (c *Column) SetValue(r *Row, v value.Value) error {
	if c.sheet != nil && c.sheet.env.Options.ReadOnly {
		c.sheet.env.Log.Statusf("read-only: %s not changed", c.Name())
		return nil
	}
	c.mu.RLock()
	set := c.setter
	c.mu.RUnlock()
	if set == nil {
		return errors.Wrap(ErrNotEditable, c.Name())
	}
	if err := set(r, v); err != nil {
		return errors.Wrapf(err, "set %s", c.Name())
	}
	c.InvalidateRow(r)
	return nil
}

// SetText parses text as the column type and stores it.
func (c *Column) SetText(r *Row, text string) error {
	v, err := value.Coerce(value.String(text), c.Type())
	if err != nil {
		return err
	}
	return c.SetValue(r, v)
}

type glyphs struct {
	null, err, typeErr string
}

var defaultGlyphs = glyphs{null: "∅", err: "!", typeErr: "?"}
