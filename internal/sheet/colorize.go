package sheet

import (
	"fmt"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/kk-code-lab/vgrid/internal/colors"
	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/value"
)

// Scope says which cells a colorizer is asked about.
type Scope uint8

const (
	ScopeRow Scope = iota
	ScopeCol
	ScopeCell
)

// ParseScope maps "row", "col" and "cell" to a Scope.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "row":
		return ScopeRow, nil
	case "col", "column":
		return ScopeCol, nil
	case "cell", "":
		return ScopeCell, nil
	}
	return 0, fmt.Errorf("unknown colorizer scope %q", s)
}

// CellRef identifies the cell being colored. Row is nil for the header.
type CellRef struct {
	Sheet  *Base
	Col    *Column
	Row    *Row
	ColIdx int
	RowIdx int
}

// Value returns the typed value of the cell, or null for the header.
func (ref CellRef) Value() value.Value {
	if ref.Row == nil || ref.Col == nil {
		return value.Null()
	}
	return ref.Col.TypedValue(ref.Row)
}

// Colorizer contributes a named color to cells it matches. Match returns
// the color name, or "" when it does not apply.
type Colorizer struct {
	Scope Scope
	Prec  int
	Match func(ref CellRef) string
}

// When adapts a predicate into a Match function yielding color.
func When(color string, pred func(ref CellRef) bool) func(CellRef) string {
	return func(ref CellRef) string {
		if pred(ref) {
			return color
		}
		return ""
	}
}

// Cursor highlights carry only style flags, so they rank below the
// colorizers that supply colors.
func builtinColorizers() []Colorizer {
	return []Colorizer{
		{Scope: ScopeCol, Prec: 1, Match: When(colors.KeyCol, func(ref CellRef) bool {
			return ref.Col != nil && ref.Col.IsKey()
		})},
		{Scope: ScopeCol, Prec: 4, Match: When(colors.CurrentCol, func(ref CellRef) bool {
			return ref.ColIdx == ref.Sheet.CursorVisibleColIndex
		})},
		{Scope: ScopeRow, Prec: 5, Match: When(colors.CurrentRow, func(ref CellRef) bool {
			return ref.Row != nil && ref.RowIdx == ref.Sheet.CursorRowIndex
		})},
		{Scope: ScopeRow, Prec: 6, Match: When(colors.SelectedRow, func(ref CellRef) bool {
			return ref.Row != nil && ref.Sheet.IsSelected(ref.Row)
		})},
		{Scope: ScopeCell, Prec: 7, Match: noteColor},
	}
}

func noteColor(ref CellRef) string {
	if ref.Row == nil {
		return ""
	}
	v := ref.Value()
	switch {
	case v.IsError() && v.Fault().Kind == value.FaultType:
		return colors.TypeError
	case v.IsError():
		return colors.Error
	case v.IsNull():
		return colors.Null
	}
	return ""
}

// AddColorizer registers c on the sheet.
func (b *Base) AddColorizer(c Colorizer) {
	b.colorizers = append(b.colorizers, c)
}

// CellAttr resolves the attribute of a cell from every matching colorizer,
// higher precedence first. A colorizer that panics is skipped.
func (b *Base) CellAttr(ref CellRef) colors.Attr {
	ref.Sheet = b
	reqs := make([]colors.Request, 0, 4)
	for _, c := range b.colorizers {
		if c.Scope == ScopeCell && ref.Row == nil {
			continue
		}
		if name := safeMatch(c, ref); name != "" {
			reqs = append(reqs, colors.Request{Name: name, Prec: c.Prec})
		}
	}
	slices.SortStableFunc(reqs, func(x, y colors.Request) int { return y.Prec - x.Prec })
	return b.env.Colors.ResolveStack(reqs)
}

// RowAttr resolves only the row-scope colorizers for row r at index i. The
// renderer uses it for the gaps between cells.
func (b *Base) RowAttr(r *Row, i int) colors.Attr {
	ref := CellRef{Sheet: b, Row: r, ColIdx: -1, RowIdx: i}
	reqs := make([]colors.Request, 0, 2)
	for _, c := range b.colorizers {
		if c.Scope != ScopeRow {
			continue
		}
		if name := safeMatch(c, ref); name != "" {
			reqs = append(reqs, colors.Request{Name: name, Prec: c.Prec})
		}
	}
	slices.SortStableFunc(reqs, func(x, y colors.Request) int { return y.Prec - x.Prec })
	return b.env.Colors.ResolveStack(reqs)
}

func safeMatch(c Colorizer, ref CellRef) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	return c.Match(ref)
}

// CompileRule turns a configured rule into a Colorizer. The rule's When is
// an expr-lang boolean over value, text, column, type, row, selected, is_null
// and is_error.
func CompileRule(rule config.ColorRule) (Colorizer, error) {
	scope, err := ParseScope(rule.Scope)
	if err != nil {
		return Colorizer{}, err
	}
	program, err := expr.Compile(rule.When, expr.Env(ruleEnv(CellRef{})), expr.AllowUndefinedVariables())
	if err != nil {
		return Colorizer{}, fmt.Errorf("colorizer %q: %w", rule.When, err)
	}
	return Colorizer{Scope: scope, Prec: rule.Prec, Match: ruleMatcher(program, rule.Color)}, nil
}

func ruleMatcher(program *vm.Program, color string) func(CellRef) string {
	return func(ref CellRef) string {
		out, err := expr.Run(program, ruleEnv(ref))
		if err != nil {
			return ""
		}
		if ok, _ := out.(bool); ok {
			return color
		}
		return ""
	}
}

func ruleEnv(ref CellRef) map[string]any {
	env := map[string]any{
		"value":    nil,
		"text":     "",
		"column":   "",
		"type":     "",
		"row":      ref.RowIdx,
		"selected": false,
		"is_null":  false,
		"is_error": false,
	}
	if ref.Col != nil {
		env["column"] = ref.Col.Name()
		env["type"] = ref.Col.Type().String()
	}
	if ref.Row != nil && ref.Col != nil {
		v := ref.Value()
		env["value"] = v.Interface()
		env["text"] = ref.Col.DisplayValue(ref.Row, 0)
		env["is_null"] = v.IsNull()
		env["is_error"] = v.IsError()
	}
	if ref.Row != nil && ref.Sheet != nil {
		env["selected"] = ref.Sheet.IsSelected(ref.Row)
	}
	return env
}

// ApplyRules compiles rules onto b. Rules that fail to compile are returned
// as errors; the rest are installed.
func (b *Base) ApplyRules(rules []config.ColorRule) []error {
	var errs []error
	for _, rule := range rules {
		c, err := CompileRule(rule)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.AddColorizer(c)
	}
	return errs
}
