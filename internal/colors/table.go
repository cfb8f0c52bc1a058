package colors

// Request asks for a named attribute at a given precedence.
type Request struct {
	Name string
	Prec int
}

// Table resolves attribute names. It is built once at startup and read
// concurrently afterwards.
type Table struct {
	named map[string]Attr
}

// NewTable builds a table from theme specs layered over DefaultTheme.
func NewTable(overrides map[string]string) *Table {
	specs := DefaultTheme()
	for name, spec := range overrides {
		specs[name] = spec
	}
	t := &Table{named: make(map[string]Attr, len(specs))}
	for name, spec := range specs {
		if a, ok := ParseAttr(spec); ok {
			t.named[name] = a
		}
	}
	return t
}

// Get returns the attribute for name. Names missing from the theme are parsed
// as literal specs ("red", "bold 33"); anything unrecognised yields Neutral.
func (t *Table) Get(name string) Attr {
	a, _ := t.lookup(name)
	return a
}

func (t *Table) lookup(name string) (Attr, bool) {
	if t != nil {
		if a, ok := t.named[name]; ok {
			return a, true
		}
	}
	if a, ok := ParseAttr(name); ok {
		return a, true
	}
	return Neutral, false
}

// ResolveStack folds Update left to right over reqs, which are ordered
// highest precedence first, starting from Neutral. Unknown names contribute
// nothing, not even their precedence.
func (t *Table) ResolveStack(reqs []Request) Attr {
	out := Neutral
	for _, r := range reqs {
		a, ok := t.lookup(r.Name)
		if !ok {
			continue
		}
		out = Update(out, a.WithPrec(r.Prec))
	}
	return out
}
