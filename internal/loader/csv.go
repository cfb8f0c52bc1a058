package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/kk-code-lab/vgrid/internal/sheet"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/value"
)

var sniffCandidates = []rune{',', '\t', ';', '|'}

// CSVSheet loads delimited text. Every row is the []string of its fields;
// columns are created from the header rows on first load and kept across
// reloads.
type CSVSheet struct {
	*sheet.Base
	path  string
	delim rune
}

// NewCSVSheet returns an unloaded sheet for path. A zero delim is sniffed
// from the file unless the options name one.
func NewCSVSheet(env *sheet.Env, path string, delim rune) *CSVSheet {
	if delim == 0 {
		if d := []rune(env.Options.CSVDelimiter); len(d) == 1 {
			delim = d[0]
		}
	}
	return &CSVSheet{Base: sheet.NewBase(env, sheetName(path)), path: path, delim: delim}
}

func (s *CSVSheet) Reload(t *task.Task) error {
	opts := s.Env().Options
	src, err := openSource(t, s.path, opts.Encoding)
	if err != nil {
		return err
	}
	defer src.Close()

	delim := s.delim
	if delim == 0 {
		delim = sniffDelimiter(src)
	}
	cr := csv.NewReader(src)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var header [][]string
	for len(header) < opts.HeaderRows {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s.path, err)
		}
		header = append(header, normalizeFields(rec))
	}
	if len(s.Columns()) == 0 {
		s.addColumns(columnNames(header))
	}

	for {
		if err := t.Checkpoint(); err != nil {
			return err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", s.path, err)
		}
		rec = normalizeFields(rec)
		if n := len(s.Columns()); len(rec) > n {
			s.addColumns(blankNames(n, len(rec)))
		}
		s.AddRow(rec)
	}
}

func (s *CSVSheet) addColumns(names []string) {
	first := len(s.Columns())
	cols := make([]*sheet.Column, len(names))
	for i, name := range names {
		cols[i] = fieldColumn(name, first+i)
	}
	s.AddColumn(cols...)
}

// fieldColumn reads and writes field i of a []string row.
func fieldColumn(name string, i int) *sheet.Column {
	return sheet.NewColumn(name, value.TypeAny,
		func(r *sheet.Row) (value.Value, error) {
			fields := r.Data.([]string)
			if i >= len(fields) {
				return value.Null(), nil
			}
			return value.String(fields[i]), nil
		},
		sheet.WithSetter(func(r *sheet.Row, v value.Value) error {
			fields := r.Data.([]string)
			if i >= len(fields) {
				return fmt.Errorf("row has %d fields, no field %d", len(fields), i+1)
			}
			fields[i] = value.Format(v, value.TypeAny, "")
			return nil
		}),
	)
}

// columnNames joins the header rows per column. Without a header, columns
// are created as fields appear.
func columnNames(header [][]string) []string {
	n := 0
	for _, rec := range header {
		n = max(n, len(rec))
	}
	names := make([]string, n)
	for i := range names {
		var parts []string
		for _, rec := range header {
			if i < len(rec) && rec[i] != "" {
				parts = append(parts, rec[i])
			}
		}
		names[i] = strings.Join(parts, " ")
		if names[i] == "" {
			names[i] = fmt.Sprintf("%d", i+1)
		}
	}
	return names
}

func blankNames(from, to int) []string {
	names := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		names = append(names, fmt.Sprintf("%d", i+1))
	}
	return names
}

// sniffDelimiter picks the candidate occurring most often in the first
// line, defaulting to a comma.
func sniffDelimiter(src *source) rune {
	b, _ := src.Peek(4096)
	line := string(b)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best, bestN := ',', 0
	for _, c := range sniffCandidates {
		if n := strings.Count(line, string(c)); n > bestN {
			best, bestN = c, n
		}
	}
	return best
}

func normalizeFields(rec []string) []string {
	for i, f := range rec {
		if !norm.NFC.IsNormalString(f) {
			rec[i] = norm.NFC.String(f)
		}
	}
	return rec
}

func sheetName(path string) string {
	name := filepath.Base(path)
	if c := compression(name); c != "" {
		name = name[:len(name)-len(c)]
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}
