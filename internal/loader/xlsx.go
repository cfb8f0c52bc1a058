package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kk-code-lab/vgrid/internal/sheet"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/value"
)

// WorkbookSheet lists the worksheets of an .xlsx file; opening a row loads
// that worksheet.
type WorkbookSheet struct {
	*sheet.Base
	path string
}

type worksheetInfo struct {
	Name      string
	Dimension string
}

func NewWorkbookSheet(env *sheet.Env, path string) *WorkbookSheet {
	s := &WorkbookSheet{Base: sheet.NewBase(env, sheetName(path)), path: path}
	info := func(r *sheet.Row) worksheetInfo { return r.Data.(worksheetInfo) }
	s.AddColumn(
		sheet.NewColumn("sheet", value.TypeString, func(r *sheet.Row) (value.Value, error) {
			return value.String(info(r).Name), nil
		}, sheet.AsKey(), sheet.Uncached()),
		sheet.NewColumn("dimension", value.TypeString, func(r *sheet.Row) (value.Value, error) {
			return value.String(info(r).Dimension), nil
		}, sheet.Uncached()),
		sheet.NewColumn("rows", value.TypeInt, func(r *sheet.Row) (value.Value, error) {
			n, err := dimensionRows(info(r).Dimension)
			if err != nil {
				return value.Null(), err
			}
			return value.Int(int64(n)), nil
		}, sheet.Uncached()),
	)
	return s
}

func (s *WorkbookSheet) Reload(t *task.Task) error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, name := range f.GetSheetList() {
		if err := t.Checkpoint(); err != nil {
			return err
		}
		dim, _ := f.GetSheetDimension(name)
		s.AddRow(worksheetInfo{Name: name, Dimension: dim})
	}
	return nil
}

// OpenRow returns the worksheet named by r, unloaded.
func (s *WorkbookSheet) OpenRow(r *sheet.Row) (sheet.Sheet, error) {
	info, ok := r.Data.(worksheetInfo)
	if !ok {
		return nil, fmt.Errorf("not a worksheet row")
	}
	return NewWorksheetSheet(s.Env(), s.path, info.Name), nil
}

// WorksheetSheet streams one worksheet. Rows are the []string cell texts.
type WorksheetSheet struct {
	*sheet.Base
	path      string
	worksheet string
}

func NewWorksheetSheet(env *sheet.Env, path, worksheet string) *WorksheetSheet {
	return &WorksheetSheet{
		Base:      sheet.NewBase(env, sheetName(path)+"_"+worksheet),
		path:      path,
		worksheet: worksheet,
	}
}

func (s *WorksheetSheet) Reload(t *task.Task) error {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	var progress *task.Progress
	if dim, err := f.GetSheetDimension(s.worksheet); err == nil {
		if n, err := dimensionRows(dim); err == nil {
			progress = t.Progress(int64(n))
			defer progress.Done()
		}
	}

	rows, err := f.Rows(s.worksheet)
	if err != nil {
		return err
	}
	defer rows.Close()

	headerRows := s.Env().Options.HeaderRows
	var header [][]string
	for rows.Next() {
		if err := t.Checkpoint(); err != nil {
			return err
		}
		cells, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("%s[%s]: %w", s.path, s.worksheet, err)
		}
		if progress != nil {
			progress.Add(1)
		}
		cells = normalizeFields(cells)
		if len(header) < headerRows {
			header = append(header, cells)
			if len(header) == headerRows && len(s.Columns()) == 0 {
				s.addColumns(columnNames(header))
			}
			continue
		}
		if n := len(s.Columns()); len(cells) > n {
			s.addColumns(blankNames(n, len(cells)))
		}
		s.AddRow(cells)
	}
	if len(header) < headerRows && len(s.Columns()) == 0 {
		s.addColumns(columnNames(header))
	}
	return rows.Error()
}

func (s *WorksheetSheet) addColumns(names []string) {
	first := len(s.Columns())
	cols := make([]*sheet.Column, len(names))
	for i, name := range names {
		cols[i] = fieldColumn(name, first+i)
	}
	s.AddColumn(cols...)
}

// dimensionRows extracts the row count from a range such as "A1:D20".
func dimensionRows(dim string) (int, error) {
	if dim == "" {
		return 0, nil
	}
	_, last, _ := strings.Cut(dim, ":")
	if last == "" {
		last = dim
	}
	_, row, err := excelize.CellNameToCoordinates(last)
	if err != nil {
		return 0, err
	}
	return row, nil
}
