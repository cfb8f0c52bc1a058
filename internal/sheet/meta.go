package sheet

import (
	"strings"
	"time"

	"github.com/kk-code-lab/vgrid/internal/status"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/textutil"
	"github.com/kk-code-lab/vgrid/internal/value"
)

// ErrorsSheet lists the recent distinct errors, newest last.
type ErrorsSheet struct {
	*Base
}

func NewErrorsSheet(env *Env) *ErrorsSheet {
	s := &ErrorsSheet{Base: NewBase(env, "errors")}
	entry := func(r *Row) status.ErrorEntry { return r.Data.(status.ErrorEntry) }
	s.AddColumn(
		NewColumn("time", value.TypeDate, func(r *Row) (value.Value, error) {
			return value.Date(entry(r).Time), nil
		}, WithFormat(time.TimeOnly), Uncached()),
		NewColumn("source", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(entry(r).Source), nil
		}, AsKey(), Uncached()),
		NewColumn("error", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(entry(r).Summary), nil
		}, Uncached()),
		NewColumn("detail", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(entry(r).Detail), nil
		}, Uncached()),
	)
	return s
}

func (s *ErrorsSheet) Reload(t *task.Task) error {
	for _, e := range s.env.Log.Errors() {
		if err := t.Checkpoint(); err != nil {
			return err
		}
		s.AddRow(e)
	}
	return nil
}

// OpenRow shows the detail of one error, typically a stack trace, one line
// per row.
func (s *ErrorsSheet) OpenRow(r *Row) (Sheet, error) {
	e := r.Data.(status.ErrorEntry)
	lines := strings.Split(strings.TrimRight(e.Detail, "\n"), "\n")
	data := make([]any, len(lines))
	for i, line := range lines {
		data[i] = s.env.Metrics.ExpandTabs(line, textutil.DefaultTabWidth)
	}
	text := NewColumn("line", value.TypeString, func(r *Row) (value.Value, error) {
		return value.String(r.Data.(string)), nil
	})
	return NewMemorySheetFromData(s.env, "error "+e.Source, []*Column{text}, data), nil
}

// TasksSheet lists running tasks followed by recently finished ones.
type TasksSheet struct {
	*Base
}

func NewTasksSheet(env *Env) *TasksSheet {
	s := &TasksSheet{Base: NewBase(env, "tasks")}
	tk := func(r *Row) *task.Task { return r.Data.(*task.Task) }
	s.AddColumn(
		NewColumn("name", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(tk(r).Name), nil
		}, AsKey(), Uncached()),
		NewColumn("state", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(tk(r).State().String()), nil
		}, Uncached()),
		NewColumn("started", value.TypeDate, func(r *Row) (value.Value, error) {
			return value.Date(tk(r).Started()), nil
		}, WithFormat(time.TimeOnly), Uncached()),
		NewColumn("elapsed", value.TypeFloat, func(r *Row) (value.Value, error) {
			return value.Float(tk(r).Elapsed().Seconds()), nil
		}, WithFormat("%.3fs"), Uncached()),
		NewColumn("status", value.TypeString, func(r *Row) (value.Value, error) {
			return value.String(tk(r).Status()), nil
		}, Uncached()),
		NewColumn("error", value.TypeString, func(r *Row) (value.Value, error) {
			if err := tk(r).Err(); err != nil {
				return value.String(err.Error()), nil
			}
			return value.Null(), nil
		}, Uncached()),
	)
	return s
}

func (s *TasksSheet) Reload(t *task.Task) error {
	for _, tk := range s.env.Tasks.Running() {
		if tk == t {
			continue
		}
		s.AddRow(tk)
	}
	for _, tk := range s.env.Tasks.History() {
		s.AddRow(tk)
	}
	return t.Checkpoint()
}
