package sheet

import (
	"log/slog"

	"github.com/kk-code-lab/vgrid/internal/colors"
	"github.com/kk-code-lab/vgrid/internal/config"
	"github.com/kk-code-lab/vgrid/internal/status"
	"github.com/kk-code-lab/vgrid/internal/task"
	"github.com/kk-code-lab/vgrid/internal/textutil"
)

// Env carries the process-wide collaborators every sheet needs: the option
// table, status/error log, task executor, text metrics and color table.
// It is built once by the application and shared by all sheets.
type Env struct {
	Options *config.Options
	Log     *status.Log
	Tasks   *task.Executor
	Metrics *textutil.Metrics
	Colors  *colors.Table
	Logger  *slog.Logger

	// Post schedules fn on the UI goroutine. Background tasks use it for
	// mutations the draw loop must not observe half-done (row reorders,
	// cursor moves). Nil runs fn immediately.
	Post func(fn func())
}

// NewEnv builds an Env from opts. A nil logger discards log output.
func NewEnv(opts *config.Options, logger *slog.Logger) *Env {
	if opts == nil {
		opts = config.Defaults()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	log := status.NewLog(logger, opts.ErrorRing)
	return &Env{
		Options: opts,
		Log:     log,
		Tasks:   task.NewExecutor(logger, log),
		Metrics: textutil.NewMetrics(textutil.Config{
			AmbiguousWidth: opts.AmbiguousWidth,
			Truncator:      opts.Truncator,
			Placeholder:    opts.OddSpaceRune(),
		}),
		Colors: colors.NewTable(opts.Theme),
		Logger: logger,
	}
}

func (e *Env) post(fn func()) {
	if e.Post == nil {
		fn()
		return
	}
	e.Post(fn)
}
