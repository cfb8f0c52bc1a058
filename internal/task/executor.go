package task

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kk-code-lab/vgrid/internal/status"
)

const defaultHistorySize = 64

// Reporter receives status messages and task failures. status.Log
// satisfies it.
type Reporter interface {
	Status(text string)
	ReportError(source, key, summary, detail string) bool
}

// Func is the body of a task. It should call t.Checkpoint at loop heads and
// around I/O and return its error (ErrCancelled included) unchanged.
type Func func(t *Task) error

// Executor spawns tasks on goroutines and tracks them until reaped.
type Executor struct {
	ctx      context.Context
	stop     context.CancelFunc
	logger   *slog.Logger
	reporter Reporter
	running  atomic.Int64
	wg       sync.WaitGroup

	mu       sync.Mutex
	active   map[*Task]struct{}
	finished []*Task
	history  *status.Ring[*Task]
	now      func() time.Time
}

// NewExecutor returns an executor reporting through reporter.
func NewExecutor(logger *slog.Logger, reporter Reporter) *Executor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	ctx, stop := context.WithCancel(context.Background())
	return &Executor{
		ctx:      ctx,
		stop:     stop,
		logger:   logger,
		reporter: reporter,
		active:   make(map[*Task]struct{}),
		history:  status.NewRing[*Task](defaultHistorySize),
		now:      time.Now,
	}
}

// Spawn starts fn on a new goroutine, registered in group for its lifetime.
// Errors and panics escaping fn are recorded on the task and reported, never
// returned to the caller.
func (e *Executor) Spawn(group *Group, name string, fn Func) *Task {
	if group == nil {
		group = NewGroup()
	}
	t := newTask(e.ctx, group, name)
	group.add(t)
	e.mu.Lock()
	e.active[t] = struct{}{}
	e.mu.Unlock()
	e.running.Add(1)
	e.wg.Add(1)
	go e.run(t, fn)
	return t
}

func (e *Executor) run(t *Task, fn Func) {
	defer e.wg.Done()

	t.mu.Lock()
	t.started = e.now()
	t.mu.Unlock()
	t.state.Store(int32(Running))
	e.logger.Debug("task started", "task", t.Name, "id", t.ID)

	err := e.call(t, fn)

	final := Completed
	switch {
	case err != nil && IsCancellation(err):
		final = Cancelled
	case err != nil:
		final = Failed
	}

	t.mu.Lock()
	t.ended = e.now()
	if final == Failed {
		t.err = err
	}
	t.mu.Unlock()
	t.state.Store(int32(final))
	t.group.remove(t)
	t.cancel()

	e.mu.Lock()
	delete(e.active, t)
	e.finished = append(e.finished, t)
	e.mu.Unlock()
	e.logger.Debug("task finished", "task", t.Name, "id", t.ID, "state", final, "elapsed", t.Elapsed())
	switch final {
	case Failed:
		e.logger.Error("task failed", "task", t.Name, "error", err)
		if e.reporter != nil {
			e.reporter.ReportError(t.Name, "", fmt.Sprintf("%s: %v", t.Name, err), fmt.Sprintf("%+v", err))
		}
	case Cancelled:
		if e.reporter != nil {
			e.reporter.Status(t.Name + " cancelled")
		}
	}
	e.running.Add(-1)
	close(t.done)
}

func (e *Executor) call(t *Task, fn Func) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	if t.ctx.Err() != nil {
		return ErrCancelled
	}
	return fn(t)
}

// Busy reports whether any spawned task has not finished yet.
func (e *Executor) Busy() bool {
	return e.running.Load() > 0
}

// Reap collects tasks that finished since the previous call and moves them
// to the history. It is called once per frame by the draw loop.
func (e *Executor) Reap() []*Task {
	e.mu.Lock()
	done := e.finished
	e.finished = nil
	e.mu.Unlock()
	for _, t := range done {
		e.history.Push(t)
	}
	return done
}

// Running returns unfinished tasks ordered by start time.
func (e *Executor) Running() []*Task {
	e.mu.Lock()
	out := make([]*Task, 0, len(e.active))
	for t := range e.active {
		out = append(out, t)
	}
	e.mu.Unlock()
	sortByStart(out)
	return out
}

// History returns recently reaped tasks oldest first.
func (e *Executor) History() []*Task {
	return e.history.Items()
}

// Shutdown cancels every task and waits up to timeout for them to return.
func (e *Executor) Shutdown(timeout time.Duration) bool {
	e.stop()
	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(timeout):
		return false
	}
}
