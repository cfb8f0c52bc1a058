package task

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// State is a task's lifecycle state. Transitions only move forward:
// Pending → Running → Completed | Cancelled | Failed.
type State int32

const (
	Pending State = iota
	Running
	Completed
	Cancelled
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is a final state.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled || s == Failed
}

// ErrCancelled is returned by Checkpoint once cancellation was requested.
// It is expected control flow, not a failure.
var ErrCancelled = errors.New("task cancelled")

// IsCancellation reports whether err signals user cancellation.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Task is one unit of background work bound to the group (sheet) that
// spawned it.
type Task struct {
	ID   uuid.UUID
	Name string

	group  *Group
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32

	mu      sync.Mutex
	started time.Time
	ended   time.Time
	status  string
	err     error
	scopes  []*Progress
}

func newTask(parent context.Context, group *Group, name string) *Task {
	ctx, cancel := context.WithCancel(parent)
	return &Task{
		ID:     uuid.New(),
		Name:   name,
		group:  group,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (t *Task) State() State { return State(t.state.Load()) }

// Context is cancelled when the task is cancelled; pass it to blocking I/O.
func (t *Task) Context() context.Context { return t.ctx }

// Done is closed once the task reached a terminal state.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finished or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cancel requests cooperative cancellation. The task observes it at its
// next Checkpoint or context-aware blocking call.
func (t *Task) Cancel() { t.cancel() }

// Checkpoint returns ErrCancelled if cancellation was requested.
func (t *Task) Checkpoint() error {
	if t.ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

// SetStatus records a human-readable status for display.
func (t *Task) SetStatus(status string) {
	t.mu.Lock()
	t.status = status
	t.mu.Unlock()
}

// Status returns the last status string.
func (t *Task) Status() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Err returns the terminal error of a failed task.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Started returns the time the task started running.
func (t *Task) Started() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Ended returns the end time; zero while running.
func (t *Task) Ended() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ended
}

// Elapsed returns the running time so far, or the total once finished.
func (t *Task) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started.IsZero() {
		return 0
	}
	if t.ended.IsZero() {
		return time.Since(t.started)
	}
	return t.ended.Sub(t.started)
}

// Progress opens a progress scope with the given total. Call Done on the
// scope when the work it measures is finished.
func (t *Task) Progress(total int64) *Progress {
	p := &Progress{task: t}
	p.total.Store(total)
	t.mu.Lock()
	t.scopes = append(t.scopes, p)
	t.mu.Unlock()
	return p
}

func (t *Task) removeScope(p *Progress) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, s := range t.scopes {
		if s == p {
			t.scopes = append(t.scopes[:i], t.scopes[i+1:]...)
			return
		}
	}
}

// progress sums made/total over the task's open scopes.
func (t *Task) progress() (made, total int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range t.scopes {
		made += p.made.Load()
		total += p.total.Load()
	}
	return made, total
}

// Progress counts work done against a total within one task.
type Progress struct {
	task  *Task
	made  atomic.Int64
	total atomic.Int64
}

// Add records n more units of work done.
func (p *Progress) Add(n int64) { p.made.Add(n) }

// SetTotal adjusts the expected total.
func (p *Progress) SetTotal(n int64) { p.total.Store(n) }

// Made returns the units done so far.
func (p *Progress) Made() int64 { return p.made.Load() }

// Done closes the scope so it no longer contributes to the sheet's percentage.
func (p *Progress) Done() { p.task.removeScope(p) }
