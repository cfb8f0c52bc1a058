package task

import (
	"sort"
	"sync"
)

// Group is the set of tasks currently running on behalf of one sheet.
// A task is a member from Spawn until it reaches a terminal state.
type Group struct {
	mu    sync.Mutex
	tasks map[*Task]struct{}
}

// NewGroup returns an empty group.
func NewGroup() *Group {
	return &Group{tasks: make(map[*Task]struct{})}
}

func (g *Group) add(t *Task) {
	g.mu.Lock()
	if g.tasks == nil {
		g.tasks = make(map[*Task]struct{})
	}
	g.tasks[t] = struct{}{}
	g.mu.Unlock()
}

func (g *Group) remove(t *Task) {
	g.mu.Lock()
	delete(g.tasks, t)
	g.mu.Unlock()
}

// Active returns the member tasks ordered by start time.
func (g *Group) Active() []*Task {
	g.mu.Lock()
	out := make([]*Task, 0, len(g.tasks))
	for t := range g.tasks {
		out = append(out, t)
	}
	g.mu.Unlock()
	sortByStart(out)
	return out
}

func sortByStart(tasks []*Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].Started().Before(tasks[j].Started())
	})
}

// Len returns the number of member tasks.
func (g *Group) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tasks)
}

// CancelAll requests cancellation of every member task and returns how many
// were signalled.
func (g *Group) CancelAll() int {
	tasks := g.Active()
	for _, t := range tasks {
		t.Cancel()
	}
	return len(tasks)
}

// Progress sums made and total over every open progress scope of every
// member task.
func (g *Group) Progress() (made, total int64) {
	for _, t := range g.Active() {
		m, tot := t.progress()
		made += m
		total += tot
	}
	return made, total
}

// Percent returns the group's completion percentage, or -1 when no scope
// reports a total.
func (g *Group) Percent() float64 {
	made, total := g.Progress()
	if total <= 0 {
		return -1
	}
	pct := float64(made) * 100 / float64(total)
	if pct > 100 {
		pct = 100
	}
	return pct
}
