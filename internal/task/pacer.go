package task

import "time"

const (
	DefaultBusyTimeout = 100 * time.Millisecond
	DefaultIdleLimit   = 10
)

// Pacer chooses how long the draw loop waits for input. While tasks run it
// polls at Busy so progress stays visible; once idle it backs off a step per
// poll and after IdleLimit idle polls waits indefinitely.
type Pacer struct {
	Busy      time.Duration
	IdleLimit int
	streak    int
}

// NewPacer returns a pacer with default timings.
func NewPacer() *Pacer {
	return &Pacer{Busy: DefaultBusyTimeout, IdleLimit: DefaultIdleLimit}
}

// Next returns the wait for the coming poll. ok is false for an indefinite
// wait.
func (p *Pacer) Next(busy bool) (wait time.Duration, ok bool) {
	if busy {
		p.streak = 0
		return p.Busy, true
	}
	p.streak++
	if p.streak > p.IdleLimit {
		return 0, false
	}
	return p.Busy * time.Duration(p.streak+1), true
}

// Reset restarts the idle streak, e.g. after user input.
func (p *Pacer) Reset() { p.streak = 0 }
