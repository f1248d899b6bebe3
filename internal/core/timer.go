package core

import "time"

// Pacer schedules ticks at a fixed interval but only re-arms after the
// previous tick has resolved, so a slow tick delays the next one instead of
// overlapping it. A free-running timer would keep firing while a tick is
// still in flight, which is exactly the hazard the simulation gate rejects.
type Pacer struct {
	interval time.Duration
	last     time.Time
}

// NewPacer constructs a Pacer with the given tick interval.
func NewPacer(interval time.Duration) *Pacer {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Pacer{interval: interval}
}

// Interval returns the configured tick interval.
func (p *Pacer) Interval() time.Duration { return p.interval }

// Wait blocks until the next tick is due, measured from the completion of
// the previous tick's Wait. The first call returns immediately.
func (p *Pacer) Wait() {
	now := time.Now()
	if !p.last.IsZero() {
		if due := p.last.Add(p.interval); now.Before(due) {
			time.Sleep(due.Sub(now))
			now = time.Now()
		}
	}
	p.last = now
}

// Due reports whether enough time has passed since the previous completed
// tick, without blocking. Callers that poll (e.g. a frame loop) use this as
// drop-if-busy scheduling: a missed interval is skipped, never queued.
func (p *Pacer) Due() bool {
	now := time.Now()
	if p.last.IsZero() || !now.Before(p.last.Add(p.interval)) {
		return true
	}
	return false
}

// Mark records the completion of a tick, re-arming the interval.
func (p *Pacer) Mark() {
	p.last = time.Now()
}
