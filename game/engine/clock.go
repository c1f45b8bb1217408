package engine

import "time"

// Clock is a virtual monotonic clock with scheduled callbacks. It only moves
// when Advance is called, which keeps timers deterministic under test.
type Clock struct {
	now    time.Duration
	seq    uint64
	timers []*Timer
}

// Timer is a pending callback
type Timer struct {
	at       time.Duration
	seq      uint64
	fn       func()
	stopped  bool
	finished bool
}

// Stop cancels the timer. It reports false if the timer already fired.
func (t *Timer) Stop() bool {
	if t.finished || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func NewClock() *Clock {
	return &Clock{}
}

// Now returns the elapsed virtual time
func (c *Clock) Now() time.Duration {
	return c.now
}

// After schedules fn to run once the clock reaches Now()+d
func (c *Clock) After(d time.Duration, fn func()) *Timer {
	c.seq++
	t := &Timer{at: c.now + max(d, 0), seq: c.seq, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// Pending returns the number of timers that have not fired or been stopped
func (c *Clock) Pending() int {
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.finished {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by dt and fires due timers in order of
// due time, then scheduling order. Now() reads the timer's due time inside
// its callback. Timers scheduled by a callback fire in the same call if due.
func (c *Clock) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	target := c.now + dt
	for {
		t := c.nextDue(target)
		if t == nil {
			break
		}
		c.now = t.at
		t.finished = true
		t.fn()
	}
	c.now = target
	c.compact()
}

func (c *Clock) nextDue(target time.Duration) *Timer {
	var next *Timer
	for _, t := range c.timers {
		if t.stopped || t.finished || t.at > target {
			continue
		}
		if next == nil || t.at < next.at || (t.at == next.at && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (c *Clock) compact() {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped && !t.finished {
			live = append(live, t)
		}
	}
	c.timers = live
}
