package clock

import (
	"sync"
	"time"
)

// Fake returns a FakeClock that stands still until Advance is called.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock fires AfterFunc callbacks synchronously from Advance, in deadline
// order. Callbacks may register new timers; those fire within the same
// Advance if their deadline falls inside it. Do not call Advance from a
// callback.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	seq     uint64
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	seq      uint64
	callback func()
	done     bool
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stopFunc: func() bool { return false }}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	w := &fakeWaiter{deadline: c.current.Add(d), seq: c.seq, callback: f}
	c.waiters = append(c.waiters, w)
	return &Timer{stopFunc: func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		if w.done {
			return false
		}
		w.done = true
		return true
	}}
}

// Advance moves the clock forward by d. Time is stepped to each waiter's
// deadline before its callback runs, so a callback that reschedules itself
// sees the correct Now.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		w := c.nextDue(target)
		if w == nil {
			break
		}
		w.callback()
	}

	c.mu.Lock()
	c.current = target
	c.mu.Unlock()
}

// nextDue pops the earliest live waiter due at or before target and moves the
// clock to its deadline.
func (c *FakeClock) nextDue(target time.Time) *fakeWaiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *fakeWaiter
	live := c.waiters[:0]
	for _, w := range c.waiters {
		if w.done {
			continue
		}
		live = append(live, w)
		if w.deadline.After(target) {
			continue
		}
		if next == nil || w.deadline.Before(next.deadline) ||
			(w.deadline.Equal(next.deadline) && w.seq < next.seq) {
			next = w
		}
	}
	c.waiters = live
	if next == nil {
		return nil
	}
	next.done = true
	c.current = next.deadline
	return next
}

// Pending returns the number of timers that have neither fired nor been
// stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, w := range c.waiters {
		if !w.done {
			n++
		}
	}
	return n
}
