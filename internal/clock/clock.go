// Package clock abstracts timers so pollers can be driven deterministically
// in tests.
package clock

import "time"

// Clock is the subset of the time package the console schedules with.
type Clock interface {
	Now() time.Time

	// AfterFunc calls f once d has elapsed. If d <= 0 the real clock runs f
	// in a new goroutine and the fake clock runs it synchronously.
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a pending AfterFunc call.
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the call from running. It returns false if the call has
// already run or was stopped before.
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
