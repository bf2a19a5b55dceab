package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeClockAfterFuncFiresOnAdvance(t *testing.T) {
	c := Fake(epoch)
	fired := 0
	c.AfterFunc(3*time.Second, func() { fired++ })

	c.Advance(2 * time.Second)
	assert.Equal(t, 0, fired)

	c.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, epoch.Add(3*time.Second), c.Now())
}

func TestFakeClockZeroDurationRunsSynchronously(t *testing.T) {
	c := Fake(epoch)
	fired := false
	c.AfterFunc(0, func() { fired = true })
	assert.True(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeClockStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	require.Equal(t, 1, c.Pending())

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	c.Advance(time.Minute)
	assert.False(t, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeClockRescheduleWithinAdvance(t *testing.T) {
	c := Fake(epoch)
	var at []time.Duration
	var tick func()
	tick = func() {
		at = append(at, c.Now().Sub(epoch))
		c.AfterFunc(10*time.Second, tick)
	}
	c.AfterFunc(10*time.Second, tick)

	c.Advance(30 * time.Second)
	assert.Equal(t, []time.Duration{10 * time.Second, 20 * time.Second, 30 * time.Second}, at)
	assert.Equal(t, 1, c.Pending())
}

func TestFakeClockFiresInDeadlineOrder(t *testing.T) {
	c := Fake(epoch)
	var order []string
	c.AfterFunc(15*time.Second, func() { order = append(order, "b") })
	c.AfterFunc(10*time.Second, func() { order = append(order, "a") })
	c.AfterFunc(15*time.Second, func() { order = append(order, "c") })

	c.Advance(20 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}
