package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	fetches int
	applied []int
}

func (r *recorder) fetch(context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches++
	return r.fetches, nil
}

func (r *recorder) apply(v int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.applied = append(r.applied, v)
}

func newPoller(t *testing.T, c clock.Clock, interval time.Duration, fetch func(context.Context) (int, error), apply func(int)) *Poller[int] {
	t.Helper()
	p, err := New(Config[int]{Name: "test", Interval: interval, Clock: c, Fetch: fetch, Apply: apply})
	require.NoError(t, err)
	return p
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config[int]{Name: "x", Interval: 0})
	assert.Error(t, err)
	_, err = New(Config[int]{Name: "x", Interval: time.Second})
	assert.Error(t, err)
}

func TestStartFetchesImmediatelyThenOnInterval(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	r := &recorder{}
	p := newPoller(t, fc, 10*time.Second, r.fetch, r.apply)

	p.Start(context.Background())
	assert.Equal(t, 1, r.fetches)

	fc.Advance(9 * time.Second)
	assert.Equal(t, 1, r.fetches)
	fc.Advance(time.Second)
	assert.Equal(t, 2, r.fetches)
	fc.Advance(20 * time.Second)
	assert.Equal(t, 4, r.fetches)
	assert.Equal(t, []int{1, 2, 3, 4}, r.applied)
	assert.Equal(t, 1, fc.Pending())
}

func TestStartIsIdempotent(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	r := &recorder{}
	p := newPoller(t, fc, 10*time.Second, r.fetch, r.apply)

	p.Start(context.Background())
	p.Start(context.Background())
	assert.Equal(t, 1, r.fetches)
	assert.Equal(t, 1, fc.Pending())
}

func TestStopCancelsPendingTick(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	r := &recorder{}
	p := newPoller(t, fc, 10*time.Second, r.fetch, r.apply)

	p.Start(context.Background())
	p.Stop()
	assert.False(t, p.Running())
	assert.Equal(t, 0, fc.Pending())

	fc.Advance(time.Minute)
	assert.Equal(t, 1, r.fetches)
}

func TestTransientErrorKeepsPolling(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	calls := 0
	var applied []int
	p := newPoller(t, fc, 5*time.Second, func(context.Context) (int, error) {
		calls++
		if calls == 2 {
			return 0, errors.New("connection reset")
		}
		return calls, nil
	}, func(v int) { applied = append(applied, v) })

	p.Start(context.Background())
	fc.Advance(10 * time.Second)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 3}, applied)
	assert.True(t, p.Running())
}

func TestUnauthorizedStopsPolling(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	calls := 0
	p := newPoller(t, fc, 5*time.Second, func(context.Context) (int, error) {
		calls++
		return 0, &errs.APIError{StatusCode: 401, Message: "Unauthorized"}
	}, func(int) { t.Fatal("nothing should be applied") })

	p.Start(context.Background())
	fc.Advance(time.Minute)
	assert.Equal(t, 1, calls)
	assert.False(t, p.Running())
	assert.Equal(t, 0, fc.Pending())
}

func TestResultAfterStopIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	var mu sync.Mutex
	var applied []int
	var sawCancel bool

	p := newPoller(t, clock.Real(), time.Hour, func(ctx context.Context) (int, error) {
		close(entered)
		<-release
		mu.Lock()
		sawCancel = ctx.Err() != nil
		mu.Unlock()
		return 7, nil
	}, func(v int) {
		mu.Lock()
		applied = append(applied, v)
		mu.Unlock()
	})

	p.Start(context.Background())
	<-entered
	p.Stop()
	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return sawCancel
	}, time.Second, 5*time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, applied)
}

func TestRestartBeginsNewGeneration(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	r := &recorder{}
	p := newPoller(t, fc, 10*time.Second, r.fetch, r.apply)

	p.Start(context.Background())
	fc.Advance(5 * time.Second)
	p.Stop()
	p.Start(context.Background())
	assert.Equal(t, 2, r.fetches)
	assert.Equal(t, 1, fc.Pending())

	fc.Advance(5 * time.Second)
	assert.Equal(t, 2, r.fetches)
	fc.Advance(5 * time.Second)
	assert.Equal(t, 3, r.fetches)
}

func TestParentContextCancelStops(t *testing.T) {
	fc := clock.Fake(time.Unix(0, 0))
	ctx, cancel := context.WithCancel(context.Background())
	p := newPoller(t, fc, 5*time.Second, func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	}, func(int) {})

	p.Start(ctx)
	assert.True(t, p.Running())
	cancel()
	fc.Advance(5 * time.Second)
	assert.False(t, p.Running())
}
