// Package poller runs a fetch on a fixed interval, one request at a time.
//
// The next tick is scheduled only after the previous fetch has settled, so a
// slow backend stretches the period instead of stacking requests. Every Start
// opens a new generation; results that arrive for an older generation are
// dropped without being applied.
package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/psds-microservice/support-console/internal/errs"
	"github.com/psds-microservice/support-console/internal/metrics"
)

type Config[T any] struct {
	// Name labels logs and metrics ("tickets", "messages").
	Name     string
	Interval time.Duration
	Clock    clock.Clock
	Logger   *slog.Logger

	Fetch func(ctx context.Context) (T, error)
	// Apply receives each fresh result. It runs under the poller lock and
	// must not call back into the poller.
	Apply func(T)
}

type Poller[T any] struct {
	cfg    Config[T]
	logger *slog.Logger

	mu      sync.Mutex
	running bool
	gen     uint64
	timer   *clock.Timer
	cancel  context.CancelFunc
}

func New[T any](cfg Config[T]) (*Poller[T], error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("poller %q: interval must be positive", cfg.Name)
	}
	if cfg.Fetch == nil || cfg.Apply == nil {
		return nil, fmt.Errorf("poller %q: fetch and apply are required", cfg.Name)
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.Real()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Poller[T]{cfg: cfg, logger: cfg.Logger.With("poller", cfg.Name)}, nil
}

// Start fetches immediately and then every Interval until Stop or until ctx
// is done. Calling Start on a running poller does nothing.
func (p *Poller[T]) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.gen++
	gen := p.gen
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Debug("poller started", "interval", p.cfg.Interval)
	p.cfg.Clock.AfterFunc(0, func() { p.tick(runCtx, gen) })
}

// Stop cancels the pending tick and the in-flight request. After Stop
// returns no further result is applied.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopLocked() {
		p.logger.Debug("poller stopped")
	}
}

func (p *Poller[T]) stopLocked() bool {
	if !p.running {
		return false
	}
	p.running = false
	p.gen++
	p.timer.Stop()
	p.timer = nil
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	return true
}

func (p *Poller[T]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Poller[T]) current(gen uint64) bool {
	return p.running && p.gen == gen
}

func (p *Poller[T]) tick(ctx context.Context, gen uint64) {
	p.mu.Lock()
	if !p.current(gen) {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	started := p.cfg.Clock.Now()
	result, err := p.cfg.Fetch(ctx)
	metrics.PollDuration.WithLabelValues(p.cfg.Name).Observe(p.cfg.Clock.Now().Sub(started).Seconds())

	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.current(gen) {
		metrics.PollCycles.WithLabelValues(p.cfg.Name, metrics.OutcomeDiscarded).Inc()
		return
	}

	switch {
	case err == nil:
		p.cfg.Apply(result)
		metrics.PollCycles.WithLabelValues(p.cfg.Name, metrics.OutcomeOK).Inc()
	case errors.Is(err, errs.ErrUnauthorized) || errors.Is(err, errs.ErrNoSession):
		metrics.PollCycles.WithLabelValues(p.cfg.Name, metrics.OutcomeFailed).Inc()
		p.logger.Info("poller stopped: session ended", "error", err)
		p.stopLocked()
		return
	case ctx.Err() != nil:
		p.stopLocked()
		return
	default:
		// Transient: the next tick retries.
		metrics.PollCycles.WithLabelValues(p.cfg.Name, metrics.OutcomeFailed).Inc()
		p.logger.Debug("poll failed", "error", err)
	}

	p.timer = p.cfg.Clock.AfterFunc(p.cfg.Interval, func() { p.tick(ctx, gen) })
}
