// Package cron runs the console's periodic maintenance jobs.
package cron

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewScheduler accepts six-field specs (with seconds).
func NewScheduler(logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger.With("component", "cron"),
	}
}

func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler", "jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop waits up to timeout for running jobs to finish.
func (s *Scheduler) Stop(timeout time.Duration) {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
		s.logger.Info("scheduler stopped")
	case <-time.After(timeout):
		s.logger.Warn("scheduler stop timeout reached")
	}
}

func (s *Scheduler) AddJob(name, spec string, cmd func()) error {
	if _, err := s.cron.AddFunc(spec, cmd); err != nil {
		s.logger.Error("add cron job", "job", name, "spec", spec, "error", err)
		return err
	}
	s.logger.Debug("cron job registered", "job", name, "spec", spec)
	return nil
}
