package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
	"github.com/stretchr/testify/assert"
)

type fakePruner struct {
	cutoff time.Time
	err    error
}

func (f *fakePruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestRetentionJobUsesClock(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	p := &fakePruner{}
	job := &RetentionJob{Pruner: p, Retention: 30 * 24 * time.Hour, Clock: clock.Fake(now)}

	job.Run()
	assert.Equal(t, now.AddDate(0, 0, -30), p.cutoff)
}

func TestRetentionJobSurvivesError(t *testing.T) {
	p := &fakePruner{err: errors.New("db down")}
	job := &RetentionJob{Pruner: p, Retention: time.Hour}
	assert.NotPanics(t, job.Run)
}
