package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/psds-microservice/support-console/internal/clock"
)

// Pruner is implemented by recorders that can drop old entries.
type Pruner interface {
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionJob deletes audit entries older than Retention. It is run by the
// cron scheduler.
type RetentionJob struct {
	Pruner    Pruner
	Retention time.Duration
	Clock     clock.Clock
	Logger    *slog.Logger
}

func (j *RetentionJob) Run() {
	c := j.Clock
	if c == nil {
		c = clock.Real()
	}
	logger := j.Logger
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := c.Now().Add(-j.Retention)
	n, err := j.Pruner.Prune(ctx, cutoff)
	if err != nil {
		logger.Error("audit retention failed", "error", err)
		return
	}
	if n > 0 {
		logger.Info("audit entries pruned", "count", n, "cutoff", cutoff)
	}
}
