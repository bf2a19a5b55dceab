// Package audit keeps a trail of admin commands in Postgres.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/psds-microservice/support-console/internal/model"
	"gorm.io/gorm"
)

// Recorder stores one entry per admin command. Recording is best-effort: a
// failed write is logged and never fails the command.
type Recorder interface {
	Record(ctx context.Context, e model.AuditEntry)
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, model.AuditEntry) {}

type GormRecorder struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewGormRecorder(db *gorm.DB, logger *slog.Logger) *GormRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &GormRecorder{db: db, logger: logger.With("component", "audit")}
}

func (r *GormRecorder) Record(ctx context.Context, e model.AuditEntry) {
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		r.logger.Warn("audit write failed", "action", e.Action, "target_id", e.TargetID, "error", err)
	}
}

// Recent returns the newest entries first.
func (r *GormRecorder) Recent(ctx context.Context, limit int) ([]model.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []model.AuditEntry
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	return out, nil
}

// Prune deletes entries created before cutoff and returns how many went.
func (r *GormRecorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&model.AuditEntry{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune audit log: %w", res.Error)
	}
	return res.RowsAffected, nil
}
