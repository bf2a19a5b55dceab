package model

import "time"

type AuditOutcome string

const (
	AuditOutcomeOK     AuditOutcome = "ok"
	AuditOutcomeFailed AuditOutcome = "failed"
)

// AuditEntry: запись журнала действий администратора.
type AuditEntry struct {
	ID         uint64       `gorm:"primaryKey" json:"id"`
	AdminID    string       `gorm:"type:varchar(64);index" json:"admin_id,omitempty"`
	AdminName  string       `gorm:"type:varchar(255)" json:"admin_name,omitempty"`
	Action     string       `gorm:"type:varchar(64);index;not null" json:"action"`
	TargetKind string       `gorm:"type:varchar(32);not null" json:"target_kind"`
	TargetID   string       `gorm:"type:varchar(64);index;not null" json:"target_id"`
	Detail     string       `gorm:"type:text" json:"detail,omitempty"`
	Outcome    AuditOutcome `gorm:"type:varchar(16);not null" json:"outcome"`
	Error      string       `gorm:"type:text" json:"error,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (AuditEntry) TableName() string { return "admin_audit_log" }
