package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ActorType string

const (
	ActorTypeAdmin  ActorType = "admin"
	ActorTypeSystem ActorType = "system"
)

// AuditLog records one change made through the admin surface or by a
// background job.
type AuditLog struct {
	ID         int64             `gorm:"primaryKey"`
	ActorType  string            `gorm:"type:varchar(32);not null"`
	ActorID    *string           `gorm:"type:varchar(128)"`
	Action     string            `gorm:"type:varchar(64);not null;index:ix_audit_logs_action"`
	TargetType string            `gorm:"type:varchar(64);not null;index:ix_audit_logs_target,priority:1"`
	TargetID   *string           `gorm:"type:varchar(64);index:ix_audit_logs_target,priority:2"`
	Metadata   datatypes.JSONMap `gorm:"type:json"`
	CreatedAt  time.Time         `gorm:"not null"`
}

func (AuditLog) TableName() string { return "audit_logs" }
