package models

import (
	"time"

	"gorm.io/gorm"
)

// AuditLog records sensitive actions (admin moderation, webhook outcomes, logins).
type AuditLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     *uint          `gorm:"index" json:"user_id,omitempty"`
	Action     string         `gorm:"size:60;not null;index" json:"action"`
	Resource   string         `gorm:"size:30" json:"resource"`
	ResourceID string         `gorm:"size:128" json:"resource_id"`
	IP         string         `gorm:"size:45" json:"ip"`
	UserAgent  string         `gorm:"size:255" json:"user_agent"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
