package models

import (
	"time"

	"rishta/internal/domain"

	"gorm.io/gorm"
)

// CallSession tracks one masked call from initiation through the provider's status
// callbacks. Real numbers are stored for provider dial-out only and are never
// serialized to clients.
type CallSession struct {
	ID                    uint           `gorm:"primaryKey" json:"id"`
	CallerID              uint           `gorm:"not null;index" json:"caller_id"`
	ReceiverID            uint           `gorm:"not null;index" json:"receiver_id"`
	ProviderCallID        string         `gorm:"uniqueIndex;size:128;not null" json:"provider_call_id"`
	Status                string         `gorm:"size:20;not null;index" json:"status"`
	VirtualNumberCaller   string         `gorm:"size:20" json:"virtual_number_caller"`
	VirtualNumberReceiver string         `gorm:"size:20" json:"virtual_number_receiver"`
	RealNumberCaller      string         `gorm:"size:20" json:"-"`
	RealNumberReceiver    string         `gorm:"size:20" json:"-"`
	CostPerMinute         int64          `gorm:"not null" json:"cost_per_minute"`
	DurationSeconds       int            `json:"duration_seconds"`
	Cost                  int64          `json:"cost"`
	RecordingURL          string         `gorm:"size:512" json:"-"`
	StartedAt             *time.Time     `json:"started_at,omitempty"`
	EndedAt               *time.Time     `json:"ended_at,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`

	Caller   User `gorm:"foreignKey:CallerID" json:"-"`
	Receiver User `gorm:"foreignKey:ReceiverID" json:"-"`
}

func (CallSession) TableName() string {
	return "call_sessions"
}

func (s *CallSession) IsTerminal() bool { return domain.IsTerminalCallStatus(s.Status) }

// IsParticipant reports whether userID is the caller or receiver.
func (s *CallSession) IsParticipant(userID uint) bool {
	return userID == s.CallerID || userID == s.ReceiverID
}

// CallLogEntry is an append-only per-participant record of a completed call.
// Created in pairs (outgoing for the caller, incoming for the receiver).
type CallLogEntry struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"not null;index" json:"user_id"`
	OtherUserID     uint           `gorm:"not null" json:"other_user_id"`
	SessionID       uint           `gorm:"not null;index" json:"session_id"`
	Direction       string         `gorm:"size:10;not null" json:"direction"` // outgoing | incoming
	DurationSeconds int            `json:"duration_seconds"`
	Cost            int64          `json:"cost"`
	CreatedAt       time.Time      `json:"created_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User    User        `gorm:"foreignKey:UserID" json:"-"`
	Session CallSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (CallLogEntry) TableName() string {
	return "call_log_entries"
}
