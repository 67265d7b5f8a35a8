package models

import (
	"time"

	"rishta/internal/domain"

	"gorm.io/gorm"
)

// Interest is a one-directional expression of interest. An ACCEPTED interest makes
// the pair a mutual match, which gates calling.
type Interest struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	FromUserID uint           `gorm:"not null;index:idx_interest_pair,priority:1" json:"from_user_id"`
	ToUserID   uint           `gorm:"not null;index:idx_interest_pair,priority:2" json:"to_user_id"`
	Status     string         `gorm:"size:20;not null;index" json:"status"` // PENDING, ACCEPTED, DECLINED
	AcceptedAt *time.Time     `json:"accepted_at,omitempty"`
	DeclinedAt *time.Time     `json:"declined_at,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	FromUser User `gorm:"foreignKey:FromUserID" json:"-"`
	ToUser   User `gorm:"foreignKey:ToUserID" json:"-"`
}

func (Interest) TableName() string {
	return "interests"
}

func (i *Interest) IsAccepted() bool { return i.Status == domain.InterestStatusAccepted }
