package models

import (
	"time"

	"gorm.io/gorm"
)

type Payment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	PackageID   uint           `gorm:"not null;index" json:"package_id"`
	AmountCents int64          `gorm:"not null" json:"amount_cents"`
	Currency    string         `gorm:"size:3;default:'INR'" json:"currency"`
	Status      string         `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	ProviderRef string         `gorm:"uniqueIndex;size:128" json:"provider_ref"`
	Metadata    string         `gorm:"type:text" json:"-"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	User    User          `gorm:"foreignKey:UserID" json:"-"`
	Package CreditPackage `gorm:"foreignKey:PackageID" json:"-"`
}

func (Payment) TableName() string {
	return "payments"
}
