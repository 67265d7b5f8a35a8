package models

import (
	"time"

	"gorm.io/gorm"
)

// CallCreditBalance is a per-user decrementing counter of remaining call credits
// with an expiry. Deductions go against the oldest non-expired balance first and
// must never drive the counter negative.
type CallCreditBalance struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	UserID           uint           `gorm:"not null;index" json:"user_id"`
	CreditsRemaining int64          `gorm:"not null;default:0" json:"credits_remaining"`
	ExpiresAt        time.Time      `gorm:"index" json:"expires_at"`
	PaymentID        *uint          `gorm:"index" json:"payment_id,omitempty"` // purchase that granted this balance
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (CallCreditBalance) TableName() string {
	return "call_credit_balances"
}

func (b *CallCreditBalance) IsExpired(t time.Time) bool { return !b.ExpiresAt.After(t) }

// CreditPackage is a purchasable bundle of call credits.
type CreditPackage struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:50;not null" json:"name"`
	Credits      int64          `gorm:"not null" json:"credits"`
	PriceCents   int64          `gorm:"not null" json:"price_cents"`
	Currency     string         `gorm:"size:3;default:'INR'" json:"currency"`
	ValidityDays int            `gorm:"not null;default:30" json:"validity_days"`
	IsActive     bool           `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

func (CreditPackage) TableName() string {
	return "credit_packages"
}
