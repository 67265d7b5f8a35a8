package models

import (
	"time"

	"gorm.io/gorm"
)

// Profile is the matrimonial biodata shown to other members. Moderated by admins:
// only APPROVED profiles appear in search and matches.
type Profile struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	DisplayName  string     `gorm:"size:100;not null" json:"display_name"`
	Gender       string     `gorm:"size:10;not null;index" json:"gender"` // MALE | FEMALE
	DateOfBirth  *time.Time `json:"date_of_birth"`
	Religion     string     `gorm:"size:50;index" json:"religion"`
	Caste        string     `gorm:"size:50" json:"caste"`
	Education    string     `gorm:"size:50" json:"education"`
	MotherTongue string     `gorm:"size:50" json:"mother_tongue"`
	State        string     `gorm:"size:50;index" json:"state"`
	City         string     `gorm:"size:50" json:"city"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio"`
	Expectations string     `gorm:"type:text" json:"expectations"`
	PhotoURL     string     `gorm:"size:512" json:"photo_url"`
	Status       string     `gorm:"size:20;not null;default:'PENDING';index" json:"status"` // PENDING, APPROVED, REJECTED
	RejectReason string     `gorm:"size:255" json:"reject_reason,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// Age returns age in years at t; 0 when DOB is not set.
func (p *Profile) Age(t time.Time) int {
	if p.DateOfBirth == nil {
		return 0
	}
	age := t.Year() - p.DateOfBirth.Year()
	if t.YearDay() < p.DateOfBirth.YearDay() {
		age--
	}
	return age
}
