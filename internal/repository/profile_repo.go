package repository

import (
	"time"

	"rishta/internal/domain"
	"rishta/internal/models"

	"gorm.io/gorm"
)

type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(p *models.Profile) error {
	return r.db.Create(p).Error
}

func (r *ProfileRepository) GetByID(id uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepository) GetByUserID(userID uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update saves profile edits. Any member edit sends the profile back to PENDING so
// admins re-moderate the new content.
func (r *ProfileRepository) Update(p *models.Profile) error {
	p.Status = domain.ProfileStatusPending
	p.RejectReason = ""
	p.ReviewedAt = nil
	return r.db.Save(p).Error
}

func (r *ProfileRepository) SetPhoto(userID uint, url string) error {
	return r.db.Model(&models.Profile{}).Where("user_id = ?", userID).Update("photo_url", url).Error
}

func (r *ProfileRepository) SetStatus(profileID uint, status, reason string) error {
	now := time.Now()
	return r.db.Model(&models.Profile{}).Where("id = ?", profileID).Updates(map[string]interface{}{
		"status":        status,
		"reject_reason": reason,
		"reviewed_at":   &now,
	}).Error
}

func (r *ProfileRepository) ListByStatus(status string, limit, offset int) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.Where("status = ?", status).Order("created_at ASC").
		Limit(limit).Offset(offset).Find(&profiles).Error
	return profiles, err
}
