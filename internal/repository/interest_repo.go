package repository

import (
	"time"

	"rishta/internal/domain"
	"rishta/internal/models"

	"gorm.io/gorm"
)

type InterestRepository struct {
	db *gorm.DB
}

func NewInterestRepository(db *gorm.DB) *InterestRepository {
	return &InterestRepository{db: db}
}

func (r *InterestRepository) Create(i *models.Interest) error {
	return r.db.Create(i).Error
}

func (r *InterestRepository) GetByID(id uint) (*models.Interest, error) {
	var i models.Interest
	err := r.db.First(&i, id).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// GetBetween returns an interest in either direction between two users, if any.
func (r *InterestRepository) GetBetween(userA, userB uint) (*models.Interest, error) {
	var i models.Interest
	err := r.db.Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
		userA, userB, userB, userA).First(&i).Error
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InterestRepository) Accept(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Interest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      domain.InterestStatusAccepted,
		"accepted_at": &now,
	}).Error
}

func (r *InterestRepository) Decline(id uint) error {
	now := time.Now()
	return r.db.Model(&models.Interest{}).Where("id = ?", id).Updates(map[string]interface{}{
		"status":      domain.InterestStatusDeclined,
		"declined_at": &now,
	}).Error
}

// IsMatched reports whether an ACCEPTED interest exists between the two users in
// either direction. Calling is gated on this.
func (r *InterestRepository) IsMatched(userA, userB uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.Interest{}).
		Where("status = ?", domain.InterestStatusAccepted).
		Where("(from_user_id = ? AND to_user_id = ?) OR (from_user_id = ? AND to_user_id = ?)",
			userA, userB, userB, userA).
		Count(&count).Error
	return count > 0, err
}

// MatchedUserIDs returns the ids of every user mutually matched with userID.
func (r *InterestRepository) MatchedUserIDs(userID uint) ([]uint, error) {
	var interests []models.Interest
	err := r.db.Where("status = ?", domain.InterestStatusAccepted).
		Where("from_user_id = ? OR to_user_id = ?", userID, userID).
		Find(&interests).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(interests))
	for _, i := range interests {
		if i.FromUserID == userID {
			ids = append(ids, i.ToUserID)
		} else {
			ids = append(ids, i.FromUserID)
		}
	}
	return ids, nil
}

func (r *InterestRepository) ListIncoming(userID uint, limit, offset int) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.Where("to_user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&interests).Error
	return interests, err
}

func (r *InterestRepository) ListOutgoing(userID uint, limit, offset int) ([]models.Interest, error) {
	var interests []models.Interest
	err := r.db.Where("from_user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&interests).Error
	return interests, err
}
