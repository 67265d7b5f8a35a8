package repository

import (
	"rishta/internal/domain"
	"rishta/internal/models"

	"gorm.io/gorm"
)

type CallRepository struct {
	db *gorm.DB
}

func NewCallRepository(db *gorm.DB) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) CreateSession(s *models.CallSession) error {
	return r.db.Create(s).Error
}

func (r *CallRepository) GetSessionByID(id uint) (*models.CallSession, error) {
	var s models.CallSession
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *CallRepository) GetSessionByProviderCallID(providerCallID string) (*models.CallSession, error) {
	var s models.CallSession
	err := r.db.Where("provider_call_id = ?", providerCallID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSession applies a non-terminal transition. The status guard keeps a late
// ringing or in-progress event from overwriting a session another delivery has
// already finished.
func (r *CallRepository) UpdateSession(sessionID uint, fields map[string]interface{}) error {
	return r.db.Model(&models.CallSession{}).
		Where("id = ? AND status NOT IN ?", sessionID, domain.TerminalCallStatuses).
		Updates(fields).Error
}

// FinishSession moves a session into a terminal state. The conditional UPDATE is
// the serialization point for concurrent webhook deliveries: exactly one caller
// sees true, and only that caller may settle billing for the session.
func (r *CallRepository) FinishSession(sessionID uint, fields map[string]interface{}) (bool, error) {
	res := r.db.Model(&models.CallSession{}).
		Where("id = ? AND status NOT IN ?", sessionID, domain.TerminalCallStatuses).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *CallRepository) CreateLogEntry(e *models.CallLogEntry) error {
	return r.db.Create(e).Error
}

func (r *CallRepository) ListLogsByUser(userID uint, limit, offset int) ([]models.CallLogEntry, error) {
	var entries []models.CallLogEntry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").
		Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

// CountLogsBySession guards against duplicate log pairs on webhook re-delivery.
func (r *CallRepository) CountLogsBySession(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.CallLogEntry{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}
