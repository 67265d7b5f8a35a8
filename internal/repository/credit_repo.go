package repository

import (
	"time"

	"rishta/internal/models"

	"gorm.io/gorm"
)

type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) Grant(b *models.CallCreditBalance) error {
	return r.db.Create(b).Error
}

// FindActiveBalance returns the oldest non-expired balance with credits remaining,
// or gorm.ErrRecordNotFound. Deductions always target the oldest balance first.
func (r *CreditRepository) FindActiveBalance(userID uint) (*models.CallCreditBalance, error) {
	var b models.CallCreditBalance
	err := r.db.Where("user_id = ? AND credits_remaining > 0 AND expires_at > ?", userID, time.Now()).
		Order("created_at ASC").First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Deduct subtracts up to amount from a balance as a single conditional UPDATE,
// flooring at zero. Read-then-write in application code would lose updates when
// two webhook deliveries race; the row-level atomicity of the store serializes
// them instead. Returns true when a row was debited.
func (r *CreditRepository) Deduct(balanceID uint, amount int64) (bool, error) {
	res := r.db.Exec(
		"UPDATE call_credit_balances SET credits_remaining = GREATEST(credits_remaining - ?, 0), updated_at = ? WHERE id = ? AND credits_remaining > 0",
		amount, time.Now(), balanceID)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// TotalActive sums the user's unexpired credits for display.
func (r *CreditRepository) TotalActive(userID uint) (int64, error) {
	var total *int64
	err := r.db.Model(&models.CallCreditBalance{}).
		Select("SUM(credits_remaining)").
		Where("user_id = ? AND expires_at > ?", userID, time.Now()).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *CreditRepository) ListByUser(userID uint) ([]models.CallCreditBalance, error) {
	var balances []models.CallCreditBalance
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&balances).Error
	return balances, err
}
