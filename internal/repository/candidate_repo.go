package repository

import (
	"time"

	"rishta/internal/domain"
	"rishta/internal/matching"

	"gorm.io/gorm"
)

// CandidateFilters narrows the search pool before the ranking engine orders it.
type CandidateFilters struct {
	Religion  string
	Caste     string
	State     string
	Education string
	MinAge    *int
	MaxAge    *int
	Limit     int
	Offset    int
}

// CandidateRepository builds fresh CandidateProfile snapshots from profile rows.
// Typed at the boundary: rows scan into an explicit struct, never interface{}.
type CandidateRepository struct {
	db *gorm.DB
}

func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

type candidateRow struct {
	ProfileID     uint
	UserID        uint
	DisplayName   string
	Gender        string
	DateOfBirth   *time.Time
	Religion      string
	Caste         string
	Education     string
	MotherTongue  string
	State         string
	City          string
	Latitude      *float64
	Longitude     *float64
	PhotoURL      string
	Status        string
	AccountStatus string
}

func (row candidateRow) toCandidate(now time.Time) matching.CandidateProfile {
	age := 0
	if row.DateOfBirth != nil {
		age = now.Year() - row.DateOfBirth.Year()
		if now.YearDay() < row.DateOfBirth.YearDay() {
			age--
		}
	}
	return matching.CandidateProfile{
		ID:            row.ProfileID,
		UserID:        row.UserID,
		DisplayName:   row.DisplayName,
		Gender:        row.Gender,
		Age:           age,
		Religion:      row.Religion,
		Caste:         row.Caste,
		Education:     row.Education,
		MotherTongue:  row.MotherTongue,
		State:         row.State,
		City:          row.City,
		Latitude:      row.Latitude,
		Longitude:     row.Longitude,
		PhotoURL:      row.PhotoURL,
		Status:        row.Status,
		AccountStatus: row.AccountStatus,
	}
}

func (r *CandidateRepository) baseQuery() *gorm.DB {
	return r.db.Table("profiles p").
		Select(`
			p.id as profile_id, p.user_id, p.display_name, p.gender, p.date_of_birth,
			p.religion, p.caste, p.education, p.mother_tongue, p.state, p.city,
			p.latitude, p.longitude, p.photo_url, p.status,
			u.account_status
		`).
		Joins("INNER JOIN users u ON u.id = p.user_id AND u.deleted_at IS NULL").
		Where("p.deleted_at IS NULL")
}

// FindCandidates returns approved, active candidates matching the filters,
// excluding the requester. The ranking engine applies gender and ordering rules.
func (r *CandidateRepository) FindCandidates(requesterUserID uint, f CandidateFilters) ([]matching.CandidateProfile, error) {
	query := r.baseQuery().
		Where("p.user_id != ?", requesterUserID).
		Where("p.status = ?", domain.ProfileStatusApproved).
		Where("u.account_status = ?", domain.AccountStatusActive)

	if f.Religion != "" {
		query = query.Where("p.religion = ?", f.Religion)
	}
	if f.Caste != "" {
		query = query.Where("p.caste = ?", f.Caste)
	}
	if f.State != "" {
		query = query.Where("p.state = ?", f.State)
	}
	if f.Education != "" {
		query = query.Where("p.education = ?", f.Education)
	}
	now := time.Now()
	if f.MinAge != nil {
		query = query.Where("p.date_of_birth <= ?", now.AddDate(-*f.MinAge, 0, 0))
	}
	if f.MaxAge != nil {
		query = query.Where("p.date_of_birth >= ?", now.AddDate(-*f.MaxAge-1, 0, 0))
	}

	var rows []candidateRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	candidates := make([]matching.CandidateProfile, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.toCandidate(now))
	}
	return candidates, nil
}

// FindCandidatesByUserIDs builds snapshots for a fixed set of users (mutual matches).
func (r *CandidateRepository) FindCandidatesByUserIDs(userIDs []uint) ([]matching.CandidateProfile, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var rows []candidateRow
	if err := r.baseQuery().Where("p.user_id IN ?", userIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	candidates := make([]matching.CandidateProfile, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, row.toCandidate(now))
	}
	return candidates, nil
}

// GetCandidateByUserID builds the requester snapshot handed to the ranking engine.
func (r *CandidateRepository) GetCandidateByUserID(userID uint) (*matching.CandidateProfile, error) {
	var row candidateRow
	err := r.baseQuery().Where("p.user_id = ?", userID).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	c := row.toCandidate(time.Now())
	return &c, nil
}
