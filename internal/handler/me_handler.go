package handler

import (
	"errors"
	"net/http"
	"time"

	"rishta/internal/domain"
	"rishta/internal/middleware"
	"rishta/internal/models"
	"rishta/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	creditRepo  *repository.CreditRepository
}

func NewMeHandler(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, creditRepo *repository.CreditRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo, profileRepo: profileRepo, creditRepo: creditRepo}
}

func (h *MeHandler) Get(c *gin.Context) {
	userID := middleware.GetUserID(c)
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	profile, _ := h.profileRepo.GetByUserID(userID)
	credits, _ := h.creditRepo.TotalActive(userID)
	c.JSON(http.StatusOK, gin.H{
		"user":    u,
		"profile": profile,
		"credits": credits,
	})
}

type ProfileRequest struct {
	DisplayName  string   `json:"display_name" binding:"required,min=2,max=100"`
	Gender       string   `json:"gender" binding:"required,oneof=MALE FEMALE"`
	DateOfBirth  string   `json:"date_of_birth" binding:"required"`
	Religion     string   `json:"religion" binding:"required,max=50"`
	Caste        string   `json:"caste" binding:"max=50"`
	Education    string   `json:"education" binding:"max=50"`
	MotherTongue string   `json:"mother_tongue" binding:"max=50"`
	State        string   `json:"state" binding:"required,max=50"`
	City         string   `json:"city" binding:"max=50"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Bio          string   `json:"bio" binding:"max=2000"`
	Expectations string   `json:"expectations" binding:"max=2000"`
}

// UpsertProfile creates or replaces the caller's biodata. Any edit sends the
// profile back through moderation.
func (h *MeHandler) UpsertProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date_of_birth format (use YYYY-MM-DD)"})
		return
	}

	existing, err := h.profileRepo.GetByUserID(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	p := existing
	if p == nil {
		p = &models.Profile{UserID: userID, Status: domain.ProfileStatusPending}
	}
	p.DisplayName = req.DisplayName
	p.Gender = req.Gender
	p.DateOfBirth = &dob
	p.Religion = req.Religion
	p.Caste = req.Caste
	p.Education = req.Education
	p.MotherTongue = req.MotherTongue
	p.State = req.State
	p.City = req.City
	p.Latitude = req.Latitude
	p.Longitude = req.Longitude
	p.Bio = req.Bio
	p.Expectations = req.Expectations

	if existing == nil {
		err = h.profileRepo.Create(p)
	} else {
		err = h.profileRepo.Update(p)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *MeHandler) GetProfile(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p, err := h.profileRepo.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

// UpdatePhone lets Google signups set their real number before calling.
func (h *MeHandler) UpdatePhone(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Phone string `json:"phone" binding:"required,min=10,max=15"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if existing, err := h.userRepo.GetByPhone(req.Phone); err == nil && existing.ID != userID {
		c.JSON(http.StatusConflict, gin.H{"error": "phone already registered"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	u.Phone = req.Phone
	if err := h.userRepo.Update(u); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update phone"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MeHandler) UpdateFCMToken(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userRepo.SetFCMToken(userID, req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *MeHandler) GetCredits(c *gin.Context) {
	userID := middleware.GetUserID(c)
	total, err := h.creditRepo.TotalActive(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load credits"})
		return
	}
	balances, _ := h.creditRepo.ListByUser(userID)
	c.JSON(http.StatusOK, gin.H{
		"total":    total,
		"balances": balances,
	})
}
