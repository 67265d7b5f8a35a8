package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"rishta/internal/domain"
	"rishta/internal/middleware"
	"rishta/internal/models"
	"rishta/internal/repository"
	"rishta/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type InterestHandler struct {
	interestRepo *repository.InterestRepository
	profileRepo  *repository.ProfileRepository
	userRepo     *repository.UserRepository
	notifySvc    *service.NotificationService
}

func NewInterestHandler(interestRepo *repository.InterestRepository, profileRepo *repository.ProfileRepository, userRepo *repository.UserRepository, notifySvc *service.NotificationService) *InterestHandler {
	return &InterestHandler{interestRepo: interestRepo, profileRepo: profileRepo, userRepo: userRepo, notifySvc: notifySvc}
}

// Send expresses interest in another member. One interest per pair in either
// direction; a declined interest does not reopen the pair.
func (h *InterestHandler) Send(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ToUserID uint `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ToUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot send interest to yourself"})
		return
	}

	target, err := h.userRepo.GetByID(req.ToUserID)
	if err != nil || !target.IsActive() {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	targetProfile, err := h.profileRepo.GetByUserID(req.ToUserID)
	if err != nil || targetProfile.Status != domain.ProfileStatusApproved {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	if existing, err := h.interestRepo.GetBetween(userID, req.ToUserID); err == nil && existing != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "interest already exists", "interest": existing})
		return
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send interest"})
		return
	}

	interest := &models.Interest{
		FromUserID: userID,
		ToUserID:   req.ToUserID,
		Status:     domain.InterestStatusPending,
	}
	if err := h.interestRepo.Create(interest); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send interest"})
		return
	}
	if err := h.notifySvc.NotifyInterestReceived(req.ToUserID, interest.ID, h.displayName(userID)); err != nil {
		log.Printf("[interest] notify failed: interest=%d err=%v", interest.ID, err)
	}
	c.JSON(http.StatusCreated, gin.H{"interest": interest})
}

// Accept marks a pending interest accepted, making the pair a mutual match.
func (h *InterestHandler) Accept(c *gin.Context) {
	h.respond(c, domain.InterestStatusAccepted)
}

// Decline marks a pending interest declined.
func (h *InterestHandler) Decline(c *gin.Context) {
	h.respond(c, domain.InterestStatusDeclined)
}

func (h *InterestHandler) respond(c *gin.Context, status string) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid interest id"})
		return
	}
	interest, err := h.interestRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "interest not found"})
		return
	}
	if interest.ToUserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the recipient of this interest"})
		return
	}
	if interest.Status != domain.InterestStatusPending {
		c.JSON(http.StatusConflict, gin.H{"error": "interest already responded to"})
		return
	}

	if status == domain.InterestStatusAccepted {
		err = h.interestRepo.Accept(interest.ID)
	} else {
		err = h.interestRepo.Decline(interest.ID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update interest"})
		return
	}
	if status == domain.InterestStatusAccepted {
		if err := h.notifySvc.NotifyInterestAccepted(interest.FromUserID, h.displayName(userID)); err != nil {
			log.Printf("[interest] notify failed: interest=%d err=%v", interest.ID, err)
		}
	}
	interest.Status = status
	c.JSON(http.StatusOK, gin.H{"interest": interest})
}

func (h *InterestHandler) ListIncoming(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	interests, err := h.interestRepo.ListIncoming(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

func (h *InterestHandler) ListOutgoing(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	interests, err := h.interestRepo.ListOutgoing(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load interests"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"interests": interests})
}

func (h *InterestHandler) displayName(userID uint) string {
	if p, err := h.profileRepo.GetByUserID(userID); err == nil && p.DisplayName != "" {
		return p.DisplayName
	}
	return "A member"
}

func pagination(c *gin.Context) (limit, offset int) {
	limit = 20
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
