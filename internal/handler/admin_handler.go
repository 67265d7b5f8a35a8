package handler

import (
	"log"
	"net/http"
	"strconv"

	"rishta/internal/domain"
	"rishta/internal/middleware"
	"rishta/internal/models"
	"rishta/internal/repository"
	"rishta/internal/service"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	userRepo    *repository.UserRepository
	profileRepo *repository.ProfileRepository
	paymentRepo *repository.PaymentRepository
	auditRepo   *repository.AuditLogRepository
	notifySvc   *service.NotificationService
}

func NewAdminHandler(userRepo *repository.UserRepository, profileRepo *repository.ProfileRepository, paymentRepo *repository.PaymentRepository, auditRepo *repository.AuditLogRepository, notifySvc *service.NotificationService) *AdminHandler {
	return &AdminHandler{userRepo: userRepo, profileRepo: profileRepo, paymentRepo: paymentRepo, auditRepo: auditRepo, notifySvc: notifySvc}
}

// ListProfiles returns profiles awaiting moderation (or any status via ?status=).
func (h *AdminHandler) ListProfiles(c *gin.Context) {
	status := c.DefaultQuery("status", domain.ProfileStatusPending)
	limit, offset := pagination(c)
	profiles, err := h.profileRepo.ListByStatus(status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profiles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

func (h *AdminHandler) ApproveProfile(c *gin.Context) {
	h.moderate(c, domain.ProfileStatusApproved)
}

func (h *AdminHandler) RejectProfile(c *gin.Context) {
	h.moderate(c, domain.ProfileStatusRejected)
}

func (h *AdminHandler) moderate(c *gin.Context, status string) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return
	}
	var req struct {
		Reason string `json:"reason" binding:"max=255"`
	}
	_ = c.ShouldBindJSON(&req)
	if status == domain.ProfileStatusRejected && req.Reason == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reason required for rejection"})
		return
	}

	p, err := h.profileRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err := h.profileRepo.SetStatus(p.ID, status, req.Reason); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     "profile_" + status,
		Resource:   "profile",
		ResourceID: strconv.FormatUint(uint64(p.ID), 10),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})

	var notifyErr error
	if status == domain.ProfileStatusApproved {
		notifyErr = h.notifySvc.NotifyProfileApproved(p.UserID)
	} else {
		notifyErr = h.notifySvc.NotifyProfileRejected(p.UserID, req.Reason)
	}
	if notifyErr != nil {
		log.Printf("[admin] moderation notify failed: profile=%d err=%v", p.ID, notifyErr)
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.userRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load users"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) SuspendUser(c *gin.Context) {
	h.setAccountStatus(c, domain.AccountStatusSuspended)
}

func (h *AdminHandler) ActivateUser(c *gin.Context) {
	h.setAccountStatus(c, domain.AccountStatusActive)
}

func (h *AdminHandler) setAccountStatus(c *gin.Context, status string) {
	adminID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	u, err := h.userRepo.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if u.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "cannot change an admin account"})
		return
	}
	if err := h.userRepo.SetAccountStatus(u.ID, status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update user"})
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &adminID,
		Action:     "account_" + status,
		Resource:   "user",
		ResourceID: strconv.FormatUint(uint64(u.ID), 10),
		IP:         c.ClientIP(),
		UserAgent:  c.Request.UserAgent(),
	})
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *AdminHandler) ListPayments(c *gin.Context) {
	limit, offset := pagination(c)
	payments, err := h.paymentRepo.List(c.Query("status"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.auditRepo.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load audit logs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
