package handler

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/models"
	"rishta/internal/repository"
	"rishta/internal/service"

	"github.com/gin-gonic/gin"
)

// PaymentWebhookHandler confirms purchases. Credits are granted here and only
// here; a client returning from checkout never grants anything. Acks 200 for
// already-processed and unknown references so the provider stops retrying.
type PaymentWebhookHandler struct {
	cfg         *config.PaymentConfig
	paymentRepo *repository.PaymentRepository
	creditRepo  *repository.CreditRepository
	auditRepo   *repository.AuditLogRepository
	notifySvc   *service.NotificationService
}

func NewPaymentWebhookHandler(cfg *config.PaymentConfig, paymentRepo *repository.PaymentRepository, creditRepo *repository.CreditRepository, auditRepo *repository.AuditLogRepository, notifySvc *service.NotificationService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{cfg: cfg, paymentRepo: paymentRepo, creditRepo: creditRepo, auditRepo: auditRepo, notifySvc: notifySvc}
}

type paymentWebhookRequest struct {
	Reference string `json:"reference" binding:"required"`
	Status    string `json:"status" binding:"required"` // paid | failed | expired
}

func (h *PaymentWebhookHandler) HandleStatus(c *gin.Context) {
	if h.cfg.WebhookSecret != "" && c.GetHeader("X-Webhook-Secret") != h.cfg.WebhookSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid signature"})
		return
	}
	var req paymentWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	p, err := h.paymentRepo.GetByProviderRef(req.Reference)
	if err != nil {
		log.Printf("[webhook] payment not found: ref=%s", req.Reference)
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	if p.Status != domain.PaymentStatusPending {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}

	switch req.Status {
	case "paid", "completed":
		h.complete(c, p)
	case "failed", "expired", "cancelled":
		p.Status = domain.PaymentStatusFailed
		if err := h.paymentRepo.Update(p); err != nil {
			log.Printf("[webhook] payment update failed: id=%d err=%v", p.ID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false})
			return
		}
	default:
		log.Printf("[webhook] unrecognized payment status %q ref=%s, ignoring", req.Status, req.Reference)
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *PaymentWebhookHandler) complete(c *gin.Context, p *models.Payment) {
	pkg, err := h.paymentRepo.GetPackage(p.PackageID)
	if err != nil {
		log.Printf("[webhook] package lookup failed: payment=%d err=%v", p.ID, err)
		return
	}
	now := time.Now()
	p.Status = domain.PaymentStatusCompleted
	p.CompletedAt = &now
	if err := h.paymentRepo.Update(p); err != nil {
		log.Printf("[webhook] payment update failed: id=%d err=%v", p.ID, err)
		return
	}
	balance := &models.CallCreditBalance{
		UserID:           p.UserID,
		CreditsRemaining: pkg.Credits,
		ExpiresAt:        now.AddDate(0, 0, pkg.ValidityDays),
		PaymentID:        &p.ID,
	}
	if err := h.creditRepo.Grant(balance); err != nil {
		log.Printf("[webhook] credit grant failed: payment=%d err=%v", p.ID, err)
		return
	}
	_ = h.auditRepo.Create(&models.AuditLog{
		UserID:     &p.UserID,
		Action:     "payment_completed",
		Resource:   "payment",
		ResourceID: strconv.FormatUint(uint64(p.ID), 10),
		IP:         c.ClientIP(),
	})
	if err := h.notifySvc.NotifyPaymentConfirmed(p.UserID, pkg.Credits, p.ProviderRef); err != nil {
		log.Printf("[webhook] payment notify failed: payment=%d err=%v", p.ID, err)
	}
}
