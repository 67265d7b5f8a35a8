package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/middleware"
	"rishta/internal/models"
	"rishta/internal/repository"
	"rishta/pkg/payment"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PaymentHandler struct {
	cfg         *config.PaymentConfig
	provider    payment.Provider
	paymentRepo *repository.PaymentRepository
	userRepo    *repository.UserRepository
}

func NewPaymentHandler(cfg *config.PaymentConfig, provider payment.Provider, paymentRepo *repository.PaymentRepository, userRepo *repository.UserRepository) *PaymentHandler {
	return &PaymentHandler{cfg: cfg, provider: provider, paymentRepo: paymentRepo, userRepo: userRepo}
}

func (h *PaymentHandler) ListPackages(c *gin.Context) {
	packages, err := h.paymentRepo.ListPackages()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load packages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"packages": packages})
}

// Initiate creates a pending payment and returns the provider checkout URL.
// Credits are granted only when the provider webhook confirms the payment.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		PackageID uint `json:"package_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pkg, err := h.paymentRepo.GetPackage(req.PackageID)
	if err != nil || !pkg.IsActive {
		c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
		return
	}
	u, err := h.userRepo.GetByID(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}

	orderID := "rishta_" + uuid.NewString()
	resp, err := h.provider.InitiatePayment(c.Request.Context(), payment.PaymentRequest{
		UserID:        userID,
		AmountCents:   pkg.PriceCents,
		Currency:      pkg.Currency,
		OrderID:       orderID,
		Description:   pkg.Name + " call credit package",
		CustomerPhone: u.Phone,
		CustomerEmail: u.Email,
		ExpiresIn:     h.cfg.PaymentExpiry,
	})
	if err != nil {
		log.Printf("[payment] initiate failed: user=%d package=%d err=%v", userID, req.PackageID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
		return
	}

	meta, _ := json.Marshal(gin.H{"order_id": orderID, "checkout_url": resp.CheckoutURL})
	p := &models.Payment{
		UserID:      userID,
		PackageID:   pkg.ID,
		AmountCents: pkg.PriceCents,
		Currency:    pkg.Currency,
		Status:      domain.PaymentStatusPending,
		ProviderRef: resp.Reference,
		Metadata:    string(meta),
	}
	if err := h.paymentRepo.Create(p); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record payment"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"payment":      p,
		"checkout_url": resp.CheckoutURL,
	})
}

func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	payments, err := h.paymentRepo.ListByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"payments": payments})
}
