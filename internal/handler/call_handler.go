package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"rishta/internal/middleware"
	"rishta/internal/repository"
	"rishta/internal/service"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callSvc  *service.CallService
	callRepo *repository.CallRepository
}

func NewCallHandler(callSvc *service.CallService, callRepo *repository.CallRepository) *CallHandler {
	return &CallHandler{callSvc: callSvc, callRepo: callRepo}
}

// Initiate starts a masked call to a mutual match. Responses never carry real
// phone numbers; clients show the virtual numbers only.
func (h *CallHandler) Initiate(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req struct {
		ToUserID uint `json:"to_user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ToUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot call yourself"})
		return
	}

	session, err := h.callSvc.InitiateCall(c.Request.Context(), userID, req.ToUserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInsufficientCredits):
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotMatched):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		case errors.Is(err, service.ErrProviderError):
			c.JSON(http.StatusBadGateway, gin.H{"error": "call setup failed, try again"})
		default:
			log.Printf("[call] initiate failed: caller=%d target=%d err=%v", userID, req.ToUserID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "call setup failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetSession returns the sanitized session; participants only.
func (h *CallHandler) GetSession(c *gin.Context) {
	userID := middleware.GetUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session id"})
		return
	}
	view, err := h.callSvc.GetSessionView(uint(id), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}

// History lists the caller's call log, newest first.
func (h *CallHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit, offset := pagination(c)
	logs, err := h.callRepo.ListLogsByUser(userID, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load call history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"calls": logs})
}
