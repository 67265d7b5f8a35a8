package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"rishta/internal/domain"
	"rishta/internal/models"
	"rishta/internal/repository"
	"rishta/internal/service"
	"rishta/internal/ws"
	"rishta/pkg/telephony"

	"github.com/gin-gonic/gin"
)

// CallWebhookHandler receives provider status callbacks and drives the session
// lifecycle. The provider retries on non-2xx, so processed (including repeated)
// events always ack with 200.
type CallWebhookHandler struct {
	callSvc     *service.CallService
	profileRepo *repository.ProfileRepository
	auditRepo   *repository.AuditLogRepository
	notifySvc   *service.NotificationService
	hub         *ws.Hub
}

func NewCallWebhookHandler(callSvc *service.CallService, profileRepo *repository.ProfileRepository, auditRepo *repository.AuditLogRepository, notifySvc *service.NotificationService, hub *ws.Hub) *CallWebhookHandler {
	return &CallWebhookHandler{callSvc: callSvc, profileRepo: profileRepo, auditRepo: auditRepo, notifySvc: notifySvc, hub: hub}
}

// HandleStatus accepts the provider's status callback. Exotel posts
// form-encoded fields; a JSON body with the same shape is also accepted for
// provider-agnostic testing.
func (h *CallWebhookHandler) HandleStatus(c *gin.Context) {
	event := parseStatusEvent(c)
	if event.ProviderCallID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "missing call id"})
		return
	}

	session, err := h.callSvc.HandleProviderEvent(event)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "unknown call id"})
			return
		}
		log.Printf("[webhook] call status failed: call_id=%s status=%s err=%v", event.ProviderCallID, event.Status, err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false})
		return
	}

	h.pushStatus(session)
	if h.notifySvc != nil && (session.Status == domain.CallStatusNoAnswer || session.Status == domain.CallStatusBusy) {
		if err := h.notifySvc.NotifyMissedCall(session.ReceiverID, h.callerName(session.CallerID), session.ID); err != nil {
			log.Printf("[webhook] missed call notify failed: session=%d err=%v", session.ID, err)
		}
	}
	if h.auditRepo != nil && session.IsTerminal() {
		_ = h.auditRepo.Create(&models.AuditLog{
			Action:     "call_" + strings.ReplaceAll(session.Status, "-", "_"),
			Resource:   "call_session",
			ResourceID: strconv.FormatUint(uint64(session.ID), 10),
			IP:         c.ClientIP(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func parseStatusEvent(c *gin.Context) telephony.StatusEvent {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var event telephony.StatusEvent
		_ = c.ShouldBindJSON(&event)
		return event
	}
	duration, _ := strconv.Atoi(c.PostForm("ConversationDuration"))
	return telephony.StatusEvent{
		ProviderCallID:  c.PostForm("CallSid"),
		Status:          c.PostForm("Status"),
		DurationSeconds: duration,
		RecordingURL:    c.PostForm("RecordingUrl"),
	}
}

// pushStatus fans the sanitized session out to both participants' websockets.
func (h *CallWebhookHandler) pushStatus(session *models.CallSession) {
	if h.hub == nil {
		return
	}
	payload := gin.H{
		"type":    "call_status",
		"session": session,
	}
	h.hub.SendToUser(session.CallerID, payload)
	h.hub.SendToUser(session.ReceiverID, payload)
}

func (h *CallWebhookHandler) callerName(userID uint) string {
	if h.profileRepo == nil {
		return "A member"
	}
	if p, err := h.profileRepo.GetByUserID(userID); err == nil && p.DisplayName != "" {
		return p.DisplayName
	}
	return "A member"
}
