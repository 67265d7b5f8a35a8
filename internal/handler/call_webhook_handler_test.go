package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/models"
	"rishta/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type webhookSessionStore struct {
	sessions map[string]*models.CallSession
	logs     []models.CallLogEntry
}

func (s *webhookSessionStore) CreateSession(sess *models.CallSession) error {
	s.sessions[sess.ProviderCallID] = sess
	return nil
}

func (s *webhookSessionStore) GetSessionByID(id uint) (*models.CallSession, error) {
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *webhookSessionStore) GetSessionByProviderCallID(providerCallID string) (*models.CallSession, error) {
	if sess, ok := s.sessions[providerCallID]; ok {
		return sess, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *webhookSessionStore) UpdateSession(sessionID uint, fields map[string]interface{}) error {
	sess, err := s.GetSessionByID(sessionID)
	if err != nil {
		return err
	}
	if sess.IsTerminal() {
		return nil
	}
	if v, ok := fields["status"]; ok {
		sess.Status = v.(string)
	}
	return nil
}

func (s *webhookSessionStore) FinishSession(sessionID uint, fields map[string]interface{}) (bool, error) {
	sess, err := s.GetSessionByID(sessionID)
	if err != nil {
		return false, err
	}
	if sess.IsTerminal() {
		return false, nil
	}
	if v, ok := fields["status"]; ok {
		sess.Status = v.(string)
	}
	return true, nil
}

func (s *webhookSessionStore) CreateLogEntry(e *models.CallLogEntry) error {
	s.logs = append(s.logs, *e)
	return nil
}

func (s *webhookSessionStore) CountLogsBySession(sessionID uint) (int64, error) {
	var n int64
	for _, l := range s.logs {
		if l.SessionID == sessionID {
			n++
		}
	}
	return n, nil
}

type webhookCreditStore struct{}

func (webhookCreditStore) FindActiveBalance(userID uint) (*models.CallCreditBalance, error) {
	return nil, gorm.ErrRecordNotFound
}

func (webhookCreditStore) Deduct(balanceID uint, amount int64) (bool, error) {
	return false, nil
}

func newWebhookRouter(store *webhookSessionStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.TelephonyConfig{CostPerMinute: 1, TimeLimitSeconds: 3600, RingTimeoutSeconds: 30}
	svc := service.NewCallService(cfg, nil, store, webhookCreditStore{}, nil, nil, nil)
	h := NewCallWebhookHandler(svc, nil, nil, nil, nil)
	r := gin.New()
	r.POST("/webhooks/call", h.HandleStatus)
	return r
}

func postForm(r *gin.Engine, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/call", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCallWebhookMissingCallID(t *testing.T) {
	r := newWebhookRouter(&webhookSessionStore{sessions: map[string]*models.CallSession{}})
	w := postForm(r, url.Values{"Status": {"ringing"}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCallWebhookUnknownCallID(t *testing.T) {
	r := newWebhookRouter(&webhookSessionStore{sessions: map[string]*models.CallSession{}})
	w := postForm(r, url.Values{"CallSid": {"nope"}, "Status": {"ringing"}})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCallWebhookRinging(t *testing.T) {
	store := &webhookSessionStore{sessions: map[string]*models.CallSession{
		"sid1": {ID: 1, CallerID: 1, ReceiverID: 2, ProviderCallID: "sid1", Status: domain.CallStatusInitiated, CostPerMinute: 1},
	}}
	r := newWebhookRouter(store)
	w := postForm(r, url.Values{"CallSid": {"sid1"}, "Status": {"ringing"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || !resp.Success {
		t.Fatalf("expected success ack, got %s", w.Body.String())
	}
	if store.sessions["sid1"].Status != domain.CallStatusRinging {
		t.Fatalf("expected status ringing, got %s", store.sessions["sid1"].Status)
	}
}

func TestCallWebhookRepeatedTerminalAcks200(t *testing.T) {
	store := &webhookSessionStore{sessions: map[string]*models.CallSession{
		"sid1": {ID: 1, CallerID: 1, ReceiverID: 2, ProviderCallID: "sid1", Status: domain.CallStatusCompleted, CostPerMinute: 1},
	}}
	r := newWebhookRouter(store)
	w := postForm(r, url.Values{"CallSid": {"sid1"}, "Status": {"completed"}, "ConversationDuration": {"120"}})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat delivery, got %d", w.Code)
	}
	if store.sessions["sid1"].Status != domain.CallStatusCompleted {
		t.Fatalf("terminal status changed on repeat delivery: %s", store.sessions["sid1"].Status)
	}
	if len(store.logs) != 0 {
		t.Fatalf("repeat delivery wrote %d log entries", len(store.logs))
	}
}

func TestCallWebhookJSONBody(t *testing.T) {
	store := &webhookSessionStore{sessions: map[string]*models.CallSession{
		"sid2": {ID: 2, CallerID: 1, ReceiverID: 2, ProviderCallID: "sid2", Status: domain.CallStatusRinging, CostPerMinute: 1},
	}}
	r := newWebhookRouter(store)
	body := `{"provider_call_id":"sid2","status":"busy"}`
	req := httptest.NewRequest(http.MethodPost, "/webhooks/call", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if store.sessions["sid2"].Status != domain.CallStatusBusy {
		t.Fatalf("expected busy, got %s", store.sessions["sid2"].Status)
	}
}
