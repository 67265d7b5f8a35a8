package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/models"
	"rishta/pkg/telephony"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInsufficientCredits = errors.New("no call credits remaining")
	ErrNotMatched          = errors.New("users are not mutually matched")
	ErrNotFound            = errors.New("not found")
	ErrProviderError       = errors.New("telephony provider error")
	ErrForbidden           = errors.New("not a participant of this session")
)

// Storage collaborators, satisfied by the gorm repositories. Kept narrow so the
// lifecycle can be unit-tested against in-memory fakes.
type SessionStore interface {
	CreateSession(s *models.CallSession) error
	GetSessionByID(id uint) (*models.CallSession, error)
	GetSessionByProviderCallID(providerCallID string) (*models.CallSession, error)
	UpdateSession(sessionID uint, fields map[string]interface{}) error
	FinishSession(sessionID uint, fields map[string]interface{}) (bool, error)
	CreateLogEntry(e *models.CallLogEntry) error
	CountLogsBySession(sessionID uint) (int64, error)
}

type CreditStore interface {
	FindActiveBalance(userID uint) (*models.CallCreditBalance, error)
	Deduct(balanceID uint, amount int64) (bool, error)
}

type AccountStore interface {
	GetByID(id uint) (*models.User, error)
}

type ProfileStore interface {
	GetByUserID(userID uint) (*models.Profile, error)
}

type MatchStore interface {
	IsMatched(userA, userB uint) (bool, error)
}

// CallService drives the masked-call session lifecycle: precondition checks and
// provider dial-out on initiation, then webhook-driven transitions until a
// terminal state, at which point credits are deducted and call logs written.
type CallService struct {
	cfg      *config.TelephonyConfig
	provider telephony.Provider
	sessions SessionStore
	credits  CreditStore
	users    AccountStore
	profiles ProfileStore
	matches  MatchStore
}

func NewCallService(
	cfg *config.TelephonyConfig,
	provider telephony.Provider,
	sessions SessionStore,
	credits CreditStore,
	users AccountStore,
	profiles ProfileStore,
	matches MatchStore,
) *CallService {
	return &CallService{
		cfg:      cfg,
		provider: provider,
		sessions: sessions,
		credits:  credits,
		users:    users,
		profiles: profiles,
		matches:  matches,
	}
}

// InitiateCall checks preconditions in order (credits, accounts, mutual match),
// requests call setup from the provider, and only then persists the session.
// A provider failure surfaces as ErrProviderError with no session row, so the
// caller never sees an ambiguous "call may have started" state.
func (s *CallService) InitiateCall(ctx context.Context, callerID, targetID uint) (*models.CallSession, error) {
	if _, err := s.credits.FindActiveBalance(callerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInsufficientCredits
		}
		return nil, err
	}

	caller, err := s.activeParticipant(callerID)
	if err != nil {
		return nil, err
	}
	target, err := s.activeParticipant(targetID)
	if err != nil {
		return nil, err
	}

	matched, err := s.matches.IsMatched(callerID, targetID)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrNotMatched
	}

	virtualCaller := generateVirtualNumber()
	virtualReceiver := generateVirtualNumber()

	resp, err := s.provider.Connect(ctx, telephony.CallRequest{
		From:               caller.Phone,
		To:                 target.Phone,
		CallerID:           s.cfg.CallerMaskNumber,
		TimeLimitSeconds:   s.cfg.TimeLimitSeconds,
		RingTimeoutSeconds: s.cfg.RingTimeoutSeconds,
		StatusCallbackURL:  s.cfg.WebhookBaseURL + "/api/v1/webhooks/call",
		Record:             true,
	})
	if err != nil {
		log.Printf("[CALL] provider connect failed caller=%d target=%d: %v", callerID, targetID, err)
		return nil, fmt.Errorf("%w: %v", ErrProviderError, err)
	}

	session := &models.CallSession{
		CallerID:              callerID,
		ReceiverID:            targetID,
		ProviderCallID:        resp.ProviderCallID,
		Status:                domain.CallStatusInitiated,
		VirtualNumberCaller:   virtualCaller,
		VirtualNumberReceiver: virtualReceiver,
		RealNumberCaller:      caller.Phone,
		RealNumberReceiver:    target.Phone,
		CostPerMinute:         s.cfg.CostPerMinute,
	}
	if err := s.sessions.CreateSession(session); err != nil {
		return nil, err
	}
	return session, nil
}

// activeParticipant resolves a user with an active account and approved profile.
func (s *CallService) activeParticipant(userID uint) (*models.User, error) {
	u, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !u.IsActive() {
		return nil, ErrNotFound
	}
	p, err := s.profiles.GetByUserID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.Status != domain.ProfileStatusApproved {
		return nil, ErrNotFound
	}
	return u, nil
}

// HandleProviderEvent applies one webhook-delivered status transition. Idempotent
// by provider call id: a session already in a terminal state acknowledges repeat
// events without re-deducting credits or re-creating log entries. Delivery is
// at-least-once, may arrive out of order, and may be concurrent: the terminal
// transition is a conditional update in the store, so of two racing deliveries
// exactly one wins and settles. A completed event is honored even when no
// in-progress event was ever recorded; duration comes from the payload, never
// from locally tracked elapsed time.
func (s *CallService) HandleProviderEvent(event telephony.StatusEvent) (*models.CallSession, error) {
	session, err := s.sessions.GetSessionByProviderCallID(event.ProviderCallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.IsTerminal() {
		log.Printf("[CALL webhook] session %d already %s, ignoring %q", session.ID, session.Status, event.Status)
		return session, nil
	}

	now := time.Now()
	switch normalizeStatus(event.Status) {
	case domain.CallStatusRinging:
		session.Status = domain.CallStatusRinging
		if err := s.sessions.UpdateSession(session.ID, map[string]interface{}{"status": session.Status}); err != nil {
			return nil, err
		}

	case domain.CallStatusInProgress:
		fields := map[string]interface{}{"status": domain.CallStatusInProgress}
		if session.StartedAt == nil {
			fields["started_at"] = &now
			session.StartedAt = &now
		}
		session.Status = domain.CallStatusInProgress
		if err := s.sessions.UpdateSession(session.ID, fields); err != nil {
			return nil, err
		}

	case domain.CallStatusCompleted:
		cost := callCost(event.DurationSeconds, session.CostPerMinute)
		session.Status = domain.CallStatusCompleted
		session.DurationSeconds = event.DurationSeconds
		session.Cost = cost
		session.EndedAt = &now
		fields := map[string]interface{}{
			"status":           session.Status,
			"duration_seconds": session.DurationSeconds,
			"cost":             session.Cost,
			"ended_at":         &now,
		}
		if event.RecordingURL != "" {
			fields["recording_url"] = event.RecordingURL
		}
		won, err := s.sessions.FinishSession(session.ID, fields)
		if err != nil {
			return nil, err
		}
		if !won {
			// A concurrent delivery finished the session first; it owns settlement.
			log.Printf("[CALL webhook] session %d finished by concurrent delivery, ignoring %q", session.ID, event.Status)
			return s.currentSession(session)
		}
		if event.DurationSeconds > 0 {
			s.settleCompletedCall(session)
		}

	case domain.CallStatusBusy, domain.CallStatusNoAnswer, domain.CallStatusFailed:
		session.Status = normalizeStatus(event.Status)
		session.EndedAt = &now
		won, err := s.sessions.FinishSession(session.ID, map[string]interface{}{
			"status":   session.Status,
			"ended_at": &now,
		})
		if err != nil {
			return nil, err
		}
		if !won {
			log.Printf("[CALL webhook] session %d finished by concurrent delivery, ignoring %q", session.ID, event.Status)
			return s.currentSession(session)
		}

	default:
		// Unrecognized provider status: store verbatim, no side effects.
		session.Status = event.Status
		if err := s.sessions.UpdateSession(session.ID, map[string]interface{}{"status": event.Status}); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// currentSession re-reads the stored session so a lost race reports the state the
// winning delivery wrote, not this delivery's stale copy.
func (s *CallService) currentSession(stale *models.CallSession) (*models.CallSession, error) {
	if latest, err := s.sessions.GetSessionByID(stale.ID); err == nil {
		return latest, nil
	}
	return stale, nil
}

// settleCompletedCall splits the cost evenly (rounded up) between caller and
// receiver, deducts from each oldest non-expired balance, and writes the paired
// call log entries. Guarded against re-delivery by the existing-log check.
func (s *CallService) settleCompletedCall(session *models.CallSession) {
	existing, err := s.sessions.CountLogsBySession(session.ID)
	if err != nil {
		log.Printf("[CALL webhook] log lookup failed session=%d: %v", session.ID, err)
		return
	}
	if existing > 0 {
		log.Printf("[CALL webhook] session %d already settled, skipping", session.ID)
		return
	}

	perParticipant := (session.Cost + 1) / 2
	s.deductFrom(session.CallerID, perParticipant, session.ID)
	s.deductFrom(session.ReceiverID, perParticipant, session.ID)

	logs := []models.CallLogEntry{
		{
			UserID:          session.CallerID,
			OtherUserID:     session.ReceiverID,
			SessionID:       session.ID,
			Direction:       domain.CallDirectionOutgoing,
			DurationSeconds: session.DurationSeconds,
			Cost:            session.Cost,
		},
		{
			UserID:          session.ReceiverID,
			OtherUserID:     session.CallerID,
			SessionID:       session.ID,
			Direction:       domain.CallDirectionIncoming,
			DurationSeconds: session.DurationSeconds,
			Cost:            session.Cost,
		},
	}
	for i := range logs {
		if err := s.sessions.CreateLogEntry(&logs[i]); err != nil {
			log.Printf("[CALL webhook] call log insert failed session=%d user=%d: %v", session.ID, logs[i].UserID, err)
		}
	}
}

// deductFrom debits amount from the user's oldest active balance. The conditional
// UPDATE in the store floors at zero; a false result means another deduction raced
// the balance to zero first, so retry against the next-oldest balance.
func (s *CallService) deductFrom(userID uint, amount int64, sessionID uint) {
	if amount <= 0 {
		return
	}
	for attempt := 0; attempt < 3; attempt++ {
		balance, err := s.credits.FindActiveBalance(userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[CALL webhook] no active balance for user=%d session=%d, cannot deduct %d", userID, sessionID, amount)
				return
			}
			log.Printf("[CALL webhook] balance lookup failed user=%d session=%d: %v", userID, sessionID, err)
			return
		}
		ok, err := s.credits.Deduct(balance.ID, amount)
		if err != nil {
			log.Printf("[CALL webhook] deduction failed user=%d balance=%d session=%d: %v", userID, balance.ID, sessionID, err)
			return
		}
		if ok {
			return
		}
	}
	log.Printf("[CALL webhook] deduction retries exhausted user=%d session=%d amount=%d", userID, sessionID, amount)
}

// SessionView is the client-visible shape of a session. Real numbers are never
// present here.
type SessionView struct {
	ID                    uint       `json:"id"`
	CallerID              uint       `json:"caller_id"`
	ReceiverID            uint       `json:"receiver_id"`
	Status                string     `json:"status"`
	VirtualNumberCaller   string     `json:"virtual_number_caller"`
	VirtualNumberReceiver string     `json:"virtual_number_receiver"`
	DurationSeconds       int        `json:"duration_seconds"`
	Cost                  int64      `json:"cost"`
	StartedAt             *time.Time `json:"started_at,omitempty"`
	EndedAt               *time.Time `json:"ended_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}

// GetSessionView returns the sanitized session, participants only.
func (s *CallService) GetSessionView(sessionID, requestingUserID uint) (*SessionView, error) {
	session, err := s.sessions.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !session.IsParticipant(requestingUserID) {
		return nil, ErrForbidden
	}
	return &SessionView{
		ID:                    session.ID,
		CallerID:              session.CallerID,
		ReceiverID:            session.ReceiverID,
		Status:                session.Status,
		VirtualNumberCaller:   session.VirtualNumberCaller,
		VirtualNumberReceiver: session.VirtualNumberReceiver,
		DurationSeconds:       session.DurationSeconds,
		Cost:                  session.Cost,
		StartedAt:             session.StartedAt,
		EndedAt:               session.EndedAt,
		CreatedAt:             session.CreatedAt,
	}, nil
}

// callCost charges per started minute.
func callCost(durationSeconds int, costPerMinute int64) int64 {
	if durationSeconds <= 0 {
		return 0
	}
	minutes := int64((durationSeconds + 59) / 60)
	return minutes * costPerMinute
}

func normalizeStatus(providerStatus string) string {
	switch providerStatus {
	case "ringing":
		return domain.CallStatusRinging
	case "in-progress", "in_progress":
		return domain.CallStatusInProgress
	case "completed":
		return domain.CallStatusCompleted
	case "busy":
		return domain.CallStatusBusy
	case "no-answer", "no_answer":
		return domain.CallStatusNoAnswer
	case "failed":
		return domain.CallStatusFailed
	}
	return providerStatus
}

// generateVirtualNumber produces a display-only masked number. Unique-looking but
// cosmetic: nothing is allocated at the provider.
func generateVirtualNumber() string {
	return fmt.Sprintf("0140%07d", uuid.New().ID()%10000000)
}
