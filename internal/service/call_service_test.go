package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rishta/config"
	"rishta/internal/domain"
	"rishta/internal/models"
	"rishta/pkg/telephony"

	"gorm.io/gorm"
)

// In-memory fakes for the storage collaborators. Mutex-guarded like the real
// store is row-atomic, so lifecycle tests can exercise concurrent deliveries.

type fakeSessionStore struct {
	mu       sync.Mutex
	nextID   uint
	sessions map[uint]*models.CallSession
	logs     []models.CallLogEntry
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{nextID: 1, sessions: make(map[uint]*models.CallSession)}
}

func (f *fakeSessionStore) CreateSession(s *models.CallSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = f.nextID
	f.nextID++
	s.CreatedAt = time.Now()
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionStore) GetSessionByID(id uint) (*models.CallSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) GetSessionByProviderCallID(providerCallID string) (*models.CallSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.ProviderCallID == providerCallID {
			copied := *s
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func applySessionFields(s *models.CallSession, fields map[string]interface{}) {
	for k, v := range fields {
		switch k {
		case "status":
			s.Status = v.(string)
		case "duration_seconds":
			s.DurationSeconds = v.(int)
		case "cost":
			s.Cost = v.(int64)
		case "started_at":
			s.StartedAt = v.(*time.Time)
		case "ended_at":
			s.EndedAt = v.(*time.Time)
		case "recording_url":
			s.RecordingURL = v.(string)
		}
	}
}

func (f *fakeSessionStore) UpdateSession(sessionID uint, fields map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if domain.IsTerminalCallStatus(s.Status) {
		return nil
	}
	applySessionFields(s, fields)
	return nil
}

// FinishSession mirrors the conditional terminal UPDATE: the transition applies
// only while the session is non-terminal, and the caller learns whether it won.
func (f *fakeSessionStore) FinishSession(sessionID uint, fields map[string]interface{}) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[sessionID]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if domain.IsTerminalCallStatus(s.Status) {
		return false, nil
	}
	applySessionFields(s, fields)
	return true, nil
}

func (f *fakeSessionStore) CreateLogEntry(e *models.CallLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uint(len(f.logs) + 1)
	f.logs = append(f.logs, *e)
	return nil
}

func (f *fakeSessionStore) CountLogsBySession(sessionID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, e := range f.logs {
		if e.SessionID == sessionID {
			count++
		}
	}
	return count, nil
}

type fakeCreditStore struct {
	mu       sync.Mutex
	balances map[uint]*models.CallCreditBalance // keyed by balance id
}

func newFakeCreditStore() *fakeCreditStore {
	return &fakeCreditStore{balances: make(map[uint]*models.CallCreditBalance)}
}

func (f *fakeCreditStore) add(id, userID uint, credits int64, expiresAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[id] = &models.CallCreditBalance{
		ID: id, UserID: userID, CreditsRemaining: credits, ExpiresAt: expiresAt,
	}
}

func (f *fakeCreditStore) remaining(id uint) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[id].CreditsRemaining
}

func (f *fakeCreditStore) FindActiveBalance(userID uint) (*models.CallCreditBalance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var oldest *models.CallCreditBalance
	for _, b := range f.balances {
		if b.UserID != userID || b.CreditsRemaining <= 0 || !b.ExpiresAt.After(time.Now()) {
			continue
		}
		if oldest == nil || b.ID < oldest.ID {
			oldest = b
		}
	}
	if oldest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *oldest
	return &copied, nil
}

// Deduct mirrors the conditional UPDATE: only debits a row with credits left,
// flooring at zero.
func (f *fakeCreditStore) Deduct(balanceID uint, amount int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.balances[balanceID]
	if !ok || b.CreditsRemaining <= 0 {
		return false, nil
	}
	b.CreditsRemaining -= amount
	if b.CreditsRemaining < 0 {
		b.CreditsRemaining = 0
	}
	return true, nil
}

type fakeAccountStore map[uint]*models.User

func (f fakeAccountStore) GetByID(id uint) (*models.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

type fakeProfileStore map[uint]*models.Profile

func (f fakeProfileStore) GetByUserID(userID uint) (*models.Profile, error) {
	p, ok := f[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

type fakeMatchStore struct{ matched bool }

func (f *fakeMatchStore) IsMatched(a, b uint) (bool, error) { return f.matched, nil }

type fakeProvider struct {
	fail    bool
	calls   int
	lastReq telephony.CallRequest
}

func (f *fakeProvider) Connect(ctx context.Context, req telephony.CallRequest) (*telephony.CallResponse, error) {
	f.calls++
	f.lastReq = req
	if f.fail {
		return nil, errors.New("provider timeout")
	}
	return &telephony.CallResponse{ProviderCallID: "CA123", InitialStatus: "queued"}, nil
}

func telephonyCfg() *config.TelephonyConfig {
	return &config.TelephonyConfig{
		CallerMaskNumber:   "08047101234",
		CostPerMinute:      1,
		TimeLimitSeconds:   3600,
		RingTimeoutSeconds: 30,
		WebhookBaseURL:     "https://rishta.example.com",
	}
}

type callFixture struct {
	svc      *CallService
	sessions *fakeSessionStore
	credits  *fakeCreditStore
	provider *fakeProvider
	matches  *fakeMatchStore
}

func newCallFixture() *callFixture {
	sessions := newFakeSessionStore()
	credits := newFakeCreditStore()
	provider := &fakeProvider{}
	matches := &fakeMatchStore{matched: true}
	users := fakeAccountStore{
		1: {ID: 1, Phone: "9811111111", AccountStatus: domain.AccountStatusActive},
		2: {ID: 2, Phone: "9822222222", AccountStatus: domain.AccountStatusActive},
	}
	profiles := fakeProfileStore{
		1: {ID: 10, UserID: 1, Status: domain.ProfileStatusApproved},
		2: {ID: 20, UserID: 2, Status: domain.ProfileStatusApproved},
	}
	svc := NewCallService(telephonyCfg(), provider, sessions, credits, users, profiles, matches)
	return &callFixture{svc: svc, sessions: sessions, credits: credits, provider: provider, matches: matches}
}

func (fx *callFixture) grantCredits(userID uint, credits int64) {
	fx.credits.add(uint(len(fx.credits.balances)+1), userID, credits, time.Now().Add(24*time.Hour))
}

func TestInitiateCall_InsufficientCredits(t *testing.T) {
	fx := newCallFixture()
	// no balances at all
	_, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits, got %v", err)
	}
	if len(fx.sessions.sessions) != 0 {
		t.Fatalf("no session must be created, got %d", len(fx.sessions.sessions))
	}
	if fx.provider.calls != 0 {
		t.Fatalf("provider must not be called")
	}
}

func TestInitiateCall_ExpiredCreditsRejected(t *testing.T) {
	fx := newCallFixture()
	fx.credits.add(1, 1, 10, time.Now().Add(-time.Hour))
	_, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("expected ErrInsufficientCredits for expired balance, got %v", err)
	}
}

func TestInitiateCall_NotMatched(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.matches.matched = false
	_, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if !errors.Is(err, ErrNotMatched) {
		t.Fatalf("expected ErrNotMatched, got %v", err)
	}
	if len(fx.sessions.sessions) != 0 {
		t.Fatalf("no session must be created")
	}
}

func TestInitiateCall_UnknownTarget(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	_, err := fx.svc.InitiateCall(context.Background(), 1, 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInitiateCall_ProviderFailureCreatesNoSession(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.provider.fail = true
	_, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if !errors.Is(err, ErrProviderError) {
		t.Fatalf("expected ErrProviderError, got %v", err)
	}
	if len(fx.sessions.sessions) != 0 {
		t.Fatalf("provider failure must not leave a session row")
	}
}

func TestInitiateCall_Success(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	session, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.Status != domain.CallStatusInitiated {
		t.Fatalf("expected initiated, got %s", session.Status)
	}
	if session.ProviderCallID != "CA123" {
		t.Fatalf("provider call id not recorded: %q", session.ProviderCallID)
	}
	if session.VirtualNumberCaller == "" || session.VirtualNumberReceiver == "" {
		t.Fatalf("virtual numbers must be set")
	}
	req := fx.provider.lastReq
	if req.From != "9811111111" || req.To != "9822222222" {
		t.Fatalf("real numbers must go to the provider: %+v", req)
	}
	if req.TimeLimitSeconds != 3600 || req.RingTimeoutSeconds != 30 || !req.Record {
		t.Fatalf("call setup parameters wrong: %+v", req)
	}
}

func completedEvent(duration int) telephony.StatusEvent {
	return telephony.StatusEvent{ProviderCallID: "CA123", Status: "completed", DurationSeconds: duration}
}

func startSession(t *testing.T, fx *callFixture) *models.CallSession {
	t.Helper()
	session, err := fx.svc.InitiateCall(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	return session
}

func TestHandleProviderEvent_CompletedSettles(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	// 125s at 1 credit/min -> cost ceil(125/60)=3, each side pays ceil(3/2)=2
	session, err := fx.svc.HandleProviderEvent(completedEvent(125))
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if session.Status != domain.CallStatusCompleted || session.Cost != 3 {
		t.Fatalf("expected completed/cost=3, got %s/%d", session.Status, session.Cost)
	}
	if got := fx.credits.balances[1].CreditsRemaining; got != 8 {
		t.Fatalf("caller balance: expected 8, got %d", got)
	}
	if got := fx.credits.balances[2].CreditsRemaining; got != 8 {
		t.Fatalf("receiver balance: expected 8, got %d", got)
	}
	if len(fx.sessions.logs) != 2 {
		t.Fatalf("expected 2 call log entries, got %d", len(fx.sessions.logs))
	}
	if fx.sessions.logs[0].Direction != domain.CallDirectionOutgoing || fx.sessions.logs[0].UserID != 1 {
		t.Fatalf("first log should be caller outgoing: %+v", fx.sessions.logs[0])
	}
	if fx.sessions.logs[1].Direction != domain.CallDirectionIncoming || fx.sessions.logs[1].UserID != 2 {
		t.Fatalf("second log should be receiver incoming: %+v", fx.sessions.logs[1])
	}
}

func TestHandleProviderEvent_CompletedIdempotent(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	if _, err := fx.svc.HandleProviderEvent(completedEvent(125)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := fx.svc.HandleProviderEvent(completedEvent(125)); err != nil {
		t.Fatalf("second delivery must be an acknowledged no-op: %v", err)
	}
	if got := fx.credits.balances[1].CreditsRemaining; got != 8 {
		t.Fatalf("re-delivery must not double-charge caller: %d", got)
	}
	if got := fx.credits.balances[2].CreditsRemaining; got != 8 {
		t.Fatalf("re-delivery must not double-charge receiver: %d", got)
	}
	if len(fx.sessions.logs) != 2 {
		t.Fatalf("re-delivery must not duplicate log entries: %d", len(fx.sessions.logs))
	}
}

func TestHandleProviderEvent_ConcurrentCompletedSettlesOnce(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	// Simultaneous duplicate deliveries: both read the session non-terminal,
	// but the conditional terminal transition lets only one settle.
	const deliveries = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, err := fx.svc.HandleProviderEvent(completedEvent(125)); err != nil {
				t.Errorf("concurrent delivery: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	if got := fx.credits.remaining(1); got != 8 {
		t.Fatalf("caller charged more than once: remaining=%d want 8", got)
	}
	if got := fx.credits.remaining(2); got != 8 {
		t.Fatalf("receiver charged more than once: remaining=%d want 8", got)
	}
	if n, _ := fx.sessions.CountLogsBySession(1); n != 2 {
		t.Fatalf("expected exactly one log pair, got %d entries", n)
	}
}

func TestHandleProviderEvent_CompletedBeforeInProgress(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	// Out-of-order delivery: completed arrives with no in-progress ever recorded.
	session, err := fx.svc.HandleProviderEvent(completedEvent(60))
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if session.Status != domain.CallStatusCompleted || session.Cost != 1 {
		t.Fatalf("expected completed/cost=1, got %s/%d", session.Status, session.Cost)
	}
}

func TestHandleProviderEvent_ZeroDurationNoCharge(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	if _, err := fx.svc.HandleProviderEvent(completedEvent(0)); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if fx.credits.balances[1].CreditsRemaining != 10 || fx.credits.balances[2].CreditsRemaining != 10 {
		t.Fatalf("zero-duration call must not charge")
	}
	if len(fx.sessions.logs) != 0 {
		t.Fatalf("zero-duration call must not create log entries")
	}
}

func TestHandleProviderEvent_BusyNoSideEffects(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	fx.grantCredits(2, 10)
	startSession(t, fx)

	session, err := fx.svc.HandleProviderEvent(telephony.StatusEvent{ProviderCallID: "CA123", Status: "busy"})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if session.Status != domain.CallStatusBusy {
		t.Fatalf("expected busy, got %s", session.Status)
	}
	if fx.credits.balances[1].CreditsRemaining != 10 {
		t.Fatalf("busy must not charge")
	}
	if len(fx.sessions.logs) != 0 {
		t.Fatalf("busy must not create log entries")
	}
}

func TestHandleProviderEvent_InProgressSetsStartOnce(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	startSession(t, fx)

	first, err := fx.svc.HandleProviderEvent(telephony.StatusEvent{ProviderCallID: "CA123", Status: "in-progress"})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if first.StartedAt == nil {
		t.Fatalf("started_at must be set on first in-progress")
	}
	started := *first.StartedAt

	second, err := fx.svc.HandleProviderEvent(telephony.StatusEvent{ProviderCallID: "CA123", Status: "in-progress"})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if second.StartedAt == nil || !second.StartedAt.Equal(started) {
		t.Fatalf("started_at must not move on repeat in-progress")
	}
}

func TestHandleProviderEvent_UnknownStatusStoredVerbatim(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	startSession(t, fx)

	session, err := fx.svc.HandleProviderEvent(telephony.StatusEvent{ProviderCallID: "CA123", Status: "queued"})
	if err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if session.Status != "queued" {
		t.Fatalf("unknown status must be stored verbatim, got %s", session.Status)
	}
	if len(fx.sessions.logs) != 0 {
		t.Fatalf("unknown status must have no side effects")
	}
}

func TestHandleProviderEvent_UnknownProviderCallID(t *testing.T) {
	fx := newCallFixture()
	_, err := fx.svc.HandleProviderEvent(telephony.StatusEvent{ProviderCallID: "nope", Status: "completed"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHandleProviderEvent_NeverDrivesBalanceNegative(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 1) // less than the 2 credits owed
	fx.grantCredits(2, 10)
	startSession(t, fx)

	if _, err := fx.svc.HandleProviderEvent(completedEvent(125)); err != nil {
		t.Fatalf("webhook: %v", err)
	}
	if got := fx.credits.balances[1].CreditsRemaining; got != 0 {
		t.Fatalf("deduction must floor at zero, got %d", got)
	}
}

func TestGetSessionView_ParticipantOnly(t *testing.T) {
	fx := newCallFixture()
	fx.grantCredits(1, 10)
	session := startSession(t, fx)

	view, err := fx.svc.GetSessionView(session.ID, 2)
	if err != nil {
		t.Fatalf("receiver must see the session: %v", err)
	}
	if view.VirtualNumberCaller == "" {
		t.Fatalf("virtual numbers should be visible")
	}

	if _, err := fx.svc.GetSessionView(session.ID, 3); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-participant, got %v", err)
	}
	if _, err := fx.svc.GetSessionView(999, 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCallCost(t *testing.T) {
	cases := []struct {
		duration int
		perMin   int64
		want     int64
	}{
		{0, 1, 0},
		{1, 1, 1},
		{59, 1, 1},
		{60, 1, 1},
		{61, 1, 2},
		{125, 1, 3},
		{125, 2, 6},
		{3600, 1, 60},
	}
	for _, tc := range cases {
		if got := callCost(tc.duration, tc.perMin); got != tc.want {
			t.Errorf("callCost(%d, %d) = %d, want %d", tc.duration, tc.perMin, got, tc.want)
		}
	}
}
