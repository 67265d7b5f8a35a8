package domain

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"
)

const (
	ProfileStatusPending  = "PENDING"
	ProfileStatusApproved = "APPROVED"
	ProfileStatusRejected = "REJECTED"
)

const (
	AccountStatusActive    = "ACTIVE"
	AccountStatusSuspended = "SUSPENDED"
)

const (
	InterestStatusPending  = "PENDING"
	InterestStatusAccepted = "ACCEPTED"
	InterestStatusDeclined = "DECLINED"
)

// Call session statuses. The first three are set optimistically by the initiating
// request; everything else arrives via provider webhooks.
const (
	CallStatusInitiated  = "initiated"
	CallStatusRinging    = "ringing"
	CallStatusInProgress = "in_progress"
	CallStatusCompleted  = "completed"
	CallStatusBusy       = "busy"
	CallStatusNoAnswer   = "no-answer"
	CallStatusFailed     = "failed"
)

// TerminalCallStatuses are the states after which no further session mutation is
// permitted. Storage-level guards compare against this list.
var TerminalCallStatuses = []string{CallStatusCompleted, CallStatusBusy, CallStatusNoAnswer, CallStatusFailed}

// IsTerminalCallStatus reports whether no further session mutation is permitted.
func IsTerminalCallStatus(s string) bool {
	for _, t := range TerminalCallStatuses {
		if s == t {
			return true
		}
	}
	return false
}

const (
	CallDirectionOutgoing = "outgoing"
	CallDirectionIncoming = "incoming"
)

const (
	PaymentStatusPending   = "PENDING"
	PaymentStatusCompleted = "COMPLETED"
	PaymentStatusFailed    = "FAILED"
)

// Education levels on a fixed ordinal scale, used by the compatibility engine.
var EducationLevels = []string{"High School", "Bachelor's", "Master's", "PhD"}

// EducationRank returns the ordinal index of an education level, or -1 when the
// value is outside the fixed scale (e.g. "Diploma").
func EducationRank(level string) int {
	for i, l := range EducationLevels {
		if l == level {
			return i
		}
	}
	return -1
}
