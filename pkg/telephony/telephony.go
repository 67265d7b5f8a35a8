package telephony

import "context"

// CallRequest asks the provider to bridge two real numbers behind the masking
// exophone. Real numbers never leave the server except through this request.
type CallRequest struct {
	From               string // caller's real number
	To                 string // receiver's real number
	CallerID           string // masking exophone presented to both parties
	TimeLimitSeconds   int
	RingTimeoutSeconds int
	StatusCallbackURL  string
	Record             bool
}

type CallResponse struct {
	ProviderCallID string
	InitialStatus  string
}

// StatusEvent is the provider's webhook payload, normalized.
type StatusEvent struct {
	ProviderCallID  string `json:"provider_call_id"`
	Status          string `json:"status"`
	DurationSeconds int    `json:"duration_seconds"`
	RecordingURL    string `json:"recording_url"`
}

// Provider performs call routing and number masking. Business logic never talks to
// a provider API outside this package.
type Provider interface {
	Connect(ctx context.Context, req CallRequest) (*CallResponse, error)
}
