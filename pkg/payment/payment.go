package payment

import (
	"context"
	"time"
)

type PaymentRequest struct {
	UserID        uint
	AmountCents   int64
	Currency      string
	OrderID       string // unique reference echoed back in the webhook
	Description   string
	CustomerPhone string
	CustomerEmail string
	CallbackURL   string
	ExpiresIn     time.Duration
}

type PaymentResponse struct {
	Reference   string
	Status      string
	CheckoutURL string
	ExpiresAt   time.Time
}

// Provider creates checkout links. Completion is reported exclusively by the
// provider's webhook, so there is no polling or verification method here.
type Provider interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}
