package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RazorpayProvider creates payment links via the Razorpay Payment Links API
// (basic auth with key id/secret).
type RazorpayProvider struct {
	BaseURL   string
	KeyID     string
	KeySecret string
	client    *http.Client
}

func NewRazorpayProvider(keyID, keySecret string) *RazorpayProvider {
	return &RazorpayProvider{
		BaseURL:   "https://api.razorpay.com",
		KeyID:     keyID,
		KeySecret: keySecret,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

type razorpayLinkReq struct {
	Amount      int64  `json:"amount"` // paise
	Currency    string `json:"currency"`
	ReferenceID string `json:"reference_id"`
	Description string `json:"description"`
	Customer    struct {
		Contact string `json:"contact,omitempty"`
		Email   string `json:"email,omitempty"`
	} `json:"customer"`
	CallbackURL    string `json:"callback_url,omitempty"`
	CallbackMethod string `json:"callback_method,omitempty"`
	ExpireBy       int64  `json:"expire_by,omitempty"`
}

type razorpayLinkResp struct {
	ID       string `json:"id"`
	ShortURL string `json:"short_url"`
	Status   string `json:"status"`
	ExpireBy int64  `json:"expire_by"`
}

func (p *RazorpayProvider) InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error) {
	payload := razorpayLinkReq{
		Amount:      req.AmountCents, // INR paise == cents
		Currency:    req.Currency,
		ReferenceID: req.OrderID,
		Description: req.Description,
	}
	payload.Customer.Contact = req.CustomerPhone
	payload.Customer.Email = req.CustomerEmail
	if req.CallbackURL != "" {
		payload.CallbackURL = req.CallbackURL
		payload.CallbackMethod = "get"
	}
	expiresAt := time.Now().Add(req.ExpiresIn)
	if req.ExpiresIn > 0 {
		payload.ExpireBy = expiresAt.Unix()
	}

	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/v1/payment_links", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(p.KeyID, p.KeySecret)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay create link: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("razorpay create link: status %d", resp.StatusCode)
	}
	var out razorpayLinkResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("razorpay create link: decode: %w", err)
	}
	return &PaymentResponse{
		Reference:   out.ID,
		Status:      out.Status,
		CheckoutURL: out.ShortURL,
		ExpiresAt:   expiresAt,
	}, nil
}
