package telephony

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ExotelProvider bridges calls via Exotel's Connect API (api key + token basic auth,
// form-encoded request).
type ExotelProvider struct {
	BaseURL    string
	AccountSID string
	APIKey     string
	APIToken   string
	client     *http.Client
}

func NewExotelProvider(baseURL, accountSID, apiKey, apiToken string) *ExotelProvider {
	if baseURL == "" {
		baseURL = "https://api.exotel.com"
	}
	return &ExotelProvider{
		BaseURL:    baseURL,
		AccountSID: accountSID,
		APIKey:     apiKey,
		APIToken:   apiToken,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

type exotelCallResp struct {
	Call struct {
		Sid    string `json:"Sid"`
		Status string `json:"Status"`
	} `json:"Call"`
}

func (p *ExotelProvider) Connect(ctx context.Context, req CallRequest) (*CallResponse, error) {
	form := url.Values{}
	form.Set("From", req.From)
	form.Set("To", req.To)
	form.Set("CallerId", req.CallerID)
	form.Set("TimeLimit", strconv.Itoa(req.TimeLimitSeconds))
	form.Set("TimeOut", strconv.Itoa(req.RingTimeoutSeconds))
	form.Set("StatusCallback", req.StatusCallbackURL)
	form.Set("StatusCallbackContentType", "application/json")
	if req.Record {
		form.Set("Record", "true")
	}

	endpoint := fmt.Sprintf("%s/v1/Accounts/%s/Calls/connect.json", p.BaseURL, p.AccountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(p.APIKey, p.APIToken)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("exotel connect: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("exotel connect: status %d", resp.StatusCode)
	}
	var out exotelCallResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("exotel connect: decode: %w", err)
	}
	if out.Call.Sid == "" {
		return nil, fmt.Errorf("exotel connect: empty call sid")
	}
	return &CallResponse{ProviderCallID: out.Call.Sid, InitialStatus: out.Call.Status}, nil
}
