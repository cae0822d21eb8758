package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const paystackBaseURL = "https://api.paystack.co"

// PaymentResult is the gateway's verdict on a transaction reference. Amount
// is in major currency units.
type PaymentResult struct {
	Status string
	Amount float64
}

// PaymentVerifier checks a payment reference with the gateway before an
// order is accepted.
type PaymentVerifier interface {
	Verify(ctx context.Context, reference string) (*PaymentResult, error)
}

// PaystackClient verifies transaction references against the Paystack API.
type PaystackClient struct {
	secret     string
	httpClient *http.Client
	baseURL    string
}

func NewPaystackClient(secret string, timeout time.Duration) *PaystackClient {
	return &PaystackClient{
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    paystackBaseURL,
	}
}

func (p *PaystackClient) Verify(ctx context.Context, reference string) (*PaymentResult, error) {
	url := fmt.Sprintf("%s/transaction/verify/%s", p.baseURL, reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build verification request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.secret)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment verification request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Status string `json:"status"`
			// Paystack reports amounts in the currency's minor unit.
			Amount int64 `json:"amount"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	return &PaymentResult{
		Status: body.Data.Status,
		Amount: float64(body.Data.Amount) / 100,
	}, nil
}
