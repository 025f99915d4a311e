package billing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com"

// RazorpayGateway talks to the Razorpay orders API over plain HTTP with
// basic auth.  Order amounts are sent in paise.  Signature verification is
// local: HMAC-SHA256 of "orderID|paymentID" keyed with the API secret,
// which is how the provider signs checkout callbacks.
type RazorpayGateway struct {
	KeyID     string
	KeySecret string
	BaseURL   string
	Client    *http.Client
}

// NewRazorpayGateway builds a gateway with a bounded-timeout HTTP client.
// A zero timeout defaults to 10 seconds; calls that exceed it fail with
// ErrGatewayUnavailable rather than blocking the request.
func NewRazorpayGateway(keyID, keySecret string, timeout time.Duration) *RazorpayGateway {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayGateway{
		KeyID:     keyID,
		KeySecret: keySecret,
		BaseURL:   defaultBaseURL,
		Client:    &http.Client{Timeout: timeout},
	}
}

type orderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type orderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// CreateOrder registers an order for the given amount (currency units)
// with the provider and returns its identifier.  Any transport error,
// timeout or non-2xx reply is wrapped in ErrGatewayUnavailable.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error) {
	// Round, don't truncate: 19.99 sits fractionally below 1999 in
	// float64 and would otherwise bill as 1998 paise.
	paise := int64(math.Round(amount * 100))
	body, err := json.Marshal(orderRequest{Amount: paise, Currency: currency, Receipt: receipt})
	if err != nil {
		return Order{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return Order{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(g.KeyID, g.KeySecret)

	resp, err := g.Client.Do(req)
	if err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Order{}, fmt.Errorf("%w: unexpected status %d", ErrGatewayUnavailable, resp.StatusCode)
	}
	var or orderResponse
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return Order{}, fmt.Errorf("%w: decode response: %v", ErrGatewayUnavailable, err)
	}
	if or.ID == "" {
		return Order{}, fmt.Errorf("%w: empty order id", ErrGatewayUnavailable)
	}
	return Order{ID: or.ID, Amount: or.Amount, Currency: or.Currency}, nil
}

// VerifySignature checks the checkout callback signature in constant time.
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
