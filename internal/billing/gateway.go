// Package billing integrates the external payment provider used for
// business pickups.  The provider sits behind the Gateway interface so
// handlers and tests never talk to the real service directly.
package billing

import (
	"context"
	"errors"
)

// Order is the provider-side order created for a bill.  Amount is in the
// currency's minor unit (paise for INR), matching the provider's wire
// format.
type Order struct {
	ID       string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// ErrGatewayUnavailable wraps provider failures and timeouts.  The pickup
// status is left untouched when it is returned; the caller must retry the
// payment explicitly.
var ErrGatewayUnavailable = errors.New("payment gateway unavailable")

// Gateway is the boundary contract with the payment provider.
// VerifySignature is the single point at which a payment record may become
// authoritative: only a true result flips a bill to COMPLETED.
type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}
