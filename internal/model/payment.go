package model

import "time"

// Payment statuses.  A payment is PENDING from bill generation until the
// gateway confirms settlement, at which point it becomes COMPLETED and its
// amount is immutable.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
)

// Payment is the billing record for a business pickup: one per request,
// created by the assigned collector when generating a bill.  The gateway
// identifiers stay null until the external round trip finishes.
type Payment struct {
	ID               uint64    // payments.id
	UserID           uint64    // payments.user_id (the billed business)
	PickupID         uint64    // payments.pickup_id (unique)
	Amount           float64   // payments.amount, in currency units
	Status           string    // payments.status
	GatewayOrderID   *string   // payments.gateway_order_id (nullable)
	GatewayPaymentID *string   // payments.gateway_payment_id (nullable)
	GatewaySignature *string   // payments.gateway_signature (nullable)
	CreatedAt        time.Time // payments.created_at
	UpdatedAt        time.Time // payments.updated_at
}
