// Package queue defines message payloads exchanged over the message broker.
package queue

// PickupCompletedQueue is the broker queue completion events land on.
const PickupCompletedQueue = "pickup.completed"

// PickupCompletedEvent is published after a pickup request reaches
// COMPLETED and its reward has been credited.  It carries enough for
// downstream consumers to log or notify without querying the database.
type PickupCompletedEvent struct {
	PickupID      uint64  `json:"pickup_id"`
	UserID        uint64  `json:"user_id"`
	CollectorID   uint64  `json:"collector_id"`
	WasteType     string  `json:"waste_type"`
	WeightKg      float64 `json:"weight_kg"`
	PointsEarned  int     `json:"points_earned"`
	RequesterRole string  `json:"requester_role"`
	CompletedAt   string  `json:"completed_at"`
}
