package model

import (
	"time"

	"github.com/greenloop/waste-pickup/internal/waste"
)

// Weight bounds enforced on every capture record, in kilograms.
const (
	MinWeightKg = 0.1
	MaxWeightKg = 1000.0
)

// WasteLog is the capture record written when waste is physically
// collected: exactly one per pickup request, enforced by a unique index
// on waste_logs.pickup_id.  The waste type is copied from the request at
// capture time so later edits to the request cannot change history.
type WasteLog struct {
	ID          uint64         // waste_logs.id
	PickupID    uint64         // waste_logs.pickup_id (unique)
	WasteType   waste.Category // waste_logs.waste_type
	WeightKg    float64        // waste_logs.weight_kg (0.1–1000.0)
	PhotoURL    *string        // waste_logs.photo_url (nullable)
	Notes       string         // waste_logs.notes
	CollectedAt time.Time      // waste_logs.collected_at
}
