package model

import (
	"time"

	"github.com/greenloop/waste-pickup/internal/pickup"
	"github.com/greenloop/waste-pickup/internal/waste"
)

// PickupRequest records a household or business user's request to have
// waste collected.  The collector reference stays null until a collector
// accepts the request; created_at is immutable once set.
//
// Fields:
//  ID            – primary key identifier.
//  UserID        – requester who created the request.
//  CollectorID   – collector assigned to it (nullable until ASSIGNED).
//  WasteType     – category of waste to collect.
//  ScheduledDate – requested pickup date (date part only).
//  ScheduledTime – requested pickup time of day.
//  Status        – lifecycle status, see internal/pickup.
//  Notes         – free-text notes, at most 500 characters.
//  Frequency     – optional recurrence hint for business pickups.
//  Latitude      – optional pickup latitude.
//  Longitude     – optional pickup longitude.
//  CreatedAt     – creation timestamp, never updated.
type PickupRequest struct {
	ID            uint64         // pickup_requests.id
	UserID        uint64         // pickup_requests.user_id
	CollectorID   *uint64        // pickup_requests.collector_id (nullable)
	WasteType     waste.Category // pickup_requests.waste_type
	ScheduledDate time.Time      // pickup_requests.scheduled_date
	ScheduledTime string         // pickup_requests.scheduled_time ("15:04:05")
	Status        pickup.Status  // pickup_requests.pickup_status
	Notes         string         // pickup_requests.notes
	Frequency     *string        // pickup_requests.pickup_frequency (nullable)
	Latitude      *float64       // pickup_requests.latitude (nullable)
	Longitude     *float64       // pickup_requests.longitude (nullable)
	CreatedAt     time.Time      // pickup_requests.created_at
}

// ScheduledAt combines the date and time-of-day columns into one moment.
// The time column is stored as "HH:MM:SS"; a malformed value collapses to
// midnight of the scheduled date.
func (p PickupRequest) ScheduledAt() time.Time {
	t, err := time.Parse("15:04:05", p.ScheduledTime)
	if err != nil {
		return p.ScheduledDate
	}
	return time.Date(
		p.ScheduledDate.Year(), p.ScheduledDate.Month(), p.ScheduledDate.Day(),
		t.Hour(), t.Minute(), t.Second(), 0, time.UTC,
	)
}
