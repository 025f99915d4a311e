package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduledAt(t *testing.T) {
	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)

	p := PickupRequest{ScheduledDate: date, ScheduledTime: "14:30:00"}
	assert.Equal(t, time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC), p.ScheduledAt())

	// A malformed time column collapses to midnight instead of failing.
	p = PickupRequest{ScheduledDate: date, ScheduledTime: "bogus"}
	assert.Equal(t, date, p.ScheduledAt())
}
