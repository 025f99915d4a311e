package pickup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHouseholdTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		event   Event
		want    Status
		wantErr bool
	}{
		{"accept pending", StatusPending, EventAccept, StatusAssigned, false},
		{"reject pending", StatusPending, EventReject, StatusCancelled, false},
		{"complete assigned", StatusAssigned, EventComplete, StatusCompleted, false},
		{"reject assigned", StatusAssigned, EventReject, StatusCancelled, false},
		{"no billing for households", StatusAssigned, EventGenerateBill, "", true},
		{"no settle for households", StatusPaymentPending, EventSettle, "", true},
		{"complete pending", StatusPending, EventComplete, "", true},
		{"accept assigned", StatusAssigned, EventAccept, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(RoleHousehold, tt.current, tt.event)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBusinessTransitions(t *testing.T) {
	tests := []struct {
		name    string
		current Status
		event   Event
		want    Status
		wantErr bool
	}{
		{"accept pending", StatusPending, EventAccept, StatusAssigned, false},
		{"bill assigned", StatusAssigned, EventGenerateBill, StatusPaymentPending, false},
		{"re-bill pending payment", StatusPaymentPending, EventGenerateBill, StatusPaymentPending, false},
		{"settle pending payment", StatusPaymentPending, EventSettle, StatusCompleted, false},
		{"complete paid", StatusPaid, EventComplete, StatusCompleted, false},
		{"complete assigned without bill", StatusAssigned, EventComplete, "", true},
		{"settle assigned", StatusAssigned, EventSettle, "", true},
		{"bill pending", StatusPending, EventGenerateBill, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(RoleBusiness, tt.current, tt.event)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIllegalTransition)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalStatesAdmitNoEvents(t *testing.T) {
	events := []Event{EventAccept, EventReject, EventGenerateBill, EventSettle, EventComplete}
	for _, role := range []Role{RoleHousehold, RoleBusiness} {
		for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
			for _, ev := range events {
				_, err := Next(role, terminal, ev)
				assert.ErrorIs(t, err, ErrIllegalTransition, "%s: %s + %s", role, terminal, ev)
			}
		}
	}
}

func TestInProgressIsUnreachable(t *testing.T) {
	// IN_PROGRESS is declared but reserved: no transition ends there and
	// no event leaves it.
	for _, role := range []Role{RoleHousehold, RoleBusiness} {
		for from, events := range Table(role) {
			for ev, to := range events {
				assert.NotEqual(t, StatusInProgress, to, "%s: %s + %s", role, from, ev)
			}
		}
		_, hasEvents := Table(role)[StatusInProgress]
		assert.False(t, hasEvents, "%s table should not key IN_PROGRESS", role)
	}
	assert.Contains(t, Statuses(), StatusInProgress)
}

func TestCanModify(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name        string
		status      Status
		scheduledAt time.Time
		want        bool
	}{
		{"well before schedule", StatusPending, now.Add(3 * time.Hour), true},
		{"inside the buffer", StatusPending, now.Add(90 * time.Minute), false},
		{"exactly at the boundary", StatusPending, now.Add(ModifyBuffer), false},
		{"one second outside", StatusPending, now.Add(ModifyBuffer + time.Second), true},
		{"already assigned", StatusAssigned, now.Add(3 * time.Hour), false},
		{"already completed", StatusCompleted, now.Add(3 * time.Hour), false},
		{"schedule in the past", StatusPending, now.Add(-time.Hour), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanModify(tt.status, tt.scheduledAt, now))
		})
	}
}
