// Package pickup defines the lifecycle of a pickup request as an explicit
// state machine.  Every legal move is listed in a transition table keyed by
// requester role; handlers consult the table instead of scattering status
// checks, so an illegal {status, event} pair cannot slip through.
package pickup

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a pickup request.  The literal tokens
// are stored in pickup_requests.pickup_status and exposed over the API.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusAssigned       Status = "ASSIGNED"
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusPaid           Status = "PAID"
	// StatusInProgress is part of the public status taxonomy but no event
	// produces it; it is reserved for a future "collector en route" stage.
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Event names an action that moves a request between statuses.
type Event string

const (
	EventAccept       Event = "ACCEPT"        // collector claims a pending request
	EventReject       Event = "REJECT"        // collector declines, terminal
	EventGenerateBill Event = "GENERATE_BILL" // assigned collector bills a business requester
	EventSettle       Event = "SETTLE"        // payment gateway confirms settlement
	EventComplete     Event = "COMPLETE"      // assigned collector records the pickup as done
)

// Role is the requester's account role, which selects the transition table.
type Role string

const (
	RoleHousehold Role = "HOUSEHOLD"
	RoleBusiness  Role = "BUSINESS"
)

// ErrIllegalTransition is returned by Next when the event is not legal in
// the current status for the requester's role.  Handlers translate it into
// a 409 Conflict so callers re-fetch and retry with fresh state.
var ErrIllegalTransition = errors.New("illegal status transition")

// householdTransitions: households are never billed, so the assigned
// collector completes directly and CANCELLED is reachable until then.
var householdTransitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept: StatusAssigned,
		EventReject: StatusCancelled,
	},
	StatusAssigned: {
		EventReject:   StatusCancelled,
		EventComplete: StatusCompleted,
	},
}

// businessTransitions: a business pickup must pass through billing.  When
// the gateway settles, the request completes in the same step rather than
// resting in PAID and waiting for a second collector action; PAID remains
// in the table so a request parked there can still be closed out.
var businessTransitions = map[Status]map[Event]Status{
	StatusPending: {
		EventAccept: StatusAssigned,
		EventReject: StatusCancelled,
	},
	StatusAssigned: {
		EventReject:       StatusCancelled,
		EventGenerateBill: StatusPaymentPending,
	},
	StatusPaymentPending: {
		EventGenerateBill: StatusPaymentPending, // re-billing updates the pending bill
		EventSettle:       StatusCompleted,
	},
	StatusPaid: {
		EventComplete: StatusCompleted,
	},
}

// Table returns the transition table for a requester role.  Collector and
// NGO accounts never own requests, so only the two requester roles exist.
func Table(role Role) map[Status]map[Event]Status {
	if role == RoleBusiness {
		return businessTransitions
	}
	return householdTransitions
}

// Next resolves the status that follows applying event to current for the
// given requester role.  It returns ErrIllegalTransition (wrapped with the
// offending pair) when the table has no entry.
func Next(role Role, current Status, event Event) (Status, error) {
	if events, ok := Table(role)[current]; ok {
		if next, ok := events[event]; ok {
			return next, nil
		}
	}
	return "", fmt.Errorf("%w: %s + %s (%s)", ErrIllegalTransition, current, event, role)
}

// ModifyBuffer is how long before the scheduled moment a requester loses
// the right to change or delete a pending request.  It protects collectors
// from last-minute changes.
const ModifyBuffer = 2 * time.Hour

// CanModify reports whether the requester may still update or delete the
// request: the status must be PENDING and now must be more than
// ModifyBuffer ahead of the scheduled date+time.
func CanModify(status Status, scheduledAt, now time.Time) bool {
	if status != StatusPending {
		return false
	}
	return now.Before(scheduledAt.Add(-ModifyBuffer))
}

// Statuses lists every member of the taxonomy, including the reserved
// IN_PROGRESS token, in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending, StatusAssigned, StatusPaymentPending, StatusPaid,
		StatusInProgress, StatusCompleted, StatusCancelled,
	}
}
