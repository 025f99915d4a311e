// Package repository implements raw-SQL persistence for the pickup
// service.  Sentinel errors defined here let handlers map failure modes to
// HTTP statuses without inspecting driver errors: ErrForbidden becomes
// 403, ErrConflict 409.  Missing rows surface as sql.ErrNoRows.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own, e.g. rejecting a pickup assigned to another
// collector.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a conditional update finds the row no
// longer in the required state, e.g. accepting a pickup that another
// collector already claimed.  Callers should re-fetch and retry with
// fresh state rather than repeat the same call.
var ErrConflict = errors.New("conflict")
