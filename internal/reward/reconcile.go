// Package reward keeps the cached aggregate standings honest against the
// append-only eco-reward ledger.  The ledger is the source of truth; the
// standings rows are a cache that may drift after bugs or manual edits, and
// this package recomputes and overwrites them on demand.
package reward

import (
	"context"
	"log"
	"math"

	"github.com/greenloop/waste-pickup/internal/pickup"
)

// Ledger is the read side of the reward event history.
type Ledger interface {
	// SumForUser returns the total points and total weight across every
	// reward event ever recorded for the user.
	SumForUser(ctx context.Context, userID uint64) (points int, weightKg float64, err error)
}

// Standings is the cached aggregate store being reconciled.
type Standings interface {
	HouseholdTotals(ctx context.Context, userID uint64) (points int, weightKg float64, err error)
	SetHouseholdTotals(ctx context.Context, userID uint64, points int, weightKg float64) error
	BusinessWeight(ctx context.Context, userID uint64) (weightKg float64, err error)
	SetBusinessWeight(ctx context.Context, userID uint64, weightKg float64) error
}

// Totals is the reconciled view returned to callers.
type Totals struct {
	Points   int     `json:"total_points"`
	WeightKg float64 `json:"total_waste_kg"`
}

// Reconciler recomputes a user's totals from the ledger and self-heals the
// stored standing when it has drifted.  It runs synchronously whenever a
// points/waste view is requested, so the cache is eventually consistent
// without migrations.  Recomputation walks the full event history; fine at
// current volumes, revisit with a last-applied-event cursor if it grows.
type Reconciler struct {
	Ledger    Ledger
	Standings Standings
}

// NewReconciler wires a Reconciler from its two stores.
func NewReconciler(l Ledger, s Standings) *Reconciler {
	if l == nil || s == nil {
		panic("nil store passed to NewReconciler")
	}
	return &Reconciler{Ledger: l, Standings: s}
}

// Reconcile recomputes totals for one user and overwrites the stored
// standing if it disagrees.  It returns the authoritative totals and
// whether a correction was written.  Corrections are logged, never fatal:
// the read they accompany still succeeds.
func (r *Reconciler) Reconcile(ctx context.Context, userID uint64, role pickup.Role) (Totals, bool, error) {
	points, weight, err := r.Ledger.SumForUser(ctx, userID)
	if err != nil {
		return Totals{}, false, err
	}
	truth := Totals{Points: points, WeightKg: weight}

	switch role {
	case pickup.RoleBusiness:
		// Business standings carry weight only; points stay in the ledger.
		stored, err := r.Standings.BusinessWeight(ctx, userID)
		if err != nil {
			return truth, false, err
		}
		if weightEqual(stored, weight) {
			return truth, false, nil
		}
		if err := r.Standings.SetBusinessWeight(ctx, userID, weight); err != nil {
			return truth, false, err
		}
		log.Printf("reconcile: corrected business standing user=%d weight %.2f -> %.2f", userID, stored, weight)
		return truth, true, nil
	default:
		storedPoints, storedWeight, err := r.Standings.HouseholdTotals(ctx, userID)
		if err != nil {
			return truth, false, err
		}
		if storedPoints == points && weightEqual(storedWeight, weight) {
			return truth, false, nil
		}
		if err := r.Standings.SetHouseholdTotals(ctx, userID, points, weight); err != nil {
			return truth, false, err
		}
		log.Printf("reconcile: corrected household standing user=%d points %d -> %d weight %.2f -> %.2f",
			userID, storedPoints, points, storedWeight, weight)
		return truth, true, nil
	}
}

// weightEqual compares weights at the 0.01 kg precision the DB stores.
func weightEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.005
}
