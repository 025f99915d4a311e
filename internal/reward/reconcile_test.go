package reward

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenloop/waste-pickup/internal/pickup"
)

type fakeLedger struct {
	points int
	weight float64
	err    error
}

func (f *fakeLedger) SumForUser(context.Context, uint64) (int, float64, error) {
	return f.points, f.weight, f.err
}

type fakeStandings struct {
	hhPoints  int
	hhWeight  float64
	bizWeight float64

	hhWrites  int
	bizWrites int
}

func (f *fakeStandings) HouseholdTotals(context.Context, uint64) (int, float64, error) {
	return f.hhPoints, f.hhWeight, nil
}

func (f *fakeStandings) SetHouseholdTotals(_ context.Context, _ uint64, points int, weightKg float64) error {
	f.hhPoints, f.hhWeight = points, weightKg
	f.hhWrites++
	return nil
}

func (f *fakeStandings) BusinessWeight(context.Context, uint64) (float64, error) {
	return f.bizWeight, nil
}

func (f *fakeStandings) SetBusinessWeight(_ context.Context, _ uint64, weightKg float64) error {
	f.bizWeight = weightKg
	f.bizWrites++
	return nil
}

func TestReconcileCorrectsHouseholdDrift(t *testing.T) {
	ledger := &fakeLedger{points: 120, weight: 45.5}
	standings := &fakeStandings{hhPoints: 100, hhWeight: 40.0}
	r := NewReconciler(ledger, standings)

	totals, corrected, err := r.Reconcile(context.Background(), 7, pickup.RoleHousehold)
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.Equal(t, Totals{Points: 120, WeightKg: 45.5}, totals)
	assert.Equal(t, 120, standings.hhPoints)
	assert.Equal(t, 45.5, standings.hhWeight)
	assert.Equal(t, 1, standings.hhWrites)
}

func TestReconcileIsIdempotent(t *testing.T) {
	ledger := &fakeLedger{points: 120, weight: 45.5}
	standings := &fakeStandings{hhPoints: 100, hhWeight: 40.0}
	r := NewReconciler(ledger, standings)

	_, corrected, err := r.Reconcile(context.Background(), 7, pickup.RoleHousehold)
	require.NoError(t, err)
	require.True(t, corrected)

	// Second run sees a clean standing and writes nothing.
	totals, corrected, err := r.Reconcile(context.Background(), 7, pickup.RoleHousehold)
	require.NoError(t, err)
	assert.False(t, corrected)
	assert.Equal(t, Totals{Points: 120, WeightKg: 45.5}, totals)
	assert.Equal(t, 1, standings.hhWrites)
}

func TestReconcileCleanStandingWritesNothing(t *testing.T) {
	ledger := &fakeLedger{points: 50, weight: 12.34}
	standings := &fakeStandings{hhPoints: 50, hhWeight: 12.34}
	r := NewReconciler(ledger, standings)

	totals, corrected, err := r.Reconcile(context.Background(), 3, pickup.RoleHousehold)
	require.NoError(t, err)
	assert.False(t, corrected)
	assert.Equal(t, Totals{Points: 50, WeightKg: 12.34}, totals)
	assert.Zero(t, standings.hhWrites)
}

func TestReconcileBusinessTouchesWeightOnly(t *testing.T) {
	ledger := &fakeLedger{points: 999, weight: 200.0}
	standings := &fakeStandings{bizWeight: 150.0, hhPoints: 1, hhWeight: 1}
	r := NewReconciler(ledger, standings)

	totals, corrected, err := r.Reconcile(context.Background(), 9, pickup.RoleBusiness)
	require.NoError(t, err)
	assert.True(t, corrected)
	assert.Equal(t, 200.0, standings.bizWeight)
	assert.Equal(t, 1, standings.bizWrites)
	assert.Zero(t, standings.hhWrites, "household standing must be untouched")
	// Ledger points still reported even though businesses cache none.
	assert.Equal(t, Totals{Points: 999, WeightKg: 200.0}, totals)
}

func TestReconcileToleratesStorageRounding(t *testing.T) {
	// DECIMAL(10,2) storage makes hairline differences; they are not drift.
	ledger := &fakeLedger{points: 10, weight: 5.004}
	standings := &fakeStandings{hhPoints: 10, hhWeight: 5.00}
	r := NewReconciler(ledger, standings)

	_, corrected, err := r.Reconcile(context.Background(), 4, pickup.RoleHousehold)
	require.NoError(t, err)
	assert.False(t, corrected)
}

func TestReconcileLedgerError(t *testing.T) {
	boom := errors.New("ledger down")
	r := NewReconciler(&fakeLedger{err: boom}, &fakeStandings{})

	_, corrected, err := r.Reconcile(context.Background(), 1, pickup.RoleHousehold)
	require.ErrorIs(t, err, boom)
	assert.False(t, corrected)
}

func TestNewReconcilerPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { NewReconciler(nil, &fakeStandings{}) })
	assert.Panics(t, func() { NewReconciler(&fakeLedger{}, nil) })
}
