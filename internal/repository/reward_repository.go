package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/waste-pickup/internal/model"
)

// RewardRepo is the append-only eco-reward ledger.  AppendTx is the only
// write path; no update or delete operation exists, so the event history
// is the durable source of truth for every aggregate.
type RewardRepo struct{ DB *sql.DB }

func NewRewardRepo(db *sql.DB) *RewardRepo { return &RewardRepo{DB: db} }

// AppendTx inserts a reward event inside the caller's transaction, so the
// event commits atomically with the status flip that earned it.
func (r *RewardRepo) AppendTx(ctx context.Context, tx *sql.Tx, ev *model.EcoReward) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO eco_rewards (user_id, pickup_id, points_earned, waste_weight, reward_type, earned_at) VALUES (?,?,?,?,?,NOW())",
		ev.UserID, ev.PickupID, ev.Points, ev.WeightKg, ev.RewardType)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	return nil
}

// SumForUser totals points and weight across the user's full event
// history.  Implements reward.Ledger.
func (r *RewardRepo) SumForUser(ctx context.Context, userID uint64) (int, float64, error) {
	var points sql.NullInt64
	var weight sql.NullFloat64
	err := r.DB.QueryRowContext(ctx,
		"SELECT SUM(points_earned), SUM(waste_weight) FROM eco_rewards WHERE user_id=?",
		userID).Scan(&points, &weight)
	if err != nil {
		return 0, 0, err
	}
	return int(points.Int64), weight.Float64, nil
}

// ListRecentByUser returns the user's most recent reward events.
func (r *RewardRepo) ListRecentByUser(ctx context.Context, userID uint64, limit int) ([]model.EcoReward, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,user_id,pickup_id,points_earned,waste_weight,reward_type,earned_at FROM eco_rewards WHERE user_id=? ORDER BY earned_at DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]model.EcoReward, 0, limit)
	for rows.Next() {
		var ev model.EcoReward
		var pickupID sql.NullInt64
		if err := rows.Scan(&ev.ID, &ev.UserID, &pickupID, &ev.Points, &ev.WeightKg, &ev.RewardType, &ev.EarnedAt); err != nil {
			return nil, err
		}
		if pickupID.Valid {
			v := uint64(pickupID.Int64)
			ev.PickupID = &v
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}
