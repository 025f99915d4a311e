package model

import "time"

// Reward event categories stored in eco_rewards.reward_type.
const (
	RewardPickupCompleted = "PICKUP_COMPLETED"
	RewardWeeklyGoal      = "WEEKLY_GOAL"
	RewardMonthlyGoal     = "MONTHLY_GOAL"
	RewardReferral        = "REFERRAL"
	RewardBonus           = "BONUS"
)

// EcoReward is an append-only ledger entry crediting points to a user.
// Rows are never updated or deleted; the ledger is the source of truth
// that aggregate standings are reconciled against.
type EcoReward struct {
	ID         uint64    // eco_rewards.id
	UserID     uint64    // eco_rewards.user_id
	PickupID   *uint64   // eco_rewards.pickup_id (nullable)
	Points     int       // eco_rewards.points_earned (non-negative)
	WeightKg   float64   // eco_rewards.waste_weight
	RewardType string    // eco_rewards.reward_type
	EarnedAt   time.Time // eco_rewards.earned_at
}
