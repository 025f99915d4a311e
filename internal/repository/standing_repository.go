package repository

import (
	"context"
	"database/sql"

	"github.com/greenloop/waste-pickup/internal/model"
)

// StandingRepo maintains the cached per-user aggregates behind the
// leaderboards.  The rows are a derived cache: completion handlers bump
// them incrementally and the reconciler overwrites them from the ledger
// when they drift.  Implements reward.Standings.
type StandingRepo struct{ DB *sql.DB }

func NewStandingRepo(db *sql.DB) *StandingRepo { return &StandingRepo{DB: db} }

// CreateHousehold inserts the zeroed standing row for a new household
// account.
func (r *StandingRepo) CreateHousehold(ctx context.Context, userID uint64, familySize *int) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO household_details (user_id, family_size) VALUES (?,?)", userID, familySize)
	return err
}

// CreateBusiness inserts the zeroed standing row for a new business
// account.
func (r *StandingRepo) CreateBusiness(ctx context.Context, userID uint64, businessType, frequency string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO business_details (user_id, business_type, pickup_frequency) VALUES (?,?,?)",
		userID, businessType, frequency)
	return err
}

// AddHouseholdTotalsTx bumps a household's cumulative weight and points
// inside the completion transaction.
func (r *StandingRepo) AddHouseholdTotalsTx(ctx context.Context, tx *sql.Tx, userID uint64, weightKg float64, points int) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE household_details SET total_waste_kg = total_waste_kg + ?, eco_points = eco_points + ? WHERE user_id=?",
		weightKg, points, userID)
	return err
}

// AddBusinessWeightTx bumps a business's cumulative weight and
// sustainability score inside the completion transaction.  Businesses
// earn no eco points; the score is what ranks them, capped at 100.
func (r *StandingRepo) AddBusinessWeightTx(ctx context.Context, tx *sql.Tx, userID uint64, weightKg float64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE business_details
		 SET total_waste_kg = total_waste_kg + ?,
		     sustainability_score = LEAST(?, sustainability_score + ?)
		 WHERE user_id=?`,
		weightKg, model.MaxSustainabilityScore, model.SustainabilityGain(weightKg), userID)
	return err
}

// HouseholdTotals returns the cached totals for one household user.
func (r *StandingRepo) HouseholdTotals(ctx context.Context, userID uint64) (int, float64, error) {
	var points int
	var weight float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT eco_points, total_waste_kg FROM household_details WHERE user_id=? LIMIT 1",
		userID).Scan(&points, &weight)
	return points, weight, err
}

// SetHouseholdTotals overwrites the cached totals; only the reconciler
// calls this.
func (r *StandingRepo) SetHouseholdTotals(ctx context.Context, userID uint64, points int, weightKg float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE household_details SET eco_points=?, total_waste_kg=? WHERE user_id=?",
		points, weightKg, userID)
	return err
}

// BusinessWeight returns the cached weight total for one business user.
func (r *StandingRepo) BusinessWeight(ctx context.Context, userID uint64) (float64, error) {
	var weight float64
	err := r.DB.QueryRowContext(ctx,
		"SELECT total_waste_kg FROM business_details WHERE user_id=? LIMIT 1",
		userID).Scan(&weight)
	return weight, err
}

// SetBusinessWeight overwrites the cached weight and recomputes the
// sustainability score from it; only the reconciler calls this.
func (r *StandingRepo) SetBusinessWeight(ctx context.Context, userID uint64, weightKg float64) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE business_details SET total_waste_kg=?, sustainability_score=LEAST(?, ?) WHERE user_id=?",
		weightKg, model.MaxSustainabilityScore, model.SustainabilityGain(weightKg), userID)
	return err
}

// LeaderboardRow is one ranked entry.  Points carries eco points for
// households and the sustainability score for businesses.  Rank is
// assigned at read time from the sorted result, never stored.
type LeaderboardRow struct {
	Rank         int     `json:"rank"`
	UserID       uint64  `json:"user_id"`
	Name         string  `json:"name"`
	City         string  `json:"city"`
	TotalWasteKg float64 `json:"total_waste_kg"`
	Points       float64 `json:"points"`
}

// HouseholdLeaderboard ranks households by eco points, optionally
// restricted to a city.
func (r *StandingRepo) HouseholdLeaderboard(ctx context.Context, city string) ([]LeaderboardRow, error) {
	q := `SELECT h.user_id, u.name, u.city, h.total_waste_kg, h.eco_points
	      FROM household_details h JOIN users u ON u.id = h.user_id`
	args := []interface{}{}
	if city != "" {
		q += " WHERE u.city = ?"
		args = append(args, city)
	}
	q += " ORDER BY h.eco_points DESC, h.total_waste_kg DESC"
	return r.leaderboard(ctx, q, args...)
}

// BusinessLeaderboard ranks businesses by sustainability score, optionally
// restricted to a city.
func (r *StandingRepo) BusinessLeaderboard(ctx context.Context, city string) ([]LeaderboardRow, error) {
	q := `SELECT b.user_id, u.name, u.city, b.total_waste_kg, b.sustainability_score
	      FROM business_details b JOIN users u ON u.id = b.user_id`
	args := []interface{}{}
	if city != "" {
		q += " WHERE u.city = ?"
		args = append(args, city)
	}
	q += " ORDER BY b.sustainability_score DESC, b.total_waste_kg DESC"
	return r.leaderboard(ctx, q, args...)
}

func (r *StandingRepo) leaderboard(ctx context.Context, query string, args ...interface{}) ([]LeaderboardRow, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]LeaderboardRow, 0)
	for rows.Next() {
		var row LeaderboardRow
		if err := rows.Scan(&row.UserID, &row.Name, &row.City, &row.TotalWasteKg, &row.Points); err != nil {
			return nil, err
		}
		row.Rank = len(out) + 1
		out = append(out, row)
	}
	return out, rows.Err()
}
