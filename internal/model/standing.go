package model

// HouseholdStanding caches a household user's cumulative totals for the
// leaderboard.  It is derived from the reward ledger and waste logs and is
// overwritten whenever reconciliation finds drift; it is never treated as
// ground truth itself.  Rank is computed at read time, not stored.
type HouseholdStanding struct {
	ID           uint64  // household_details.id
	UserID       uint64  // household_details.user_id (unique)
	TotalWasteKg float64 // household_details.total_waste_kg
	EcoPoints    int     // household_details.eco_points
	FamilySize   *int    // household_details.family_size (nullable)
}

// MaxSustainabilityScore caps business_details.sustainability_score.
const MaxSustainabilityScore = 100.0

// SustainabilityGain is the score earned by one completed business
// pickup: half a point per collected kilogram.  Callers clamp the
// running score at MaxSustainabilityScore.
func SustainabilityGain(weightKg float64) float64 {
	return weightKg * 0.5
}

// BusinessStanding is the business counterpart.  Businesses accumulate
// weight and a sustainability score but no eco points.
type BusinessStanding struct {
	ID                  uint64  // business_details.id
	UserID              uint64  // business_details.user_id (unique)
	BusinessType        string  // business_details.business_type
	PickupFrequency     string  // business_details.pickup_frequency
	TotalWasteKg        float64 // business_details.total_waste_kg
	SustainabilityScore float64 // business_details.sustainability_score
	PaymentEnabled      bool    // business_details.payment_enabled
}
