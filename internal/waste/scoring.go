// Package waste maps waste categories to eco-point factors.  Points are
// awarded per kilogram collected; heavier-impact categories earn more.
package waste

import "math"

// Category identifies the kind of waste on a pickup request and its
// capture record.  Values are stored as-is in the waste_type columns.
type Category string

const (
	FoodWaste                Category = "FOOD_WASTE"
	EWaste                   Category = "E_WASTE"
	Plastic                  Category = "PLASTIC"
	Paper                    Category = "PAPER"
	Metal                    Category = "METAL"
	Glass                    Category = "GLASS"
	Mixed                    Category = "MIXED"
	Biodegradable            Category = "BIODEGRADABLE"
	NonBiodegradable         Category = "NON_BIODEGRADABLE"
	OrganicWaste             Category = "ORGANIC_WASTE"
	RecyclableWaste          Category = "RECYCLABLE_WASTE"
	ChemicalWaste            Category = "CHEMICAL_WASTE"
	HazardousWaste           Category = "HAZARDOUS_WASTE"
	ConstructionWaste        Category = "CONSTRUCTION_WASTE"
	NonRecyclableCommercial  Category = "NON_RECYCLABLE_COMMERCIAL"
)

// ecoFactors lists the points-per-kg multiplier of every category that has
// an explicit rating.  Categories missing from this table score at the
// default factor of 1.0; scoring is deliberately lenient so that a pickup
// with an unrated category still completes and earns points.
var ecoFactors = map[Category]float64{
	Biodegradable:           1.0,
	NonBiodegradable:        0.5,
	OrganicWaste:            1.0,
	RecyclableWaste:         1.5,
	EWaste:                  2.0,
	ChemicalWaste:           2.5,
	HazardousWaste:          3.0,
	ConstructionWaste:       1.8,
	NonRecyclableCommercial: 0.8,
}

// requestable is the full set of categories accepted on a pickup request.
var requestable = map[Category]bool{
	FoodWaste: true, EWaste: true, Plastic: true, Paper: true, Metal: true,
	Glass: true, Mixed: true, Biodegradable: true, NonBiodegradable: true,
	OrganicWaste: true, RecyclableWaste: true, ChemicalWaste: true,
	HazardousWaste: true, ConstructionWaste: true, NonRecyclableCommercial: true,
}

// Valid reports whether cat may be used on a new pickup request.
func Valid(cat Category) bool { return requestable[cat] }

// EcoFactor returns the multiplier for a category, 1.0 when unrated.
func EcoFactor(cat Category) float64 {
	if f, ok := ecoFactors[cat]; ok {
		return f
	}
	return 1.0
}

// Points converts a measured weight in kg into eco points:
// round(weight * factor) to the nearest integer.
func Points(cat Category, weightKg float64) int {
	return int(math.Round(weightKg * EcoFactor(cat)))
}
