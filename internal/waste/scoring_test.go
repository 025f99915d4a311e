package waste

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEcoFactorKnownCategories(t *testing.T) {
	tests := []struct {
		cat  Category
		want float64
	}{
		{Biodegradable, 1.0},
		{NonBiodegradable, 0.5},
		{OrganicWaste, 1.0},
		{RecyclableWaste, 1.5},
		{EWaste, 2.0},
		{ChemicalWaste, 2.5},
		{HazardousWaste, 3.0},
		{ConstructionWaste, 1.8},
		{NonRecyclableCommercial, 0.8},
	}
	for _, tt := range tests {
		t.Run(string(tt.cat), func(t *testing.T) {
			assert.Equal(t, tt.want, EcoFactor(tt.cat))
		})
	}
}

func TestEcoFactorBounds(t *testing.T) {
	// Every explicit factor stays within the 0.5..3.0 band.
	for cat := range ecoFactors {
		f := EcoFactor(cat)
		assert.GreaterOrEqual(t, f, 0.5, "category %s", cat)
		assert.LessOrEqual(t, f, 3.0, "category %s", cat)
	}
}

func TestEcoFactorUnratedDefaultsToOne(t *testing.T) {
	assert.Equal(t, 1.0, EcoFactor(Plastic))
	assert.Equal(t, 1.0, EcoFactor(Category("SOMETHING_NEW")))
}

func TestPointsRounding(t *testing.T) {
	tests := []struct {
		name   string
		cat    Category
		weight float64
		want   int
	}{
		{"exact multiple", EWaste, 5.0, 10},
		{"rounds up", RecyclableWaste, 1.0, 2},       // 1.5 -> 2
		{"rounds down", NonBiodegradable, 4.9, 2},    // 2.45 -> 2
		{"half rounds away", Biodegradable, 2.5, 3},  // 2.5 -> 3
		{"tiny weight", HazardousWaste, 0.1, 0},      // 0.3 -> 0
		{"unrated uses default", Plastic, 7.4, 7},    // 7.4 -> 7
		{"heavy hazardous", HazardousWaste, 999.9, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Points(tt.cat, tt.weight))
		})
	}
}

func TestValid(t *testing.T) {
	for cat := range requestable {
		assert.True(t, Valid(cat), "category %s", cat)
	}
	assert.False(t, Valid(Category("NUCLEAR")))
	assert.False(t, Valid(Category("")))

	// Everything with an explicit factor must also be requestable.
	for cat := range ecoFactors {
		require.True(t, Valid(cat), "rated category %s must be requestable", cat)
	}
}
